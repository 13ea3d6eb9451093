package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var errorColor = lipgloss.Color("#EF4444")

// categoryError prefixes a failure with the stage that produced it.
type categoryError struct {
	category string
	err      error
}

func (e *categoryError) Error() string {
	return e.category + " " + e.err.Error()
}

func (e *categoryError) Unwrap() error {
	return e.err
}

// printError writes err in red when w is a color-capable terminal.
func printError(w io.Writer, err error) {
	style := lipgloss.NewRenderer(w).NewStyle().Foreground(errorColor)
	fmt.Fprintln(w, style.Render(err.Error()))
}
