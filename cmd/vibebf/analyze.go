package main

import (
	"errors"
	"flag"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/mgomes/vibebf/bf"
)

type lintWarning struct {
	Index   int
	Pos     bf.Position
	Message string
}

func analyzeCommand(args []string) error {
	fset := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fset.SetOutput(new(flagErrorSink))
	if err := fset.Parse(args); err != nil {
		return err
	}

	remaining := fset.Args()
	if len(remaining) == 0 {
		return errors.New("vibebf analyze: program path required")
	}

	scriptPath, err := filepath.Abs(remaining[0])
	if err != nil {
		return fmt.Errorf("resolve program path: %w", err)
	}
	program, err := loadProgram(scriptPath)
	if err != nil {
		return err
	}

	warnings := analyzeProgram(program)
	if len(warnings) == 0 {
		fmt.Println("No issues found")
		return nil
	}

	for _, warning := range warnings {
		fmt.Printf("%s:%d:%d: %s\n", scriptPath, warning.Pos.Line, warning.Pos.Column, warning.Message)
	}
	return fmt.Errorf("analysis found %d issue(s)", len(warnings))
}

// analyzeProgram scans the text without running it. The engine never does
// this: a stray `]` only matters at run time if reached with a non-zero cell.
func analyzeProgram(program []rune) []lintWarning {
	var warnings []lintWarning
	add := func(index int, format string, args ...any) {
		warnings = append(warnings, lintWarning{
			Index:   index,
			Pos:     bf.PositionAt(program, index),
			Message: fmt.Sprintf(format, args...),
		})
	}

	var open []int
	for i, r := range program {
		switch bf.Decode(r) {
		case bf.InstrInvalid:
			switch {
			case r == '\r':
				add(i, "carriage return is not allowed (run vibebf fmt -w)")
			case r == byteOrderMark && i == 0:
				add(i, "byte order mark is not allowed (run vibebf fmt -w)")
			default:
				add(i, "invalid token %q", r)
			}
		case bf.InstrLoopOpen:
			open = append(open, i)
		case bf.InstrLoopClose:
			if len(open) == 0 {
				add(i, "loop close has no matching open")
				continue
			}
			open = open[:len(open)-1]
		}
	}
	for _, index := range open {
		add(index, "loop open is never closed")
	}

	sort.SliceStable(warnings, func(i, j int) bool {
		return warnings[i].Index < warnings[j].Index
	})
	return warnings
}
