package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/mgomes/vibebf/bf"
)

const sourceExt = ".bf"

func main() {
	if err := runCLI(os.Args); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func runCLI(args []string) error {
	if len(args) < 2 {
		return usageError()
	}
	switch args[1] {
	case "run":
		return runCommand(args[2:])
	case "fmt":
		return fmtCommand(args[2:])
	case "analyze":
		return analyzeCommand(args[2:])
	case "repl":
		return replCommand(args[2:])
	case "lsp":
		return lspCommand(args[2:])
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		return usageError()
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	steps := fs.Int("steps", 0, "abort after this many instructions (0 = unbounded)")
	logLevel := fs.String("log-level", "warn", "log level: debug, info, warn or error")
	traceFile := fs.String("trace-file", "", "also write JSON debug records to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) == 0 || strings.TrimSpace(remaining[0]) == "" {
		return errors.New("No file provided") //nolint:staticcheck // user-facing message
	}

	program, err := loadProgram(remaining[0])
	if err != nil {
		return err
	}

	logger, closeLogs, err := newLogger(os.Stderr, *logLevel, *traceFile)
	if err != nil {
		return err
	}
	defer closeLogs()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	// After the first interrupt, a second one gets the default handler.
	context.AfterFunc(ctx, stop)

	engine := bf.NewEngine(program, bf.Config{
		Input:     os.Stdin,
		Output:    os.Stdout,
		Logger:    logger.With("program", remaining[0]),
		StepQuota: *steps,
	})
	if err := engine.Execute(ctx); err != nil {
		return &categoryError{category: "execution error:", err: err}
	}
	return nil
}

// loadProgram validates the path and returns the file's characters.
func loadProgram(path string) ([]rune, error) {
	if filepath.Ext(path) != sourceExt {
		return nil, errors.New("Invalid file type") //nolint:staticcheck // user-facing message
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, &categoryError{category: "error in reading file:", err: err}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, &categoryError{category: "error in processing file:", err: err}
	}
	return []rune(string(data)), nil
}

func usageError() error {
	printUsage()
	return errors.New("invalid command")
}

func printUsage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [flags] <args>\n", prog)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  run [flags] <file.bf>      execute a program")
	fmt.Fprintln(os.Stderr, "  fmt [-w] [-check] <paths>  normalize line endings and trailing whitespace")
	fmt.Fprintln(os.Stderr, "  analyze <file.bf>          report invalid tokens and unbalanced loops")
	fmt.Fprintln(os.Stderr, "  repl                       start an interactive session")
	fmt.Fprintln(os.Stderr, "  lsp                        serve diagnostics over stdio")
	fmt.Fprintln(os.Stderr, "Run flags:")
	fmt.Fprintln(os.Stderr, "  -steps int")
	fmt.Fprintln(os.Stderr, "    abort after this many instructions (default 0, unbounded)")
	fmt.Fprintln(os.Stderr, "  -log-level string")
	fmt.Fprintln(os.Stderr, "    debug, info, warn or error (default \"warn\")")
	fmt.Fprintln(os.Stderr, "  -trace-file <path>")
	fmt.Fprintln(os.Stderr, "    also write JSON debug records to this file")
}

type flagErrorSink struct{}

func (flagErrorSink) Write(p []byte) (int, error) {
	return len(p), nil
}
