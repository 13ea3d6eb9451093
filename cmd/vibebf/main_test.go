package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mgomes/vibebf/bf"
)

const lettersProgram = "++++++++[>++++++++<-]>+.+.+."

func TestRunCLIHelp(t *testing.T) {
	if err := runCLI([]string{"vibebf", "help"}); err != nil {
		t.Fatalf("runCLI help failed: %v", err)
	}
}

func TestRunCLIInvalidCommand(t *testing.T) {
	err := runCLI([]string{"vibebf", "unknown"})
	if err == nil {
		t.Fatalf("expected invalid command error")
	}
	if !strings.Contains(err.Error(), "invalid command") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunCLIWithoutCommand(t *testing.T) {
	err := runCLI([]string{"vibebf"})
	if err == nil || !strings.Contains(err.Error(), "invalid command") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunCommandExecutesProgram(t *testing.T) {
	path := writeProgram(t, "letters.bf", lettersProgram)

	out, err := captureStdout(t, func() error {
		return runCommand([]string{path})
	})
	if err != nil {
		t.Fatalf("runCommand failed: %v", err)
	}
	if out != "ABC\n" {
		t.Fatalf("unexpected stdout: %q", out)
	}
}

func TestLoadProgramReadsWholeFile(t *testing.T) {
	source := "+++\r\n[-]\u00e9" + strings.Repeat(">", 10000)
	path := writeProgram(t, "long.bf", source)

	program, err := loadProgram(path)
	if err != nil {
		t.Fatalf("loadProgram failed: %v", err)
	}
	if string(program) != source {
		t.Fatalf("program differs from file contents: got %d runes, want %d", len(program), len([]rune(source)))
	}
	if program[8] != '\u00e9' {
		t.Fatalf("expected multibyte rune at index 8, got %q", program[8])
	}
}

func TestRunCommandRequiresFile(t *testing.T) {
	for _, args := range [][]string{nil, {""}} {
		err := runCommand(args)
		if err == nil || err.Error() != "No file provided" {
			t.Fatalf("args %q: unexpected error: %v", args, err)
		}
	}
}

func TestRunCommandRejectsOtherExtensions(t *testing.T) {
	path := writeProgram(t, "letters.txt", lettersProgram)
	err := runCommand([]string{path})
	if err == nil || err.Error() != "Invalid file type" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunCommandReportsMissingFile(t *testing.T) {
	err := runCommand([]string{filepath.Join(t.TempDir(), "missing.bf")})
	if err == nil {
		t.Fatalf("expected read error")
	}
	if !strings.HasPrefix(err.Error(), "error in reading file:") {
		t.Fatalf("unexpected error: %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist in chain, got %v", err)
	}
}

func TestRunCommandReportsExecutionError(t *testing.T) {
	path := writeProgram(t, "bad.bf", "+.\n+x")

	out, err := captureStdout(t, func() error {
		return runCommand([]string{path})
	})
	if err == nil {
		t.Fatalf("expected execution error")
	}
	if !strings.HasPrefix(err.Error(), "execution error: invalid token") {
		t.Fatalf("unexpected error: %v", err)
	}
	if !errors.Is(err, bf.ErrInvalidToken) {
		t.Fatalf("expected bf.ErrInvalidToken in chain, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 2, column 2") {
		t.Fatalf("expected position in error: %v", err)
	}
	if out != "\x01" {
		t.Fatalf("expected output before failure to be kept, got %q", out)
	}
}

func TestRunCommandStepQuota(t *testing.T) {
	path := writeProgram(t, "spin.bf", "+[]")
	_, err := captureStdout(t, func() error {
		return runCommand([]string{"-steps", "50", path})
	})
	if !errors.Is(err, bf.ErrStepQuotaExceeded) {
		t.Fatalf("expected step quota error, got %v", err)
	}
}

func TestRunCommandWritesTraceFile(t *testing.T) {
	path := writeProgram(t, "loop.bf", "++[-]")
	tracePath := filepath.Join(t.TempDir(), "trace.json")

	_, err := captureStdout(t, func() error {
		return runCommand([]string{"-log-level", "error", "-trace-file", tracePath, path})
	})
	if err != nil {
		t.Fatalf("runCommand failed: %v", err)
	}
	trace, err := os.ReadFile(tracePath)
	if err != nil {
		t.Fatalf("read trace: %v", err)
	}
	if !strings.Contains(string(trace), `"msg":"loop repeat"`) {
		t.Fatalf("expected loop repeat record in trace:\n%s", trace)
	}
}

func TestRunCommandRejectsUnknownLogLevel(t *testing.T) {
	path := writeProgram(t, "letters.bf", lettersProgram)
	err := runCommand([]string{"-log-level", "loud", path})
	if err == nil || !strings.Contains(err.Error(), "unknown log level") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPrintErrorWithoutTerminalIsPlain(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, &categoryError{category: "execution error:", err: errors.New("boom")})
	if buf.String() != "execution error: boom\n" {
		t.Fatalf("unexpected rendering: %q", buf.String())
	}
}

func TestAnalyzeCommandNoIssues(t *testing.T) {
	path := writeProgram(t, "ok.bf", "+[->+<]\n")

	out, err := captureStdout(t, func() error {
		return analyzeCommand([]string{path})
	})
	if err != nil {
		t.Fatalf("analyzeCommand failed: %v", err)
	}
	if !strings.Contains(out, "No issues found") {
		t.Fatalf("unexpected analyze output: %q", out)
	}
}

func TestAnalyzeCommandReportsIssues(t *testing.T) {
	path := writeProgram(t, "bad.bf", "]+\n[a\r\n")

	out, err := captureStdout(t, func() error {
		return analyzeCommand([]string{path})
	})
	if err == nil || !strings.Contains(err.Error(), "analysis found 4 issue(s)") {
		t.Fatalf("unexpected analyze error: %v", err)
	}
	for _, want := range []string{
		":1:1: loop close has no matching open",
		":2:1: loop open is never closed",
		":2:2: invalid token 'a'",
		":2:3: carriage return is not allowed",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestAnalyzeProgramOrdersByIndex(t *testing.T) {
	warnings := analyzeProgram([]rune("[[]x"))
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d (%v)", len(warnings), warnings)
	}
	if warnings[0].Index != 0 || warnings[1].Index != 3 {
		t.Fatalf("unexpected order: %+v", warnings)
	}
}

func TestAnalyzeProgramFlagsLeadingByteOrderMark(t *testing.T) {
	warnings := analyzeProgram([]rune("\ufeff+\ufeff"))
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d (%v)", len(warnings), warnings)
	}
	if !strings.Contains(warnings[0].Message, "byte order mark") {
		t.Fatalf("expected byte order mark hint first, got %q", warnings[0].Message)
	}
	if !strings.Contains(warnings[1].Message, "invalid token") {
		t.Fatalf("expected a later mark to be an invalid token, got %q", warnings[1].Message)
	}
}

func writeProgram(t *testing.T, name, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write program: %v", err)
	}
	return path
}

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	runErr := fn()
	_ = w.Close()
	os.Stdout = orig

	var buf bytes.Buffer
	if _, copyErr := io.Copy(&buf, r); copyErr != nil {
		t.Fatalf("read stdout: %v", copyErr)
	}
	_ = r.Close()
	return buf.String(), runErr
}
