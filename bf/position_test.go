package bf

import (
	"strings"
	"testing"
)

func TestPositionAt(t *testing.T) {
	program := []rune("+>\n\t[-]\n.")
	tests := []struct {
		index int
		want  Position
	}{
		{index: 0, want: Position{Line: 1, Column: 1}},
		{index: 1, want: Position{Line: 1, Column: 2}},
		{index: 4, want: Position{Line: 2, Column: 2}},
		{index: 8, want: Position{Line: 3, Column: 1}},
		{index: 50, want: Position{Line: 3, Column: 2}},
	}
	for _, tc := range tests {
		if got := PositionAt(program, tc.index); got != tc.want {
			t.Fatalf("index %d: expected %s, got %s", tc.index, tc.want, got)
		}
	}
}

func TestFormatCodeFrame(t *testing.T) {
	frame := FormatCodeFrame("++\n+a-", Position{Line: 2, Column: 2})
	want := "  --> line 2, column 2\n 2 | +a-\n   |  ^"
	if frame != want {
		t.Fatalf("unexpected frame:\n%s\nwant:\n%s", frame, want)
	}
}

func TestFormatCodeFrameMasksControlCharacters(t *testing.T) {
	frame := FormatCodeFrame("+\r", Position{Line: 1, Column: 2})
	if strings.Contains(frame, "\r") {
		t.Fatalf("expected carriage return to be masked: %q", frame)
	}
	if !strings.Contains(frame, "+?") {
		t.Fatalf("expected masked character in frame: %q", frame)
	}
}

func TestFormatCodeFrameOutOfRange(t *testing.T) {
	if frame := FormatCodeFrame("+", Position{Line: 3, Column: 1}); frame != "" {
		t.Fatalf("expected empty frame, got %q", frame)
	}
	if frame := FormatCodeFrame("", Position{Line: 1, Column: 1}); frame != "" {
		t.Fatalf("expected empty frame for empty source, got %q", frame)
	}
}

func TestDecodeCoversAlphabet(t *testing.T) {
	for _, r := range "><+-,.[]" {
		if instr := Decode(r); instr.String() != string(r) {
			t.Fatalf("decode %q gave %s", r, instr)
		}
	}
	for _, r := range "\n\t " {
		if Decode(r) != InstrSkip {
			t.Fatalf("expected %q to be skipped", r)
		}
	}
	for _, r := range "a#\r/0" {
		if Decode(r) != InstrInvalid {
			t.Fatalf("expected %q to be invalid", r)
		}
	}
}
