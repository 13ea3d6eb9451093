package bf

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Position is a 1-based line and column in program text.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// PositionAt converts an instruction index into a line and column. Indexes
// past the end resolve to the column after the last character.
func PositionAt(program []rune, index int) Position {
	pos := Position{Line: 1, Column: 1}
	if index > len(program) {
		index = len(program)
	}
	for i := 0; i < index; i++ {
		if program[i] == '\n' {
			pos.Line++
			pos.Column = 1
			continue
		}
		pos.Column++
	}
	return pos
}

// FormatCodeFrame renders the source line at pos with a caret under the column.
func FormatCodeFrame(source string, pos Position) string {
	if source == "" || pos.Line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if pos.Line > len(lines) {
		return ""
	}

	lineRunes := []rune(lines[pos.Line-1])
	column := pos.Column
	if column <= 0 {
		column = 1
	}
	if column > len(lineRunes)+1 {
		column = len(lineRunes) + 1
	}
	// Control characters render as '?'; tabs stay so the caret lines up.
	var text, pad strings.Builder
	for i, r := range lineRunes {
		if r != '\t' && !unicode.IsPrint(r) {
			text.WriteRune('?')
		} else {
			text.WriteRune(r)
		}
		if i < column-1 {
			if r == '\t' {
				pad.WriteRune('\t')
			} else {
				pad.WriteRune(' ')
			}
		}
	}

	lineLabel := strconv.Itoa(pos.Line)
	gutterPad := strings.Repeat(" ", len(lineLabel))

	return fmt.Sprintf(
		"  --> line %d, column %d\n %s | %s\n %s | %s^",
		pos.Line,
		column,
		lineLabel,
		text.String(),
		gutterPad,
		pad.String(),
	)
}
