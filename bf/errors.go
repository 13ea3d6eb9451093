package bf

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnmatchedLoopClose = errors.New("unmatched loop close")
	ErrInputRead          = errors.New("input read failed")
	ErrEmptyInput         = errors.New("empty input line")
	ErrOutputWrite        = errors.New("output write failed")
	ErrStepQuotaExceeded  = errors.New("step quota exceeded")
	ErrCanceled           = errors.New("execution canceled")
	ErrEngineFinished     = errors.New("engine already finished")
)

// ExecutionError describes why a run stopped. Kind is one of the Err*
// sentinels above; Err holds the underlying cause when there is one.
type ExecutionError struct {
	Kind      error
	Message   string
	Index     int
	Token     rune
	Pos       Position
	CodeFrame string
	Err       error
}

func (ee *ExecutionError) Error() string {
	var b strings.Builder
	b.WriteString(ee.Kind.Error())
	if ee.Message != "" {
		b.WriteString(": ")
		b.WriteString(ee.Message)
	}
	fmt.Fprintf(&b, " at index %d", ee.Index)
	if ee.Err != nil {
		fmt.Fprintf(&b, " (%v)", ee.Err)
	}
	if ee.CodeFrame != "" {
		b.WriteString("\n")
		b.WriteString(ee.CodeFrame)
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is/As.
func (ee *ExecutionError) Unwrap() []error {
	if ee.Err == nil {
		return []error{ee.Kind}
	}
	return []error{ee.Kind, ee.Err}
}
