package bf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"
)

// cancelCheckInterval must be a power of two.
const cancelCheckInterval = 1024

// Execute runs the program until the instruction index passes the last
// character. On success a single newline is written to the output. Any
// failure stops the run immediately and leaves earlier output in place.
// An engine executes once; later calls return ErrEngineFinished.
func (e *Engine) Execute(ctx context.Context) error {
	if e.state != StateRunning {
		return ErrEngineFinished
	}
	if ctx == nil {
		ctx = context.Background()
	}
	e.trace = e.logger.Enabled(ctx, slog.LevelDebug)
	if e.trace {
		e.logger.DebugContext(ctx, "execution started", "tokens", len(e.tokens), "step_quota", e.quota)
	}

	if err := ctx.Err(); err != nil {
		return e.fail(ctx, e.errorAt(ErrCanceled, err, "before start"))
	}

	for e.index < len(e.tokens) {
		if err := e.step(ctx); err != nil {
			return e.fail(ctx, err)
		}
		if err := e.dispatch(ctx); err != nil {
			return e.fail(ctx, err)
		}
		e.index++
	}

	if _, err := io.WriteString(e.out, "\n"); err != nil {
		return e.fail(ctx, e.errorAt(ErrOutputWrite, err, "write trailing newline"))
	}
	e.state = StateHalted
	if e.trace {
		e.logger.DebugContext(ctx, "execution halted", "steps", e.steps, "pointer", e.pointer)
	}
	return nil
}

func (e *Engine) step(ctx context.Context) error {
	e.steps++
	if e.quota > 0 && e.steps > e.quota {
		return e.errorAt(ErrStepQuotaExceeded, nil, "limit %d", e.quota)
	}
	if e.steps&(cancelCheckInterval-1) == 0 {
		if err := ctx.Err(); err != nil {
			return e.errorAt(ErrCanceled, err, "after %d steps", e.steps)
		}
	}
	return nil
}

func (e *Engine) dispatch(ctx context.Context) error {
	token := e.tokens[e.index]
	switch Decode(token) {
	case InstrSkip:
	case InstrPointerRight:
		e.movePointer(1)
	case InstrPointerLeft:
		e.movePointer(-1)
	case InstrIncrement:
		e.tape[e.pointer]++
	case InstrDecrement:
		e.tape[e.pointer]--
	case InstrInput:
		return e.readInput(ctx)
	case InstrOutput:
		return e.writeOutput()
	case InstrLoopOpen:
		e.loopStarts = append(e.loopStarts, e.index)
	case InstrLoopClose:
		return e.closeLoop(ctx)
	default:
		return e.errorAt(ErrInvalidToken, nil, "%q", token)
	}
	return nil
}

func (e *Engine) movePointer(delta int) {
	e.pointer = (e.pointer + delta + TapeSize) % TapeSize
	e.current = e.tape[e.pointer]
}

// closeLoop pops the innermost loop start when the cell is zero and
// otherwise rewinds to it. The rewind lands on the `[` itself; the
// increment after dispatch moves execution into the loop body, so the
// start is not pushed again.
func (e *Engine) closeLoop(ctx context.Context) error {
	depth := len(e.loopStarts)
	if e.tape[e.pointer] == 0 {
		if depth > 0 {
			e.loopStarts = e.loopStarts[:depth-1]
		}
		return nil
	}
	if depth == 0 {
		return e.errorAt(ErrUnmatchedLoopClose, nil, "no open loop to repeat")
	}
	target := e.loopStarts[depth-1]
	if e.trace {
		e.logger.DebugContext(ctx, "loop repeat", "from", e.index, "to", target, "pointer", e.pointer, "cell", e.tape[e.pointer])
	}
	e.index = target
	return nil
}

type readResult struct {
	line string
	err  error
}

// readInput stores the first byte of the next input line. A cancellable
// context abandons a blocked read; the engine fails, so the reader is
// never used again.
func (e *Engine) readInput(ctx context.Context) error {
	var line string
	var err error
	if ctx.Done() == nil {
		line, err = e.in.ReadString('\n')
	} else {
		done := make(chan readResult, 1)
		go func() {
			line, err := e.in.ReadString('\n')
			done <- readResult{line: line, err: err}
		}()
		select {
		case <-ctx.Done():
			return e.errorAt(ErrCanceled, ctx.Err(), "waiting for input")
		case res := <-done:
			line, err = res.line, res.err
		}
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return e.errorAt(ErrInputRead, err, "read line")
	}
	if len(line) == 0 {
		return e.errorAt(ErrEmptyInput, err, "nothing to store in cell %d", e.pointer)
	}
	e.tape[e.pointer] = line[0]
	return nil
}

// writeOutput writes the cell as the character with that code point.
func (e *Engine) writeOutput() error {
	e.outBuf = utf8.AppendRune(e.outBuf[:0], rune(e.tape[e.pointer]))
	if _, err := e.out.Write(e.outBuf); err != nil {
		return e.errorAt(ErrOutputWrite, err, "cell %d", e.pointer)
	}
	return nil
}

func (e *Engine) fail(ctx context.Context, err error) error {
	e.state = StateFailed
	e.logger.DebugContext(ctx, "execution failed", "index", e.index, "steps", e.steps, "error", err)
	return err
}

func (e *Engine) errorAt(kind error, cause error, format string, args ...any) error {
	var token rune
	if e.index >= 0 && e.index < len(e.tokens) {
		token = e.tokens[e.index]
	}
	pos := PositionAt(e.tokens, e.index)
	return &ExecutionError{
		Kind:      kind,
		Message:   fmt.Sprintf(format, args...),
		Index:     e.index,
		Token:     token,
		Pos:       pos,
		CodeFrame: FormatCodeFrame(string(e.tokens), pos),
		Err:       cause,
	}
}
