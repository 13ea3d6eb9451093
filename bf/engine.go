package bf

import (
	"bufio"
	"io"
	"log/slog"
	"os"
)

// TapeSize is the number of cells on every engine's tape.
const TapeSize = 4000

// Config wires an engine to its console and bounds its execution.
type Config struct {
	// Input feeds `,`; defaults to os.Stdin.
	Input io.Reader
	// Output receives `.` writes and the trailing newline; defaults to os.Stdout.
	Output io.Writer
	// Logger receives debug records; defaults to a discarding logger.
	Logger *slog.Logger
	// StepQuota caps dispatched instructions. Zero means unbounded.
	StepQuota int
}

// State is the lifecycle position of an engine.
type State int

const (
	StateRunning State = iota
	StateHalted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Engine owns the tape, pointer and jump stack for a single program run.
type Engine struct {
	tape       [TapeSize]byte
	current    byte
	pointer    int
	index      int
	tokens     []rune
	loopStarts []int

	in     *bufio.Reader
	out    io.Writer
	outBuf []byte
	logger *slog.Logger
	trace  bool

	quota int
	steps int
	state State
}

// NewEngine prepares an engine for program. Bracket balance is not checked;
// a stray `]` only fails if the engine reaches it with a non-zero cell.
func NewEngine(program []rune, cfg Config) *Engine {
	if cfg.Input == nil {
		cfg.Input = os.Stdin
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.StepQuota < 0 {
		cfg.StepQuota = 0
	}

	in, ok := cfg.Input.(*bufio.Reader)
	if !ok {
		in = bufio.NewReader(cfg.Input)
	}

	return &Engine{
		tokens: append([]rune(nil), program...),
		in:     in,
		out:    cfg.Output,
		outBuf: make([]byte, 0, 4),
		logger: cfg.Logger,
		quota:  cfg.StepQuota,
		state:  StateRunning,
	}
}

// Compile is NewEngine for program text.
func Compile(source string, cfg Config) *Engine {
	return NewEngine([]rune(source), cfg)
}

// Pointer returns the index of the active cell.
func (e *Engine) Pointer() int {
	return e.pointer
}

// Index returns the instruction index.
func (e *Engine) Index() int {
	return e.index
}

// CurrentValue returns the cell value cached by the last pointer move. It
// does not track `+`, `-` or `,` on the same cell; use Cell for that.
func (e *Engine) CurrentValue() byte {
	return e.current
}

// Cell returns the value at tape index i.
func (e *Engine) Cell(i int) byte {
	return e.tape[i]
}

// Tape returns a copy of the whole tape.
func (e *Engine) Tape() []byte {
	out := make([]byte, TapeSize)
	copy(out, e.tape[:])
	return out
}

// JumpDepth returns the number of recorded loop starts.
func (e *Engine) JumpDepth() int {
	return len(e.loopStarts)
}

// State reports whether the engine is still runnable.
func (e *Engine) State() State {
	return e.state
}

// Steps returns the number of dispatched instructions.
func (e *Engine) Steps() int {
	return e.steps
}
