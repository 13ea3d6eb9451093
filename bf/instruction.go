package bf

// Instruction is a decoded program character.
type Instruction byte

const (
	InstrInvalid Instruction = iota
	InstrSkip
	InstrPointerRight
	InstrPointerLeft
	InstrIncrement
	InstrDecrement
	InstrInput
	InstrOutput
	InstrLoopOpen
	InstrLoopClose
)

// Decode maps a program character onto the instruction alphabet.
func Decode(r rune) Instruction {
	switch r {
	case '\n', '\t', ' ':
		return InstrSkip
	case '>':
		return InstrPointerRight
	case '<':
		return InstrPointerLeft
	case '+':
		return InstrIncrement
	case '-':
		return InstrDecrement
	case ',':
		return InstrInput
	case '.':
		return InstrOutput
	case '[':
		return InstrLoopOpen
	case ']':
		return InstrLoopClose
	default:
		return InstrInvalid
	}
}

func (i Instruction) String() string {
	switch i {
	case InstrSkip:
		return "skip"
	case InstrPointerRight:
		return ">"
	case InstrPointerLeft:
		return "<"
	case InstrIncrement:
		return "+"
	case InstrDecrement:
		return "-"
	case InstrInput:
		return ","
	case InstrOutput:
		return "."
	case InstrLoopOpen:
		return "["
	case InstrLoopClose:
		return "]"
	default:
		return "invalid"
	}
}
