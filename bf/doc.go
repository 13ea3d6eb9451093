// Package bf implements the vibebf execution engine for the eight-instruction
// tape language:
//   - `>` and `<` move the pointer one cell, wrapping around the tape.
//   - `+` and `-` add or subtract one from the current cell (mod 256).
//   - `.` writes the current cell as a character, `,` reads one input line
//     and stores its first byte.
//   - `[` records a loop start and `]` jumps back while the cell is non-zero.
//
// Newlines, tabs and spaces are ignored. Every other character is rejected
// when the engine reaches it; there is no comment syntax. The tape holds
// TapeSize cells and an engine runs exactly once.
package bf
