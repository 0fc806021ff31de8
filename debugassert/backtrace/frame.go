package backtrace

import (
	"strconv"
	"strings"
)

// UnknownSymbol is printed in place of a function name the runtime could not resolve.
const UnknownSymbol = "<unknown>"

// Frame is one call stack entry. Function, File and Line are empty when the
// runtime has no symbol information for PC.
type Frame struct {
	PC       uintptr
	Function string
	File     string
	Line     int
}

// Resolved reports whether a symbol was found for the frame.
func (f Frame) Resolved() bool {
	return f.Function != ""
}

// Address renders PC as a hex literal.
func (f Frame) Address() string {
	return "0x" + strconv.FormatUint(uint64(f.PC), 16)
}

// String renders the frame on one line:
//
//	main.process (/src/main.go:42)
//	main.process (0x4a5b6c)
//	<unknown> (0x4a5b6c)
func (f Frame) String() string {
	var sb strings.Builder

	if f.Resolved() {
		sb.WriteString(f.Function)
	} else {
		sb.WriteString(UnknownSymbol)
	}

	sb.WriteString(" (")

	if f.File != "" {
		sb.WriteString(f.File)
		sb.WriteString(":")
		sb.WriteString(strconv.Itoa(f.Line))
	} else {
		sb.WriteString(f.Address())
	}

	sb.WriteString(")")

	return sb.String()
}

// Backtrace is an ordered list of frames, innermost call first.
type Backtrace []Frame

// Len returns the number of frames.
func (b Backtrace) Len() int {
	return len(b)
}

// Functions returns the function name of every frame, using UnknownSymbol
// for unresolved ones.
func (b Backtrace) Functions() []string {
	names := make([]string, len(b))

	for i, f := range b {
		if f.Resolved() {
			names[i] = f.Function
		} else {
			names[i] = UnknownSymbol
		}
	}

	return names
}

// Lines returns the numbered rendering of every frame.
func (b Backtrace) Lines() []string {
	lines := make([]string, len(b))
	for i, f := range b {
		lines[i] = strconv.Itoa(i) + "  " + f.String()
	}

	return lines
}

// String joins Lines with newlines. An empty backtrace renders as "".
func (b Backtrace) String() string {
	return strings.Join(b.Lines(), "\n")
}

// Bytes is String as a byte slice, for APIs that carry stacks as []byte.
func (b Backtrace) Bytes() []byte {
	return []byte(b.String())
}
