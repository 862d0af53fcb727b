package nfa

import (
	"errors"
	"fmt"
)

// Kind classifies a token. Non-negative kinds belong to the pattern set;
// negative kinds are reserved.
type Kind int

// Reserved kinds.
const (
	End     Kind = -1 // end of input
	Unknown Kind = -2 // a character no pattern matched
	Root    Kind = -3 // root of a parse tree
)

// String returns the reserved name or the number.
func (k Kind) String() string {
	switch k {
	case End:
		return "End"
	case Unknown:
		return "Unknown"
	case Root:
		return "Root"
	default:
		return fmt.Sprintf("%d", int(k))
	}
}

// Reserved reports whether k is one of the reserved kinds.
func (k Kind) Reserved() bool {
	return k < 0
}

// Token is a classified span of input. Start is a character offset into
// the scanned stream.
type Token struct {
	Kind  Kind
	Start int
	Len   int
}

// Stop returns the offset just past the token.
func (t Token) Stop() int {
	return t.Start + t.Len
}

// String returns "kind: start..stop".
func (t Token) String() string {
	return fmt.Sprintf("%s: %d..%d", t.Kind, t.Start, t.Stop())
}

// Pattern pairs a token kind with its expression.
type Pattern struct {
	Kind Kind
	Expr string
}

// ErrPatternCompile is wrapped by every compile failure.
var ErrPatternCompile = errors.New("pattern compile error")

// CompileError describes a malformed pattern.
type CompileError struct {
	Pattern string // the offending expression
	Index   int    // its position in the pattern set
	Pos     int    // character offset of the problem
	Msg     string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%v: pattern %d %q at %d: %s", ErrPatternCompile, e.Index, e.Pattern, e.Pos, e.Msg)
}

func (e *CompileError) Unwrap() error {
	return ErrPatternCompile
}
