package grammar

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicate     = errors.New("duplicate symbol")
	ErrLateTerminal  = errors.New("terminal declared after a rule")
	ErrUndefined     = errors.New("undefined symbol")
	ErrNoStart       = errors.New("no start rule")
	ErrEmptyAlt      = errors.New("empty alternation")
	ErrLeftRecursion = errors.New("left recursion")
	ErrSyntax        = errors.New("syntax error")
)

// ParseError reports where parsing stopped. Offset is the character offset
// of the furthest token the parser reached.
type ParseError struct {
	Offset   int
	Expected []string
	Found    string
}

func (e *ParseError) Error() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("%v at %d: unexpected %s", ErrSyntax, e.Offset, e.Found)
	}
	return fmt.Sprintf("%v at %d: expected %s, found %s",
		ErrSyntax, e.Offset, strings.Join(e.Expected, " or "), e.Found)
}

func (e *ParseError) Unwrap() error {
	return ErrSyntax
}
