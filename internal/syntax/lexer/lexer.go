// Package lexer splits a character stream into tokens using a compiled
// pattern set.
//
// Each call to Next returns the longest match at the scanner's position.
// When no pattern matches, one character is consumed and returned as an
// nfa.Unknown token, so lexing always makes progress. At end of input Next
// returns an nfa.End token of length zero.
package lexer

import (
	"errors"
	"fmt"

	"github.com/dshills/tedit/internal/syntax/nfa"
	"github.com/dshills/tedit/internal/syntax/scan"
)

// ErrDuplicateKind is returned when two definitions share a kind.
var ErrDuplicateKind = errors.New("duplicate token kind")

// Def defines one token class.
type Def struct {
	Kind    nfa.Kind
	Name    string
	Pattern string
}

// Lexer produces tokens from a scanner. It is not safe for concurrent use.
type Lexer struct {
	defs    []Def
	names   map[nfa.Kind]string
	machine *nfa.Machine
}

// New compiles defs in order. Earlier definitions win ties.
func New(defs ...Def) (*Lexer, error) {
	names := make(map[nfa.Kind]string, len(defs))
	patterns := make([]nfa.Pattern, 0, len(defs))
	for _, d := range defs {
		if _, dup := names[d.Kind]; dup {
			return nil, fmt.Errorf("%w: %s (%s)", ErrDuplicateKind, d.Kind, d.Name)
		}
		names[d.Kind] = d.Name
		patterns = append(patterns, nfa.Pattern{Kind: d.Kind, Expr: d.Pattern})
	}

	m, err := nfa.Compile(patterns...)
	if err != nil {
		return nil, fmt.Errorf("lexer: %w", err)
	}
	return &Lexer{
		defs:    append([]Def(nil), defs...),
		names:   names,
		machine: m,
	}, nil
}

// Next returns the token at the scanner's position.
func (l *Lexer) Next(sc scan.Scanner) nfa.Token {
	start := sc.Position()
	if sc.AtEnd() {
		return nfa.Token{Kind: nfa.End, Start: start}
	}
	if tok, ok := l.machine.Match(sc); ok {
		return tok
	}
	sc.Advance()
	return nfa.Token{Kind: nfa.Unknown, Start: start, Len: 1}
}

// NextSkipping is like Next but discards tokens of the given kinds.
func (l *Lexer) NextSkipping(sc scan.Scanner, skip ...nfa.Kind) nfa.Token {
	for {
		tok := l.Next(sc)
		if tok.Kind == nfa.End || !contains(skip, tok.Kind) {
			return tok
		}
	}
}

// All lexes until end of input. The End token is not included.
func (l *Lexer) All(sc scan.Scanner, skip ...nfa.Kind) []nfa.Token {
	var toks []nfa.Token
	for {
		tok := l.NextSkipping(sc, skip...)
		if tok.Kind == nfa.End {
			return toks
		}
		toks = append(toks, tok)
	}
}

// Name returns the definition name for kind, or the reserved name.
func (l *Lexer) Name(kind nfa.Kind) string {
	if name, ok := l.names[kind]; ok {
		return name
	}
	return kind.String()
}

// Kind looks up a kind by definition name.
func (l *Lexer) Kind(name string) (nfa.Kind, bool) {
	for _, d := range l.defs {
		if d.Name == name {
			return d.Kind, true
		}
	}
	return 0, false
}

// Defs returns the definitions in registration order.
func (l *Lexer) Defs() []Def {
	return append([]Def(nil), l.defs...)
}

func contains(kinds []nfa.Kind, k nfa.Kind) bool {
	for _, s := range kinds {
		if s == k {
			return true
		}
	}
	return false
}
