// Package mode describes editing modes: how a document's text is split
// into tokens, optionally parsed, and styled.
//
// Modes are kept in an explicit Registry. Simple modes are declared in
// TOML or YAML definition files; structured modes such as todo and ledger
// also carry a grammar and are built in Go.
package mode

import (
	"path/filepath"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/tedit/internal/engine"
	"github.com/dshills/tedit/internal/engine/buffer"
	"github.com/dshills/tedit/internal/syntax/grammar"
	"github.com/dshills/tedit/internal/syntax/lexer"
	"github.com/dshills/tedit/internal/syntax/nfa"
	"github.com/dshills/tedit/internal/syntax/parsetree"
	"github.com/dshills/tedit/internal/syntax/scan"
)

// Mode is a compiled editing mode. Tokenize, Highlights and Parse are safe
// for concurrent use; they take turns on the mode's lexer. A Mode must not
// be copied after first use.
type Mode struct {
	mu sync.Mutex // serializes use of Lexer and Grammar

	Name      string
	WordChars string
	Files     []string

	Lexer   *lexer.Lexer
	Grammar *grammar.Grammar // nil for modes without structure
	Skip    []nfa.Kind

	Styles       map[nfa.Kind]tcell.Style
	DefaultStyle tcell.Style
}

// Highlight is a token placed in the buffer.
type Highlight struct {
	Token nfa.Token
	Span  buffer.Span
	Style tcell.Style
}

// Matches reports whether filename matches one of the mode's globs. Globs
// without a separator match the base name.
func (m *Mode) Matches(filename string) bool {
	base := filepath.Base(filename)
	for _, glob := range m.Files {
		target := base
		if filepath.Base(glob) != glob {
			target = filename
		}
		if ok, _ := filepath.Match(glob, target); ok {
			return true
		}
	}
	return false
}

// Tokenize lexes src from one point up to another. Offsets in the tokens
// are absolute within src. Nothing is skipped.
func (m *Mode) Tokenize(src scan.LineSource, from, to buffer.Point) []nfa.Token {
	sc := scan.NewBufferRange(src, from, to)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Lexer.All(sc)
}

// Highlights is like Tokenize but maps each token to a buffer span and a
// style.
func (m *Mode) Highlights(src scan.LineSource, from, to buffer.Point) []Highlight {
	sc := scan.NewBufferRange(src, from, to)
	m.mu.Lock()
	toks := m.Lexer.All(sc)
	m.mu.Unlock()
	out := make([]Highlight, len(toks))
	for i, tok := range toks {
		out[i] = Highlight{
			Token: tok,
			Span:  buffer.Span{Start: sc.PointAt(tok.Start), End: sc.PointAt(tok.Stop())},
			Style: m.Style(tok.Kind),
		}
	}
	return out
}

// Parse builds a parse tree of the whole source.
func (m *Mode) Parse(src scan.LineSource) (*parsetree.Tree, parsetree.NodeID, error) {
	if m.Grammar == nil {
		return nil, parsetree.NoNode, ErrNoGrammar
	}
	sc := scan.NewBuffer(src)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Grammar.Parse(sc)
}

// Style returns the style for kind, or the mode's default style.
func (m *Mode) Style(kind nfa.Kind) tcell.Style {
	if s, ok := m.Styles[kind]; ok {
		return s
	}
	return m.DefaultStyle
}

// KindName names a token or rule kind.
func (m *Mode) KindName(kind nfa.Kind) string {
	if m.Grammar != nil {
		return m.Grammar.Name(kind)
	}
	return m.Lexer.Name(kind)
}

// DocumentOptions returns the options that tie a new document to the
// mode.
func (m *Mode) DocumentOptions() []engine.Option {
	return []engine.Option{
		engine.WithMode(m.Name),
		engine.WithWordChars(m.WordChars),
	}
}
