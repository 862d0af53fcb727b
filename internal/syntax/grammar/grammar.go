// Package grammar builds small ordered-choice grammars over a lexer and
// parses token streams into a parsetree.
//
// Terminals are declared first, each with a pattern; they become the
// lexer's token kinds in declaration order. Rules follow and are numbered
// after the terminals, so every node in a parse tree has a kind that
// Grammar.Name can resolve:
//
//	b := grammar.NewBuilder()
//	b.Terminal("word", "\\w+")
//	b.Terminal("space", "\\s+")
//	b.Rule("words", grammar.Plus(grammar.Tok("word")))
//	b.Start("words")
//	b.Skip("space")
//	g, err := b.Build()
//
// Alternatives are tried in order and the first match wins. Left-recursive
// rules are rejected by Build.
package grammar

import (
	"fmt"
	"strings"

	"github.com/dshills/tedit/internal/syntax/lexer"
	"github.com/dshills/tedit/internal/syntax/nfa"
)

type ruleDef struct {
	name string
	expr Expr
}

// Builder collects terminals and rules.
type Builder struct {
	terms   []lexer.Def
	rules   []ruleDef
	symbols map[string]bool
	start   string
	skip    []string
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{symbols: make(map[string]bool)}
}

// Terminal declares a token class. All terminals must precede the first
// rule.
func (b *Builder) Terminal(name, pattern string) error {
	if len(b.rules) > 0 {
		return fmt.Errorf("%w: %s", ErrLateTerminal, name)
	}
	if b.symbols[name] {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	b.symbols[name] = true
	b.terms = append(b.terms, lexer.Def{Kind: nfa.Kind(len(b.terms)), Name: name, Pattern: pattern})
	return nil
}

// Rule declares a rule. Rules may refer to rules declared later.
func (b *Builder) Rule(name string, e Expr) error {
	if b.symbols[name] {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	b.symbols[name] = true
	b.rules = append(b.rules, ruleDef{name: name, expr: e})
	return nil
}

// Start names the rule a parse begins with. It is checked by Build.
func (b *Builder) Start(name string) {
	b.start = name
}

// Skip names terminals the parser never sees, such as whitespace.
func (b *Builder) Skip(names ...string) {
	b.skip = append(b.skip, names...)
}

// Grammar is a compiled grammar. Parsing uses the grammar's lexer, which
// is not safe for concurrent use.
type Grammar struct {
	lex      *lexer.Lexer
	names    []string // terminals then rules
	index    map[string]int
	nterms   int
	rules    []*term
	start    int
	skip     []nfa.Kind
	first    [][]bool
	nullable []bool
}

// Build resolves names, checks for left recursion and compiles the lexer.
func (b *Builder) Build() (*Grammar, error) {
	g := &Grammar{
		index:  make(map[string]int),
		nterms: len(b.terms),
	}
	for i, t := range b.terms {
		g.names = append(g.names, t.Name)
		g.index[t.Name] = i
	}
	for i, r := range b.rules {
		g.names = append(g.names, r.name)
		g.index[r.name] = g.nterms + i
	}

	for _, r := range b.rules {
		t, err := g.resolve(r.expr)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.name, err)
		}
		g.rules = append(g.rules, t)
	}

	start, ok := g.index[b.start]
	if !ok || start < g.nterms {
		return nil, fmt.Errorf("%w: %q", ErrNoStart, b.start)
	}
	g.start = start - g.nterms

	for _, name := range b.skip {
		i, ok := g.index[name]
		if !ok || i >= g.nterms {
			return nil, fmt.Errorf("skip: %w terminal %q", ErrUndefined, name)
		}
		g.skip = append(g.skip, nfa.Kind(i))
	}

	g.computeFirst()
	if cycle := g.leftCycle(); cycle != nil {
		return nil, fmt.Errorf("%w: %s", ErrLeftRecursion, strings.Join(cycle, " -> "))
	}

	lex, err := lexer.New(b.terms...)
	if err != nil {
		return nil, err
	}
	g.lex = lex
	return g, nil
}

func (g *Grammar) resolve(e Expr) (*term, error) {
	t := &term{op: e.op}
	switch e.op {
	case opTok, opRef:
		i, ok := g.index[e.name]
		isTerm := ok && i < g.nterms
		if !ok || isTerm != (e.op == opTok) {
			return nil, fmt.Errorf("%w: %s(%q)", ErrUndefined, e.op, e.name)
		}
		if e.op == opRef {
			i -= g.nterms
		}
		t.sym = i
		return t, nil
	case opAlt:
		if len(e.items) == 0 {
			return nil, ErrEmptyAlt
		}
	}
	for _, it := range e.items {
		rt, err := g.resolve(it)
		if err != nil {
			return nil, err
		}
		t.items = append(t.items, rt)
	}
	return t, nil
}

// computeFirst fills the FIRST sets and nullability of every rule by
// iterating to a fixed point.
func (g *Grammar) computeFirst() {
	g.first = make([][]bool, len(g.rules))
	for i := range g.first {
		g.first[i] = make([]bool, g.nterms)
	}
	g.nullable = make([]bool, len(g.rules))

	for changed := true; changed; {
		changed = false
		for i, r := range g.rules {
			set := make([]bool, g.nterms)
			null := g.firstOf(r, set)
			for k, in := range set {
				if in && !g.first[i][k] {
					g.first[i][k] = true
					changed = true
				}
			}
			if null && !g.nullable[i] {
				g.nullable[i] = true
				changed = true
			}
		}
	}
}

// firstOf adds the terminals that can start t to set and reports whether
// t can match without consuming a token.
func (g *Grammar) firstOf(t *term, set []bool) bool {
	switch t.op {
	case opTok:
		set[t.sym] = true
		return false
	case opRef:
		for k, in := range g.first[t.sym] {
			set[k] = set[k] || in
		}
		return g.nullable[t.sym]
	case opSeq:
		for _, it := range t.items {
			if !g.firstOf(it, set) {
				return false
			}
		}
		return true
	case opAlt:
		null := false
		for _, it := range t.items {
			if g.firstOf(it, set) {
				null = true
			}
		}
		return null
	case opPlus:
		return g.firstOf(t.items[0], set)
	default: // opStar, opOpt
		g.firstOf(t.items[0], set)
		return true
	}
}

// leftEdge lists the rules t can invoke before consuming a token.
func (g *Grammar) leftEdge(t *term, out []int) ([]int, bool) {
	switch t.op {
	case opTok:
		return out, false
	case opRef:
		return append(out, t.sym), g.nullable[t.sym]
	case opSeq:
		for _, it := range t.items {
			var null bool
			out, null = g.leftEdge(it, out)
			if !null {
				return out, false
			}
		}
		return out, true
	case opAlt:
		null := false
		for _, it := range t.items {
			var n bool
			out, n = g.leftEdge(it, out)
			null = null || n
		}
		return out, null
	case opPlus:
		return g.leftEdge(t.items[0], out)
	default:
		out, _ = g.leftEdge(t.items[0], out)
		return out, true
	}
}

// leftCycle returns the rule names of a left-recursive cycle, or nil.
func (g *Grammar) leftCycle() []string {
	edges := make([][]int, len(g.rules))
	for i, r := range g.rules {
		edges[i], _ = g.leftEdge(r, nil)
	}

	const (
		unvisited = iota
		active
		done
	)
	state := make([]int, len(g.rules))
	var path []int
	var visit func(int) []string
	visit = func(r int) []string {
		state[r] = active
		path = append(path, r)
		for _, next := range edges[r] {
			switch state[next] {
			case active:
				var cycle []string
				for i := len(path) - 1; i >= 0; i-- {
					if path[i] == next {
						for _, p := range path[i:] {
							cycle = append(cycle, g.names[g.nterms+p])
						}
						break
					}
				}
				return append(cycle, g.names[g.nterms+next])
			case unvisited:
				if c := visit(next); c != nil {
					return c
				}
			}
		}
		path = path[:len(path)-1]
		state[r] = done
		return nil
	}
	for r := range g.rules {
		if state[r] == unvisited {
			if c := visit(r); c != nil {
				return c
			}
		}
	}
	return nil
}

// Lexer returns the grammar's lexer.
func (g *Grammar) Lexer() *lexer.Lexer {
	return g.lex
}

// Name returns the terminal or rule name for a kind.
func (g *Grammar) Name(kind nfa.Kind) string {
	if kind >= 0 && int(kind) < len(g.names) {
		return g.names[kind]
	}
	return kind.String()
}

// Kind returns the kind of a terminal or rule.
func (g *Grammar) Kind(name string) (nfa.Kind, bool) {
	i, ok := g.index[name]
	return nfa.Kind(i), ok
}

// IsTerminal reports whether kind is a terminal.
func (g *Grammar) IsTerminal(kind nfa.Kind) bool {
	return kind >= 0 && int(kind) < g.nterms
}

// Skip returns the skipped terminal kinds.
func (g *Grammar) Skip() []nfa.Kind {
	return append([]nfa.Kind(nil), g.skip...)
}

// First returns the terminals that can begin name, in declaration order.
func (g *Grammar) First(name string) ([]string, bool) {
	i, ok := g.index[name]
	if !ok {
		return nil, false
	}
	if i < g.nterms {
		return []string{name}, true
	}
	var out []string
	for k, in := range g.first[i-g.nterms] {
		if in {
			out = append(out, g.names[k])
		}
	}
	return out, true
}

// Nullable reports whether the rule can match no tokens.
func (g *Grammar) Nullable(name string) bool {
	i, ok := g.index[name]
	return ok && i >= g.nterms && g.nullable[i-g.nterms]
}
