package nfa

import (
	"fmt"

	"github.com/dshills/tedit/internal/syntax/scan"
)

// Machine is a compiled pattern set plus the live state set of a
// simulation in progress.
type Machine struct {
	patterns []Pattern
	states   []state
	classes  []charClass
	starts   []int // entry state of each pattern

	cur, next *sparseSet
	stack     []int
}

// Compile builds a machine from patterns. Registration order fixes the
// precedence used to break ties between equally long matches.
func Compile(patterns ...Pattern) (*Machine, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("%w: no patterns", ErrPatternCompile)
	}

	m := &Machine{patterns: append([]Pattern(nil), patterns...)}
	for i, p := range patterns {
		if p.Kind.Reserved() {
			return nil, &CompileError{Pattern: p.Expr, Index: i, Msg: fmt.Sprintf("reserved kind %s", p.Kind)}
		}
		c := &compiler{m: m, expr: p.Expr, src: []rune(p.Expr), index: i}
		start, err := c.compile()
		if err != nil {
			return nil, err
		}
		m.starts = append(m.starts, start)
	}

	m.cur = newSparseSet(len(m.states))
	m.next = newSparseSet(len(m.states))
	m.Reset()
	return m, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(patterns ...Pattern) *Machine {
	m, err := Compile(patterns...)
	if err != nil {
		panic(err)
	}
	return m
}

// Patterns returns the pattern set in registration order.
func (m *Machine) Patterns() []Pattern {
	return append([]Pattern(nil), m.patterns...)
}

// NumStates returns the size of the state arena.
func (m *Machine) NumStates() int {
	return len(m.states)
}

// Reset returns the simulation to the start states.
func (m *Machine) Reset() {
	m.cur.clear()
	for _, s := range m.starts {
		m.closure(m.cur, s)
	}
}

// Step advances every live state over r and reports whether any state is
// still live.
func (m *Machine) Step(r rune) bool {
	m.next.clear()
	for _, i := range m.cur.items() {
		st := &m.states[i]
		if m.consumes(st, r) {
			m.closure(m.next, st.out)
		}
	}
	m.cur, m.next = m.next, m.cur
	return m.cur.len() > 0
}

// Alive reports whether any state is live.
func (m *Machine) Alive() bool {
	return m.cur.len() > 0
}

// Accepting returns the kind of the earliest registered pattern whose
// accept state is live.
func (m *Machine) Accepting() (Kind, bool) {
	best := -1
	for _, i := range m.cur.items() {
		st := &m.states[i]
		if st.op == opMatch && (best < 0 || st.pat < best) {
			best = st.pat
		}
	}
	if best < 0 {
		return 0, false
	}
	return m.patterns[best].Kind, true
}

// Match finds the longest match starting at the scanner's position. On
// success the scanner is left just after the token; otherwise it is
// rewound to where it started. Zero-length matches do not count.
func (m *Machine) Match(sc scan.Scanner) (Token, bool) {
	m.Reset()
	start := sc.Position()
	lastEnd := start
	var lastKind Kind

	for {
		r, ok := sc.Peek()
		if !ok || !m.Step(r) {
			break
		}
		sc.Advance()
		if k, ok := m.Accepting(); ok {
			lastKind, lastEnd = k, sc.Position()
		}
	}

	// Both offsets were observed during this call.
	if lastEnd == start {
		_ = sc.Rewind(start)
		return Token{}, false
	}
	_ = sc.Rewind(lastEnd)
	return Token{Kind: lastKind, Start: start, Len: lastEnd - start}, true
}

func (m *Machine) consumes(st *state, r rune) bool {
	switch st.op {
	case opRune:
		return st.r == r
	case opAny:
		return r != '\n'
	case opClass:
		return m.classes[st.class].matches(r)
	default:
		return false
	}
}

// closure adds s and every state reachable from it by epsilon moves.
func (m *Machine) closure(set *sparseSet, s int) {
	m.stack = append(m.stack[:0], s)
	for len(m.stack) > 0 {
		i := m.stack[len(m.stack)-1]
		m.stack = m.stack[:len(m.stack)-1]
		if set.contains(i) {
			continue
		}
		set.add(i)

		st := &m.states[i]
		switch st.op {
		case opSplit:
			m.stack = append(m.stack, st.out1, st.out)
		case opEps:
			m.stack = append(m.stack, st.out)
		}
	}
}
