package nfa

import "unicode"

type opcode uint8

const (
	opRune  opcode = iota // consume r
	opClass               // consume a character in classes[class]
	opAny                 // consume anything but '\n'
	opSplit               // epsilon to out and out1
	opEps                 // epsilon to out
	opMatch               // accept pattern pat
)

// state is one NFA node. Transitions refer to other states by index.
type state struct {
	op    opcode
	r     rune
	class int
	out   int
	out1  int
	pat   int
}

type classItem struct {
	lo, hi rune
	pred   func(rune) bool
}

type charClass struct {
	items  []classItem
	negate bool
}

func (c *charClass) matches(r rune) bool {
	for _, it := range c.items {
		var hit bool
		if it.pred != nil {
			hit = it.pred(r)
		} else {
			hit = r >= it.lo && r <= it.hi
		}
		if hit {
			return !c.negate
		}
	}
	return c.negate
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\f', '\v':
		return true
	}
	return false
}

func not(fn func(rune) bool) func(rune) bool {
	return func(r rune) bool { return !fn(r) }
}

// classEscapes maps \d \w \s and their negations to predicates.
var classEscapes = map[rune]func(rune) bool{
	'd': isDigit, 'D': not(isDigit),
	'w': isWord, 'W': not(isWord),
	's': isSpace, 'S': not(isSpace),
}

var literalEscapes = map[rune]rune{
	'n': '\n', 't': '\t', 'r': '\r', 'f': '\f', 'v': '\v',
}

// patch is a dangling transition waiting for its target.
type patch struct {
	state int
	alt   bool // out1 instead of out
}

// frag is a partially built automaton with one entry and dangling exits.
type frag struct {
	start int
	outs  []patch
}

// compiler parses one expression and appends its states to m.
type compiler struct {
	m     *Machine
	expr  string
	src   []rune
	pos   int
	index int
}

func (c *compiler) fail(pos int, msg string) error {
	return &CompileError{Pattern: c.expr, Index: c.index, Pos: pos, Msg: msg}
}

func (c *compiler) more() bool { return c.pos < len(c.src) }
func (c *compiler) peek() rune { return c.src[c.pos] }

func (c *compiler) next() rune {
	r := c.src[c.pos]
	c.pos++
	return r
}

func (c *compiler) add(s state) int {
	c.m.states = append(c.m.states, s)
	return len(c.m.states) - 1
}

// compile builds the automaton for one pattern and returns its entry.
func (c *compiler) compile() (int, error) {
	if len(c.src) == 0 {
		return 0, c.fail(0, "empty pattern")
	}
	f, err := c.parseAlt()
	if err != nil {
		return 0, err
	}
	if c.more() {
		return 0, c.fail(c.pos, "unmatched ')'")
	}
	accept := c.add(state{op: opMatch, pat: c.index})
	c.connect(f.outs, accept)
	return f.start, nil
}

func (c *compiler) parseAlt() (frag, error) {
	left, err := c.parseConcat()
	if err != nil {
		return frag{}, err
	}
	for c.more() && c.peek() == '|' {
		c.pos++
		right, err := c.parseConcat()
		if err != nil {
			return frag{}, err
		}
		left = c.alternate(left, right)
	}
	return left, nil
}

func (c *compiler) parseConcat() (frag, error) {
	var f frag
	have := false
	for c.more() && c.peek() != '|' && c.peek() != ')' {
		nf, err := c.parseRepeat()
		if err != nil {
			return frag{}, err
		}
		if have {
			f = c.concat(f, nf)
		} else {
			f, have = nf, true
		}
	}
	if !have {
		return c.empty(), nil
	}
	return f, nil
}

func (c *compiler) parseRepeat() (frag, error) {
	f, err := c.parseAtom()
	if err != nil {
		return frag{}, err
	}
	for c.more() {
		switch c.peek() {
		case '*':
			f = c.star(f)
		case '+':
			f = c.plus(f)
		case '?':
			f = c.quest(f)
		default:
			return f, nil
		}
		c.pos++
	}
	return f, nil
}

func (c *compiler) parseAtom() (frag, error) {
	at := c.pos
	switch r := c.next(); r {
	case '(':
		f, err := c.parseAlt()
		if err != nil {
			return frag{}, err
		}
		if !c.more() || c.peek() != ')' {
			return frag{}, c.fail(at, "unmatched '('")
		}
		c.pos++
		return f, nil
	case '*', '+', '?':
		return frag{}, c.fail(at, "nothing to repeat")
	case '[':
		return c.parseClass(at)
	case '.':
		return c.single(state{op: opAny}), nil
	case '\\':
		pred, lit, err := c.parseEscape(at)
		if err != nil {
			return frag{}, err
		}
		if pred != nil {
			return c.classState(charClass{items: []classItem{{pred: pred}}}), nil
		}
		return c.single(state{op: opRune, r: lit}), nil
	default:
		return c.single(state{op: opRune, r: r}), nil
	}
}

// parseEscape reads the character after a backslash. It returns either a
// class predicate or a literal.
func (c *compiler) parseEscape(at int) (func(rune) bool, rune, error) {
	if !c.more() {
		return nil, 0, c.fail(at, "trailing backslash")
	}
	e := c.next()
	if pred, ok := classEscapes[e]; ok {
		return pred, 0, nil
	}
	if lit, ok := literalEscapes[e]; ok {
		return nil, lit, nil
	}
	return nil, e, nil
}

func (c *compiler) parseClass(at int) (frag, error) {
	var cls charClass
	if c.more() && c.peek() == '^' {
		cls.negate = true
		c.pos++
	}

	first := true
	for {
		if !c.more() {
			return frag{}, c.fail(at, "unterminated character class")
		}
		itemAt := c.pos
		r := c.next()
		if r == ']' && !first {
			break
		}
		first = false

		lo := r
		if r == '\\' {
			pred, lit, err := c.parseEscape(itemAt)
			if err != nil {
				return frag{}, err
			}
			if pred != nil {
				cls.items = append(cls.items, classItem{pred: pred})
				continue
			}
			lo = lit
		}

		hi := lo
		if c.pos+1 < len(c.src) && c.peek() == '-' && c.src[c.pos+1] != ']' {
			c.pos++
			hi = c.next()
			if hi == '\\' {
				pred, lit, err := c.parseEscape(c.pos - 1)
				if err != nil {
					return frag{}, err
				}
				if pred != nil {
					return frag{}, c.fail(itemAt, "class escape cannot end a range")
				}
				hi = lit
			}
			if hi < lo {
				return frag{}, c.fail(itemAt, "invalid range")
			}
		}
		cls.items = append(cls.items, classItem{lo: lo, hi: hi})
	}
	return c.classState(cls), nil
}

func (c *compiler) classState(cls charClass) frag {
	c.m.classes = append(c.m.classes, cls)
	return c.single(state{op: opClass, class: len(c.m.classes) - 1})
}

// Thompson construction over the state arena.

func (c *compiler) connect(outs []patch, to int) {
	for _, p := range outs {
		if p.alt {
			c.m.states[p.state].out1 = to
		} else {
			c.m.states[p.state].out = to
		}
	}
}

func (c *compiler) single(s state) frag {
	i := c.add(s)
	return frag{start: i, outs: []patch{{state: i}}}
}

func (c *compiler) empty() frag {
	return c.single(state{op: opEps})
}

func (c *compiler) concat(a, b frag) frag {
	c.connect(a.outs, b.start)
	return frag{start: a.start, outs: b.outs}
}

func (c *compiler) alternate(a, b frag) frag {
	s := c.add(state{op: opSplit, out: a.start, out1: b.start})
	return frag{start: s, outs: append(a.outs, b.outs...)}
}

func (c *compiler) star(f frag) frag {
	s := c.add(state{op: opSplit, out: f.start})
	c.connect(f.outs, s)
	return frag{start: s, outs: []patch{{state: s, alt: true}}}
}

func (c *compiler) plus(f frag) frag {
	s := c.add(state{op: opSplit, out: f.start})
	c.connect(f.outs, s)
	return frag{start: f.start, outs: []patch{{state: s, alt: true}}}
}

func (c *compiler) quest(f frag) frag {
	s := c.add(state{op: opSplit, out: f.start})
	return frag{start: s, outs: append(f.outs, patch{state: s, alt: true})}
}
