package grammar

import (
	"github.com/dshills/tedit/internal/syntax/nfa"
	"github.com/dshills/tedit/internal/syntax/parsetree"
	"github.com/dshills/tedit/internal/syntax/scan"
)

// Parse lexes the rest of sc and parses it from the start rule. The
// result is a Root node whose only child is the start rule's node. Every
// token except skipped ones must be consumed.
func (g *Grammar) Parse(sc scan.Scanner) (*parsetree.Tree, parsetree.NodeID, error) {
	toks := g.lex.All(sc, g.skip...)
	return g.ParseTokens(toks, sc.Position())
}

// ParseTokens parses an already lexed stream. end is the offset reported
// when the parser runs out of tokens.
func (g *Grammar) ParseTokens(toks []nfa.Token, end int) (*parsetree.Tree, parsetree.NodeID, error) {
	p := &parser{g: g, toks: toks, end: end, tree: parsetree.New()}

	pos, kids, ok := p.match(&term{op: opRef, sym: g.start}, 0, nil)
	if ok && pos < len(toks) {
		p.fail(pos, "End")
		ok = false
	}
	if !ok {
		return nil, parsetree.NoNode, p.error()
	}

	root, err := p.tree.MakeNode(nfa.Root, kids...)
	if err != nil {
		return nil, parsetree.NoNode, err
	}
	return p.tree, root, nil
}

type parser struct {
	g    *Grammar
	toks []nfa.Token
	end  int
	tree *parsetree.Tree

	far      int
	expected []string
}

// fail records an expectation at token index pos. Only the furthest
// position is kept.
func (p *parser) fail(pos int, want string) {
	switch {
	case pos > p.far:
		p.far = pos
		p.expected = append(p.expected[:0], want)
	case pos == p.far:
		for _, e := range p.expected {
			if e == want {
				return
			}
		}
		p.expected = append(p.expected, want)
	}
}

func (p *parser) error() *ParseError {
	err := &ParseError{Offset: p.end, Found: nfa.End.String(), Expected: p.expected}
	if p.far < len(p.toks) {
		tok := p.toks[p.far]
		err.Offset = tok.Start
		err.Found = p.g.Name(tok.Kind)
	}
	return err
}

// match tries t at token index pos, appending produced nodes to out. On
// failure the caller discards nodes built since its own mark.
func (p *parser) match(t *term, pos int, out []parsetree.NodeID) (int, []parsetree.NodeID, bool) {
	switch t.op {
	case opTok:
		if pos < len(p.toks) && p.toks[pos].Kind == nfa.Kind(t.sym) {
			return pos + 1, append(out, p.tree.MakeLeaf(p.toks[pos])), true
		}
		p.fail(pos, p.g.names[t.sym])
		return pos, out, false

	case opRef:
		mark := p.tree.Mark()
		next, kids, ok := p.match(p.g.rules[t.sym], pos, nil)
		if !ok {
			p.tree.Rollback(mark)
			return pos, out, false
		}
		id, err := p.tree.MakeNode(nfa.Kind(p.g.nterms+t.sym), kids...)
		if err != nil {
			panic(err)
		}
		return next, append(out, id), true

	case opSeq:
		for _, it := range t.items {
			var ok bool
			if pos, out, ok = p.match(it, pos, out); !ok {
				return pos, out, false
			}
		}
		return pos, out, true

	case opAlt:
		for _, it := range t.items {
			mark, n := p.tree.Mark(), len(out)
			next, res, ok := p.match(it, pos, out)
			if ok {
				return next, res, true
			}
			p.tree.Rollback(mark)
			out = out[:n]
		}
		return pos, out, false

	case opOpt:
		return p.repeat(t.items[0], pos, out, 1)

	case opStar:
		return p.repeat(t.items[0], pos, out, -1)

	default: // opPlus
		next, res, ok := p.match(t.items[0], pos, out)
		if !ok {
			return pos, res, false
		}
		return p.repeat(t.items[0], next, res, -1)
	}
}

// repeat matches t up to limit times (unbounded when negative). It stops
// when t fails or matches without consuming a token.
func (p *parser) repeat(t *term, pos int, out []parsetree.NodeID, limit int) (int, []parsetree.NodeID, bool) {
	for limit != 0 {
		mark, n := p.tree.Mark(), len(out)
		next, res, ok := p.match(t, pos, out)
		if !ok || next == pos {
			p.tree.Rollback(mark)
			return pos, out[:n], true
		}
		pos, out = next, res
		limit--
	}
	return pos, out, true
}
