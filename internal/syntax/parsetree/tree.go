// Package parsetree stores parse trees in a flat arena.
//
// Nodes are addressed by NodeID. A composite node records its children as a
// range of a shared child slice, so building a node never allocates per
// child. A node can be adopted by one parent only. Trees are cheap to throw
// away: modes rebuild them after every re-tokenization.
package parsetree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/tedit/internal/syntax/nfa"
)

// NodeID addresses a node in a Tree.
type NodeID int32

// NoNode is returned for missing parents and children.
const NoNode NodeID = -1

var (
	// ErrAlreadyOwned is returned when a child already has a parent.
	ErrAlreadyOwned = errors.New("node already has a parent")

	// ErrInvalidNode is returned for ids outside the tree.
	ErrInvalidNode = errors.New("invalid node id")
)

type node struct {
	tok    nfa.Token
	parent NodeID
	first  int32 // index into Tree.kids
	count  int32
	leaf   bool
}

// Tree is an arena of nodes.
type Tree struct {
	nodes []node
	kids  []NodeID
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{}
}

// Mark records the arena size for Rollback.
type Mark struct {
	nodes, kids int
}

// NumNodes returns the number of nodes in the arena.
func (t *Tree) NumNodes() int {
	return len(t.nodes)
}

// Reset empties the tree, keeping its storage.
func (t *Tree) Reset() {
	t.nodes = t.nodes[:0]
	t.kids = t.kids[:0]
}

// MakeLeaf adds a leaf holding tok.
func (t *Tree) MakeLeaf(tok nfa.Token) NodeID {
	t.nodes = append(t.nodes, node{tok: tok, parent: NoNode, leaf: true})
	return NodeID(len(t.nodes) - 1)
}

// MakeNode adds a composite node of the given kind adopting children in
// order. The node's span covers its children; a node without children is
// empty at offset 0. On error the tree is unchanged.
func (t *Tree) MakeNode(kind nfa.Kind, children ...NodeID) (NodeID, error) {
	for i, c := range children {
		if !t.valid(c) {
			return NoNode, fmt.Errorf("%w: %d", ErrInvalidNode, c)
		}
		if t.nodes[c].parent != NoNode {
			return NoNode, fmt.Errorf("%w: %d", ErrAlreadyOwned, c)
		}
		for _, prev := range children[:i] {
			if prev == c {
				return NoNode, fmt.Errorf("%w: %d listed twice", ErrAlreadyOwned, c)
			}
		}
	}

	id := NodeID(len(t.nodes))
	n := node{
		tok:    nfa.Token{Kind: kind},
		parent: NoNode,
		first:  int32(len(t.kids)),
		count:  int32(len(children)),
	}
	if len(children) > 0 {
		start, stop := t.Span(children[0])
		for _, c := range children[1:] {
			s, e := t.Span(c)
			start, stop = min(start, s), max(stop, e)
		}
		n.tok.Start, n.tok.Len = start, stop-start
	}
	t.kids = append(t.kids, children...)
	for _, c := range children {
		t.nodes[c].parent = id
	}
	t.nodes = append(t.nodes, n)
	return id, nil
}

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

func (t *Tree) at(id NodeID) *node {
	if !t.valid(id) {
		panic(fmt.Sprintf("parsetree: %v: %d", ErrInvalidNode, id))
	}
	return &t.nodes[id]
}

// Token returns the node's token. Composite nodes carry their kind and
// the span of their children.
func (t *Tree) Token(id NodeID) nfa.Token {
	return t.at(id).tok
}

// Kind returns the node's kind.
func (t *Tree) Kind(id NodeID) nfa.Kind {
	return t.at(id).tok.Kind
}

// IsLeaf reports whether the node was made by MakeLeaf.
func (t *Tree) IsLeaf(id NodeID) bool {
	return t.at(id).leaf
}

// Len returns the number of direct children.
func (t *Tree) Len(id NodeID) int {
	return int(t.at(id).count)
}

// Child returns the i-th child, or NoNode when i is out of range.
func (t *Tree) Child(id NodeID, i int) NodeID {
	n := t.at(id)
	if i < 0 || i >= int(n.count) {
		return NoNode
	}
	return t.kids[int(n.first)+i]
}

// Children returns the direct children. The slice aliases the arena and
// must not be modified.
func (t *Tree) Children(id NodeID) []NodeID {
	n := t.at(id)
	return t.kids[n.first : n.first+n.count : n.first+n.count]
}

// Parent returns the adopting node, or NoNode for a root.
func (t *Tree) Parent(id NodeID) NodeID {
	return t.at(id).parent
}

// Size counts the node and all of its descendants.
func (t *Tree) Size(id NodeID) int {
	size := 0
	stack := []NodeID{id}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		size++
		stack = append(stack, t.Children(n)...)
	}
	return size
}

// Span returns the offset range [start, stop) covered by the node.
func (t *Tree) Span(id NodeID) (int, int) {
	tok := t.at(id).tok
	return tok.Start, tok.Stop()
}

// Walk visits the subtree in pre-order. Returning false from fn skips the
// node's children.
func (t *Tree) Walk(id NodeID, fn func(id NodeID, depth int) bool) {
	type frame struct {
		id    NodeID
		depth int
	}
	stack := []frame{{id, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.id, f.depth) {
			continue
		}
		kids := t.Children(f.id)
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{kids[i], f.depth + 1})
		}
	}
}

// Mark returns the current arena size.
func (t *Tree) Mark() Mark {
	return Mark{nodes: len(t.nodes), kids: len(t.kids)}
}

// Rollback discards every node built after m and releases the children
// they adopted.
func (t *Tree) Rollback(m Mark) {
	if m.nodes > len(t.nodes) || m.kids > len(t.kids) {
		return
	}
	for _, c := range t.kids[m.kids:] {
		if int(c) < m.nodes {
			t.nodes[c].parent = NoNode
		}
	}
	t.nodes = t.nodes[:m.nodes]
	t.kids = t.kids[:m.kids]
}

// Namer names token kinds for Format.
type Namer func(nfa.Kind) string

// Format renders the subtree rooted at id, one node per line:
//
//	(Root: 0..9)
//	 |-(entry: 0..9)
//	 | |-(name: 0..4)
func (t *Tree) Format(id NodeID, name Namer) string {
	if name == nil {
		name = nfa.Kind.String
	}
	var sb strings.Builder
	t.Walk(id, func(n NodeID, depth int) bool {
		tok := t.Token(n)
		sb.WriteString(strings.Repeat(" |", depth))
		if depth > 0 {
			sb.WriteByte('-')
		}
		fmt.Fprintf(&sb, "(%s: %d..%d)\n", name(tok.Kind), tok.Start, tok.Stop())
		return true
	})
	return sb.String()
}
