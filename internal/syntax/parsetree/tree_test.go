package parsetree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/tedit/internal/syntax/nfa"
)

func leaf(t *Tree, kind nfa.Kind, start, n int) NodeID {
	return t.MakeLeaf(nfa.Token{Kind: kind, Start: start, Len: n})
}

func TestMakeNode_AdoptsChildren(t *testing.T) {
	tr := New()
	a := leaf(tr, 0, 0, 2)
	b := leaf(tr, 1, 3, 4)

	n, err := tr.MakeNode(5, a, b)
	require.NoError(t, err)

	assert.Equal(t, 2, tr.Len(n))
	assert.Equal(t, []NodeID{a, b}, tr.Children(n))
	assert.Equal(t, b, tr.Child(n, 1))
	assert.Equal(t, NoNode, tr.Child(n, 2))
	assert.Equal(t, n, tr.Parent(a))
	assert.Equal(t, NoNode, tr.Parent(n))
	assert.Equal(t, nfa.Kind(5), tr.Kind(n))
	assert.False(t, tr.IsLeaf(n))
	assert.True(t, tr.IsLeaf(a))

	start, stop := tr.Span(n)
	assert.Equal(t, 0, start)
	assert.Equal(t, 7, stop)
}

func TestMakeNode_Errors(t *testing.T) {
	tr := New()
	a := leaf(tr, 0, 0, 1)
	_, err := tr.MakeNode(1, a)
	require.NoError(t, err)

	before := tr.NumNodes()
	_, err = tr.MakeNode(2, a)
	assert.ErrorIs(t, err, ErrAlreadyOwned)

	b := leaf(tr, 0, 1, 1)
	_, err = tr.MakeNode(2, b, b)
	assert.ErrorIs(t, err, ErrAlreadyOwned)
	assert.Equal(t, NoNode, tr.Parent(b))

	_, err = tr.MakeNode(2, NodeID(99))
	assert.ErrorIs(t, err, ErrInvalidNode)
	assert.Equal(t, before+1, tr.NumNodes())
}

func TestSize(t *testing.T) {
	tr := New()
	x := leaf(tr, 3, 0, 1)
	y := leaf(tr, 4, 1, 1)
	z := leaf(tr, 5, 2, 1)
	inner, _ := tr.MakeNode(2, x, y, z)
	other := leaf(tr, 1, 3, 1)
	root, _ := tr.MakeNode(nfa.Root, inner, other)

	assert.Equal(t, 6, tr.Size(root))
	assert.Equal(t, 4, tr.Size(inner))
	assert.Equal(t, 1, tr.Size(other))
}

func TestWalk_PreOrderAndPrune(t *testing.T) {
	tr := New()
	a := leaf(tr, 0, 0, 1)
	b := leaf(tr, 1, 1, 1)
	inner, _ := tr.MakeNode(7, a, b)
	c := leaf(tr, 2, 2, 1)
	root, _ := tr.MakeNode(nfa.Root, inner, c)

	var order []NodeID
	var depths []int
	tr.Walk(root, func(id NodeID, depth int) bool {
		order = append(order, id)
		depths = append(depths, depth)
		return true
	})
	assert.Equal(t, []NodeID{root, inner, a, b, c}, order)
	assert.Equal(t, []int{0, 1, 2, 2, 1}, depths)

	order = order[:0]
	tr.Walk(root, func(id NodeID, _ int) bool {
		order = append(order, id)
		return id != inner
	})
	assert.Equal(t, []NodeID{root, inner, c}, order)
}

func TestMarkRollback(t *testing.T) {
	tr := New()
	a := leaf(tr, 0, 0, 1)
	b := leaf(tr, 1, 1, 1)
	m := tr.Mark()

	_, err := tr.MakeNode(9, a, b)
	require.NoError(t, err)
	leaf(tr, 2, 2, 1)
	assert.Equal(t, 4, tr.NumNodes())

	tr.Rollback(m)
	assert.Equal(t, 2, tr.NumNodes())
	assert.Equal(t, NoNode, tr.Parent(a))
	assert.Equal(t, NoNode, tr.Parent(b))

	n, err := tr.MakeNode(9, b, a)
	require.NoError(t, err)
	assert.Equal(t, []NodeID{b, a}, tr.Children(n))
}

func TestReset(t *testing.T) {
	tr := New()
	leaf(tr, 0, 0, 1)
	tr.Reset()
	assert.Equal(t, 0, tr.NumNodes())
	assert.Panics(t, func() { tr.Token(0) })
}

func TestFormat(t *testing.T) {
	names := map[nfa.Kind]string{0: "zero", 1: "one", 2: "two", 3: "three"}
	namer := func(k nfa.Kind) string {
		if n, ok := names[k]; ok {
			return n
		}
		return k.String()
	}

	tr := New()
	root, _ := tr.MakeNode(nfa.Root)
	assert.Equal(t, "(Root: 0..0)\n", tr.Format(root, namer))

	tr.Reset()
	deep := leaf(tr, 3, 0, 1)
	deeper := leaf(tr, 3, 1, 1)
	two, _ := tr.MakeNode(2, deep, deeper)
	zero, _ := tr.MakeNode(0, two)
	one := leaf(tr, 1, 2, 3)
	root, _ = tr.MakeNode(nfa.Root, zero, one)

	want := "(Root: 0..5)\n" +
		" |-(zero: 0..2)\n" +
		" | |-(two: 0..2)\n" +
		" | | |-(three: 0..1)\n" +
		" | | |-(three: 1..2)\n" +
		" |-(one: 2..5)\n"
	assert.Equal(t, want, tr.Format(root, namer))

	assert.Equal(t, "(2: 0..2)\n |-(3: 0..1)\n |-(3: 1..2)\n", tr.Format(two, nil))
}
