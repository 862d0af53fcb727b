package buffer

import (
	"fmt"
	"strings"
)

// OpKind identifies the primitive mutation recorded by an OpData.
type OpKind uint8

const (
	OpInsertChar OpKind = iota
	OpRemoveChar
	OpInsertLines
	OpRemoveLines
	OpSplitLine
	OpJoinLine
	OpRemoveRegion
	OpCompound
)

var opKindNames = [...]string{
	OpInsertChar:   "insert-char",
	OpRemoveChar:   "remove-char",
	OpInsertLines:  "insert-lines",
	OpRemoveLines:  "remove-lines",
	OpSplitLine:    "split-line",
	OpJoinLine:     "join-line",
	OpRemoveRegion: "remove-region",
	OpCompound:     "compound",
}

// String returns the kind name.
func (k OpKind) String() string {
	if int(k) < len(opKindNames) {
		return opKindNames[k]
	}
	return fmt.Sprintf("OpKind(%d)", k)
}

// OpData records one primitive mutation with enough data to invert it
// without consulting the buffer.
type OpData struct {
	Kind OpKind

	// At is where the mutation happened. For OpRemoveLines only At.Line
	// is meaningful.
	At Point

	// Text is the inserted or removed content as lines joined by newlines.
	// For OpRemoveLines it holds the removed lines.
	Text []string

	// Emptied is set when OpRemoveLines removed every line and left a
	// single empty line behind.
	Emptied bool

	// Name labels a compound entry.
	Name string

	// Children holds the entries of a compound, oldest first.
	Children []*OpData

	PointBefore  Point
	PointAfter   Point
	RegionBefore Region
	RegionAfter  Region
}

// String returns a short description of the operation.
func (op *OpData) String() string {
	switch op.Kind {
	case OpCompound:
		return fmt.Sprintf("%s %q (%d ops)", op.Kind, op.Name, len(op.Children))
	case OpRemoveLines:
		return fmt.Sprintf("%s %d+%d", op.Kind, op.At.Line, len(op.Text))
	case OpSplitLine, OpJoinLine:
		return fmt.Sprintf("%s %s", op.Kind, op.At)
	default:
		return fmt.Sprintf("%s %s %q", op.Kind, op.At, strings.Join(op.Text, "\n"))
	}
}

// Count returns the number of primitive operations in op.
func (op *OpData) Count() int {
	if op.Kind != OpCompound {
		return 1
	}
	n := 0
	for _, c := range op.Children {
		n += c.Count()
	}
	return n
}

// FirstLine returns the lowest line index touched by op.
func (op *OpData) FirstLine() int {
	if op.Kind != OpCompound {
		return op.At.Line
	}
	first := -1
	for _, c := range op.Children {
		if l := c.FirstLine(); first < 0 || l < first {
			first = l
		}
	}
	return max(first, 0)
}

// mergeOps folds grouped entries into one compound entry.
func mergeOps(name string, ops []*OpData) *OpData {
	first, last := ops[0], ops[len(ops)-1]
	return &OpData{
		Kind:         OpCompound,
		At:           first.At,
		Name:         name,
		Children:     ops,
		PointBefore:  first.PointBefore,
		RegionBefore: first.RegionBefore,
		PointAfter:   last.PointAfter,
		RegionAfter:  last.RegionAfter,
	}
}

// revert applies the inverse of op to the buffer in its post-operation
// state.
func (b *Buffer) revert(op *OpData) error {
	if op.Kind == OpCompound {
		for i := len(op.Children) - 1; i >= 0; i-- {
			if err := b.revert(op.Children[i]); err != nil {
				return err
			}
		}
		return nil
	}
	if err := b.checkReplay("undo", op); err != nil {
		return err
	}

	switch op.Kind {
	case OpInsertChar, OpInsertLines:
		b.cutSpan(op.At, spanEnd(op.At, op.Text))
	case OpRemoveChar, OpRemoveRegion:
		b.spliceText(op.At, op.Text)
	case OpSplitLine:
		b.joinAt(op.At.Line)
	case OpJoinLine:
		b.splitAt(op.At)
	case OpRemoveLines:
		b.restoreLines(op.At.Line, op.Text, op.Emptied)
	}
	b.markDirty(op.At.Line)
	return nil
}

// replay re-applies op to the buffer in its pre-operation state.
func (b *Buffer) replay(op *OpData) error {
	if op.Kind == OpCompound {
		for _, c := range op.Children {
			if err := b.replay(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := b.checkReplay("redo", op); err != nil {
		return err
	}

	switch op.Kind {
	case OpInsertChar, OpInsertLines:
		b.spliceText(op.At, op.Text)
	case OpRemoveChar, OpRemoveRegion:
		b.cutSpan(op.At, spanEnd(op.At, op.Text))
	case OpSplitLine:
		b.splitAt(op.At)
	case OpJoinLine:
		b.joinAt(op.At.Line)
	case OpRemoveLines:
		b.cutLines(op.At.Line, len(op.Text))
	}
	b.markDirty(op.At.Line)
	return nil
}

// checkReplay guards against entries that no longer fit the buffer.
func (b *Buffer) checkReplay(verb string, op *OpData) error {
	if op.Kind == OpRemoveLines {
		if op.At.Line < 0 || op.At.Line > len(b.lines) {
			return &RangeError{Op: verb + " " + op.Kind.String(), Point: op.At, Lines: len(b.lines)}
		}
		return nil
	}
	if !b.validPoint(op.At) {
		return &RangeError{Op: verb + " " + op.Kind.String(), Point: op.At, Lines: len(b.lines)}
	}
	return nil
}
