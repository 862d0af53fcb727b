// Package history provides the bounded undo/redo log used by the text buffer.
//
// The log is generic over its entry type. The buffer records one entry per
// primitive mutation; each entry carries everything needed to reverse it, so
// the history never has to inspect buffer state. Key concepts:
//
// # Stacks
//
// History keeps two stacks. The undo stack holds the most recent entry last.
// Undo pops it, hands it to the caller's apply function and moves it to the
// redo stack; Redo is the mirror operation. Recording a new entry clears the
// redo stack.
//
//	h := history.New[*Op](1000, mergeOps)
//
//	h.Push(op)
//	h.Undo(func(op *Op) error { return op.revert(buf) })
//	h.Redo(func(op *Op) error { return op.apply(buf) })
//
// # Bounded depth
//
// When more entries are pushed than the configured maximum, the oldest undo
// entries are discarded. This is never an error.
//
// # Grouping
//
// Multiple entries can be folded into a single undo unit:
//
//	h.BeginGroup("Sort lines")
//	// ... several pushes ...
//	h.EndGroup()
//
// EndGroup combines the collected entries with the merge function supplied to
// New. Groups nest; only the outermost EndGroup records the combined entry.
package history
