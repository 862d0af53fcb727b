package buffer

// Undo reverts the most recent entry and restores the point and region
// captured before it. With nothing to undo it returns an error wrapping
// history.ErrEmptyHistory and changes nothing. Replays are not recorded.
func (b *Buffer) Undo() (Point, error) {
	if b.history.IsGrouping() {
		return b.point, ErrGroupOpen
	}

	op, err := b.history.Undo(b.revert)
	if err != nil {
		return b.point, err
	}

	b.touch(op.FirstLine())
	b.point, b.region = op.PointBefore, op.RegionBefore
	return b.point, nil
}

// Redo re-applies the most recently undone entry and restores the point and
// region captured after it.
func (b *Buffer) Redo() (Point, error) {
	if b.history.IsGrouping() {
		return b.point, ErrGroupOpen
	}

	op, err := b.history.Redo(b.replay)
	if err != nil {
		return b.point, err
	}

	b.touch(op.FirstLine())
	b.point, b.region = op.PointAfter, op.RegionAfter
	return b.point, nil
}

// CanUndo returns true if undo is available.
func (b *Buffer) CanUndo() bool {
	return b.history.CanUndo()
}

// CanRedo returns true if redo is available.
func (b *Buffer) CanRedo() bool {
	return b.history.CanRedo()
}

// UndoCount returns the number of undo entries.
func (b *Buffer) UndoCount() int {
	return b.history.UndoCount()
}

// RedoCount returns the number of redo entries.
func (b *Buffer) RedoCount() int {
	return b.history.RedoCount()
}

// DroppedEntries returns how many undo entries were discarded by the depth
// bound.
func (b *Buffer) DroppedEntries() int {
	return b.history.Dropped()
}

// PeekUndo returns the entry the next Undo would revert.
func (b *Buffer) PeekUndo() (*OpData, bool) {
	return b.history.PeekUndo()
}

// PeekRedo returns the entry the next Redo would re-apply.
func (b *Buffer) PeekRedo() (*OpData, bool) {
	return b.history.PeekRedo()
}

// MaxUndoEntries returns the undo depth bound.
func (b *Buffer) MaxUndoEntries() int {
	return b.history.MaxEntries()
}

// ClearHistory discards all undo and redo entries.
func (b *Buffer) ClearHistory() {
	b.history.Clear()
}

// BeginGroup starts folding primitives into a single undo entry.
// Groups nest; the outermost EndGroup records the entry.
func (b *Buffer) BeginGroup(name string) {
	b.history.BeginGroup(name)
}

// EndGroup closes the innermost group. When the outermost group closes, the
// recorded entry takes the current point and region as its post-edit state,
// so point moves made inside the group are restored by Redo.
func (b *Buffer) EndGroup() {
	before, _ := b.history.PeekUndo()
	b.history.EndGroup()
	if b.history.IsGrouping() {
		return
	}
	if op, ok := b.history.PeekUndo(); ok && op != before {
		op.PointAfter, op.RegionAfter = b.point, b.region
	}
}

// CancelGroup abandons every open group and reverts the edits made inside
// it. It returns the number of primitives rolled back.
func (b *Buffer) CancelGroup() int {
	ops := b.history.CancelGroup()
	if len(ops) == 0 {
		return 0
	}

	for i := len(ops) - 1; i >= 0; i-- {
		// Entries were produced against this buffer and fit by construction.
		_ = b.revert(ops[i])
	}
	first := len(b.lines)
	for _, op := range ops {
		first = min(first, op.FirstLine())
	}
	b.touch(first)
	b.point, b.region = ops[0].PointBefore, ops[0].RegionBefore
	return len(ops)
}

// Transaction runs fn inside a group. If fn returns an error the edits it
// made are rolled back and the error is returned. A failing nested
// transaction rolls back the enclosing group as well.
func (b *Buffer) Transaction(name string, fn func() error) error {
	b.BeginGroup(name)
	if err := fn(); err != nil {
		b.CancelGroup()
		return err
	}
	b.EndGroup()
	return nil
}
