package history

import (
	"errors"
	"fmt"
	"sync"
)

// DefaultMaxEntries is the undo depth used when a non-positive maximum is given.
const DefaultMaxEntries = 1000

// Common errors for history operations.
var (
	// ErrEmptyHistory is the status reported when there is nothing to replay.
	// It is not fatal; callers surface it as a message.
	ErrEmptyHistory = errors.New("empty history")

	ErrNothingToUndo = fmt.Errorf("nothing to undo: %w", ErrEmptyHistory)
	ErrNothingToRedo = fmt.Errorf("nothing to redo: %w", ErrEmptyHistory)
)

// MergeFunc folds the entries recorded inside a group into one entry.
type MergeFunc[E any] func(name string, entries []E) E

// ApplyFunc replays an entry against its owner.
type ApplyFunc[E any] func(entry E) error

// History manages undo/redo state for a buffer.
type History[E any] struct {
	mu sync.Mutex

	undoStack []E
	redoStack []E

	// Grouping state
	depth      int
	groupName  string
	groupItems []E
	merge      MergeFunc[E]

	// Configuration
	maxEntries int
	dropped    int
}

// New creates a new history with the given maximum undo depth.
// merge may be nil, in which case grouped entries are recorded one by one.
func New[E any](maxEntries int, merge MergeFunc[E]) *History[E] {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History[E]{
		maxEntries: maxEntries,
		merge:      merge,
	}
}

// Push records a new entry on the undo stack.
// Clears the redo stack, also while a group is open.
func (h *History[E]) Push(entry E) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.depth > 0 {
		h.groupItems = append(h.groupItems, entry)
		h.redoStack = nil
		return
	}

	h.pushLocked(entry)
}

// pushLocked adds an entry without acquiring the lock.
func (h *History[E]) pushLocked(entry E) {
	h.undoStack = append(h.undoStack, entry)

	h.redoStack = nil
	h.truncateLocked()
}

// truncateLocked drops the oldest undo entries beyond maxEntries.
func (h *History[E]) truncateLocked() {
	if len(h.undoStack) <= h.maxEntries {
		return
	}
	excess := len(h.undoStack) - h.maxEntries
	clear(h.undoStack[:excess])
	h.undoStack = h.undoStack[excess:]
	h.dropped += excess
}

// Undo pops the most recent entry and passes it to apply.
// On success the entry moves to the redo stack. If apply fails the entry is
// put back and the error is returned.
// The lock is released while apply runs.
func (h *History[E]) Undo(apply ApplyFunc[E]) (E, error) {
	var zero E

	h.mu.Lock()
	if len(h.undoStack) == 0 {
		h.mu.Unlock()
		return zero, ErrNothingToUndo
	}

	item := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.mu.Unlock()

	if err := apply(item); err != nil {
		h.mu.Lock()
		h.undoStack = append(h.undoStack, item)
		h.mu.Unlock()
		return zero, err
	}

	h.mu.Lock()
	h.redoStack = append(h.redoStack, item)
	h.mu.Unlock()
	return item, nil
}

// Redo pops the most recently undone entry and passes it to apply.
// The lock is released while apply runs.
func (h *History[E]) Redo(apply ApplyFunc[E]) (E, error) {
	var zero E

	h.mu.Lock()
	if len(h.redoStack) == 0 {
		h.mu.Unlock()
		return zero, ErrNothingToRedo
	}

	item := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.mu.Unlock()

	if err := apply(item); err != nil {
		h.mu.Lock()
		h.redoStack = append(h.redoStack, item)
		h.mu.Unlock()
		return zero, err
	}

	h.mu.Lock()
	h.undoStack = append(h.undoStack, item)
	h.truncateLocked()
	h.mu.Unlock()
	return item, nil
}

// CanUndo returns true if undo is available.
func (h *History[E]) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History[E]) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo entries available.
func (h *History[E]) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo entries available.
func (h *History[E]) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// Dropped returns how many entries were discarded by the depth bound.
func (h *History[E]) Dropped() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// BeginGroup starts an entry group.
// Entries pushed while grouping are combined into a single undo unit.
// Nested calls only deepen the current group.
func (h *History[E]) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.depth == 0 {
		h.groupName = name
		h.groupItems = nil
	}
	h.depth++
}

// EndGroup closes the innermost group. When the outermost group closes, the
// collected entries are merged and recorded. An empty group records nothing.
func (h *History[E]) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.depth == 0 {
		return
	}
	h.depth--
	if h.depth > 0 {
		return
	}

	items := h.groupItems
	h.groupItems = nil
	if len(items) == 0 {
		return
	}

	if h.merge == nil {
		for _, item := range items {
			h.pushLocked(item)
		}
		return
	}
	h.pushLocked(h.merge(h.groupName, items))
}

// CancelGroup abandons all open groups and returns the entries collected so
// far, oldest first. The entries have already affected their owner; the caller
// decides whether to revert them.
func (h *History[E]) CancelGroup() []E {
	h.mu.Lock()
	defer h.mu.Unlock()

	items := h.groupItems
	h.depth = 0
	h.groupItems = nil
	return items
}

// IsGrouping returns true if a group is open.
func (h *History[E]) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.depth > 0
}

// Clear removes all undo/redo history.
func (h *History[E]) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
	h.depth = 0
	h.groupItems = nil
}

// PeekUndo returns the next undo entry without removing it.
func (h *History[E]) PeekUndo() (E, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var zero E
	if len(h.undoStack) == 0 {
		return zero, false
	}
	return h.undoStack[len(h.undoStack)-1], true
}

// PeekRedo returns the next redo entry without removing it.
func (h *History[E]) PeekRedo() (E, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var zero E
	if len(h.redoStack) == 0 {
		return zero, false
	}
	return h.redoStack[len(h.redoStack)-1], true
}

// MaxEntries returns the maximum number of undo entries.
func (h *History[E]) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
