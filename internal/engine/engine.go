package engine

import (
	"io"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/tedit/internal/engine/buffer"
)

// Re-export commonly used types for convenience.
type (
	// Point represents a line/column position.
	Point = buffer.Point

	// Region is the buffer's optional selection.
	Region = buffer.Region
)

// Change describes a content change committed by Edit or Reload.
type Change struct {
	ID        uuid.UUID
	Revision  uint64
	FirstLine int
}

// Listener receives change notifications. It is called after the document
// lock is released and may read the document.
type Listener func(Change)

// Document owns one Buffer and gives it an identity, exclusive access and
// change notification.
//
// All operations are thread-safe. Edits, reloads and reads are serialized,
// so a reload is never interleaved with a user edit.
type Document struct {
	mu  sync.Mutex
	buf *buffer.Buffer

	id       uuid.UUID
	name     string
	path     string
	readOnly bool

	listenersMu  sync.Mutex
	listeners    map[int]Listener
	nextListener int

	// Initialization
	initContent *string
	bufOpts     []buffer.Option
}

// New creates a new Document with the given options.
func New(opts ...Option) *Document {
	d := &Document{
		id:        uuid.New(),
		listeners: make(map[int]Listener),
	}

	// Apply options to get configuration
	for _, opt := range opts {
		opt(d)
	}

	if d.initContent != nil {
		d.buf = buffer.NewFromString(*d.initContent, d.bufOpts...)
	} else {
		d.buf = buffer.NewBuffer(d.bufOpts...)
	}
	d.initContent = nil

	if d.name == "" && d.path != "" {
		d.name = filepath.Base(d.path)
	}
	return d
}

// NewFromReader creates a Document from an io.Reader.
func NewFromReader(r io.Reader, opts ...Option) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return New(append(opts, WithContent(string(data)))...), nil
}

// ID returns the document's unique identity.
func (d *Document) ID() uuid.UUID {
	return d.id
}

// Name returns the display name.
func (d *Document) Name() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.name
}

// Path returns the backing file path, or "".
func (d *Document) Path() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.path
}

// IsReadOnly returns true if edits are rejected.
func (d *Document) IsReadOnly() bool {
	return d.readOnly
}

// ============================================================================
// Access
// ============================================================================

// View runs fn with shared access to the buffer. fn must not mutate it.
func (d *Document) View(fn func(b *buffer.Buffer)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.buf)
}

// Edit runs fn with exclusive access to the buffer. Subscribers are notified
// after the lock is released when the content changed, even if fn returned
// an error after some primitives succeeded.
func (d *Document) Edit(fn func(b *buffer.Buffer) error) error {
	if d.readOnly {
		return ErrReadOnly
	}
	return d.mutate(fn)
}

// Reload replaces the content with lines as one undoable step and clears
// the modified flag. It is used when the backing file changed.
func (d *Document) Reload(lines []string) error {
	return d.mutate(func(b *buffer.Buffer) error {
		if err := b.ReplaceAll(lines); err != nil {
			return err
		}
		b.SetModified(false)
		return nil
	})
}

func (d *Document) mutate(fn func(b *buffer.Buffer) error) error {
	change, changed, err := d.apply(fn)
	if changed {
		d.notify(change)
	}
	return err
}

// apply runs fn under the lock. The lock is released even if fn panics.
func (d *Document) apply(fn func(b *buffer.Buffer) error) (change Change, changed bool, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	rev := d.buf.Revision()
	d.buf.ClearDirty()
	err = fn(d.buf)
	change, changed = d.changeLocked(rev)
	return change, changed, err
}

func (d *Document) changeLocked(before uint64) (Change, bool) {
	rev := d.buf.Revision()
	if rev == before {
		return Change{}, false
	}
	first, _ := d.buf.DirtyFrom()
	return Change{ID: d.id, Revision: rev, FirstLine: first}, true
}

// ============================================================================
// Convenience wrappers
// ============================================================================

// Undo reverts the last edit.
func (d *Document) Undo() (Point, error) {
	var p Point
	err := d.Edit(func(b *buffer.Buffer) error {
		var err error
		p, err = b.Undo()
		return err
	})
	return p, err
}

// Redo re-applies the last undone edit.
func (d *Document) Redo() (Point, error) {
	var p Point
	err := d.Edit(func(b *buffer.Buffer) error {
		var err error
		p, err = b.Redo()
		return err
	})
	return p, err
}

// Text returns the full document content.
func (d *Document) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Text()
}

// Lines returns a copy of the document lines.
func (d *Document) Lines() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Lines()
}

// Revision returns the buffer revision.
func (d *Document) Revision() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Revision()
}

// Modified reports whether the content changed since the last save.
func (d *Document) Modified() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Modified()
}

// Mode returns the buffer's mode tag.
func (d *Document) Mode() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Mode()
}

// SetMode changes the buffer's mode tag.
func (d *Document) SetMode(mode string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buf.SetMode(mode)
}

// Snapshot returns a read-only copy of the current content.
func (d *Document) Snapshot() *buffer.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Snapshot()
}

// ============================================================================
// Subscriptions
// ============================================================================

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (d *Document) Subscribe(fn Listener) (unsubscribe func()) {
	d.listenersMu.Lock()
	id := d.nextListener
	d.nextListener++
	d.listeners[id] = fn
	d.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.listenersMu.Lock()
			delete(d.listeners, id)
			d.listenersMu.Unlock()
		})
	}
}

func (d *Document) notify(c Change) {
	d.listenersMu.Lock()
	listeners := make([]Listener, 0, len(d.listeners))
	for _, fn := range d.listeners {
		listeners = append(listeners, fn)
	}
	d.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(c)
	}
}
