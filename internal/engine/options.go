package engine

import (
	"github.com/dshills/tedit/internal/engine/buffer"
	"github.com/dshills/tedit/internal/engine/history"
)

// Default configuration values.
const (
	DefaultTabWidth       = buffer.DefaultTabWidth
	DefaultMaxUndoEntries = history.DefaultMaxEntries
)

// Option configures a Document during creation.
type Option func(*Document)

// WithContent sets the initial content of the document.
func WithContent(content string) Option {
	return func(d *Document) {
		d.initContent = &content
	}
}

// WithName sets the display name.
func WithName(name string) Option {
	return func(d *Document) {
		d.name = name
	}
}

// WithPath sets the backing file path.
func WithPath(path string) Option {
	return func(d *Document) {
		d.path = path
	}
}

// WithMode sets the buffer's mode tag.
func WithMode(mode string) Option {
	return func(d *Document) {
		d.bufOpts = append(d.bufOpts, buffer.WithMode(mode))
	}
}

// WithTabWidth sets the tab width for the document.
func WithTabWidth(width int) Option {
	return func(d *Document) {
		d.bufOpts = append(d.bufOpts, buffer.WithTabWidth(width))
	}
}

// WithMaxUndoEntries sets the maximum number of undo history entries.
func WithMaxUndoEntries(max int) Option {
	return func(d *Document) {
		d.bufOpts = append(d.bufOpts, buffer.WithMaxUndoEntries(max))
	}
}

// WithDeleteDirection sets which character RemoveChar removes.
func WithDeleteDirection(dir buffer.DeleteDirection) Option {
	return func(d *Document) {
		d.bufOpts = append(d.bufOpts, buffer.WithDeleteDirection(dir))
	}
}

// WithWordChars sets the extra word characters for word motions.
func WithWordChars(chars string) Option {
	return func(d *Document) {
		d.bufOpts = append(d.bufOpts, buffer.WithWordChars(chars))
	}
}

// WithReadOnly creates a read-only document.
// Edit returns ErrReadOnly; Reload still follows the backing file.
func WithReadOnly() Option {
	return func(d *Document) {
		d.readOnly = true
	}
}
