package buffer

// DefaultWordChars are the characters, besides letters and digits, that
// word motions treat as part of a word.
const DefaultWordChars = "_"

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// WithMaxUndoEntries bounds the undo history depth.
func WithMaxUndoEntries(n int) Option {
	return func(b *Buffer) {
		if n > 0 {
			b.maxEntries = n
		}
	}
}

// WithDeleteDirection sets which character RemoveChar removes.
func WithDeleteDirection(d DeleteDirection) Option {
	return func(b *Buffer) {
		b.deleteDir = d
	}
}

// WithWordChars sets the extra word characters used by word motions.
func WithWordChars(chars string) Option {
	return func(b *Buffer) {
		b.wordChars = chars
	}
}

// WithTabWidth sets the buffer's tab width.
func WithTabWidth(width int) Option {
	return func(b *Buffer) {
		if width > 0 {
			b.tabWidth = width
		}
	}
}

// WithMode sets the mode tag.
func WithMode(name string) Option {
	return func(b *Buffer) {
		b.mode = name
	}
}

// WithSaveHook installs the function called by Save.
func WithSaveHook(fn SaveFunc) Option {
	return func(b *Buffer) {
		b.saveHook = fn
	}
}
