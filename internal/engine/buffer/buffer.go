package buffer

import (
	"strings"

	"github.com/dshills/tedit/internal/engine/history"
)

// DefaultTabWidth is the tab stop used for display columns and indentation.
const DefaultTabWidth = 4

// DeleteDirection selects which character RemoveChar removes.
type DeleteDirection uint8

const (
	DeleteForward  DeleteDirection = iota // Character after the point
	DeleteBackward                        // Character before the point
)

// String returns the direction name.
func (d DeleteDirection) String() string {
	if d == DeleteBackward {
		return "backward"
	}
	return "forward"
}

// ParseDeleteDirection converts "forward" or "backward" to a DeleteDirection.
func ParseDeleteDirection(s string) (DeleteDirection, bool) {
	switch strings.ToLower(s) {
	case "forward", "":
		return DeleteForward, true
	case "backward":
		return DeleteBackward, true
	default:
		return DeleteForward, false
	}
}

// SaveFunc receives the buffer lines when the buffer is saved.
type SaveFunc func(lines []string) error

// Buffer is a line-based document with a point, an optional region and an
// undo/redo history. A Buffer is not safe for concurrent use; the engine's
// Document serializes access to it.
type Buffer struct {
	lines  []*Line
	point  Point
	region Region
	goal   int // sticky display column for vertical motion, -1 when unset

	history *history.History[*OpData]

	mode      string
	modified  bool
	revision  uint64
	dirtyFrom int // lowest line changed since ClearDirty, -1 when clean

	deleteDir  DeleteDirection
	wordChars  string
	tabWidth   int
	maxEntries int
	saveHook   SaveFunc
}

// NewBuffer creates a new buffer holding a single empty line.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{
		lines:      []*Line{{}},
		goal:       -1,
		dirtyFrom:  -1,
		wordChars:  DefaultWordChars,
		tabWidth:   DefaultTabWidth,
		maxEntries: history.DefaultMaxEntries,
	}

	for _, opt := range opts {
		opt(b)
	}

	b.history = history.New(b.maxEntries, mergeOps)
	return b
}

// NewFromString creates a buffer with initial content. The text is split on
// '\n' only; no other normalization is applied, so Text returns s unchanged.
func NewFromString(s string, opts ...Option) *Buffer {
	return NewFromLines(strings.Split(s, "\n"), opts...)
}

// NewFromLines creates a buffer holding lines. An empty slice yields a
// single empty line.
func NewFromLines(lines []string, opts ...Option) *Buffer {
	b := NewBuffer(opts...)
	if len(lines) > 0 {
		b.lines = makeLines(lines)
	}
	return b
}

func makeLines(text []string) []*Line {
	out := make([]*Line, len(text))
	for i, s := range text {
		out[i] = NewLine(s)
	}
	return out
}

// Read Operations

// LineCount returns the number of lines. It is always at least one.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// Line returns the text of line i, or "" when i is out of range.
func (b *Buffer) Line(i int) string {
	if i < 0 || i >= len(b.lines) {
		return ""
	}
	return b.lines[i].String()
}

// LineLen returns the number of characters in line i.
func (b *Buffer) LineLen(i int) int {
	if i < 0 || i >= len(b.lines) {
		return 0
	}
	return b.lines[i].Len()
}

// LineRunes returns the characters of line i without copying.
// The slice is borrowed and must not be modified or kept across mutations.
func (b *Buffer) LineRunes(i int) []rune {
	if i < 0 || i >= len(b.lines) {
		return nil
	}
	return b.lines[i].runes
}

// Lines returns a copy of every line's text.
func (b *Buffer) Lines() []string {
	out := make([]string, len(b.lines))
	for i, l := range b.lines {
		out[i] = l.String()
	}
	return out
}

// Text returns the full buffer content with lines joined by '\n'.
func (b *Buffer) Text() string {
	return strings.Join(b.Lines(), "\n")
}

// CharAt returns the character at p. The end of a line that has a
// successor reads as '\n'.
func (b *Buffer) CharAt(p Point) (rune, bool) {
	if !b.validPoint(p) {
		return 0, false
	}
	line := b.lines[p.Line]
	if p.Column < line.Len() {
		return line.At(p.Column), true
	}
	if p.Line+1 < len(b.lines) {
		return '\n', true
	}
	return 0, false
}

// Point returns the current point.
func (b *Buffer) Point() Point {
	return b.point
}

// Modified reports whether the content changed since the last save.
func (b *Buffer) Modified() bool {
	return b.modified
}

// SetModified overrides the modified flag.
func (b *Buffer) SetModified(modified bool) {
	b.modified = modified
}

// Mode returns the mode tag.
func (b *Buffer) Mode() string {
	return b.mode
}

// SetMode sets the mode tag naming the mode that tokenizes this buffer.
func (b *Buffer) SetMode(name string) {
	b.mode = name
}

// Revision increases with every content change, including undo and redo.
func (b *Buffer) Revision() uint64 {
	return b.revision
}

// DirtyFrom returns the lowest line changed since the last ClearDirty.
func (b *Buffer) DirtyFrom() (int, bool) {
	if b.dirtyFrom < 0 {
		return 0, false
	}
	return b.dirtyFrom, true
}

// ClearDirty resets the dirty-line watermark.
func (b *Buffer) ClearDirty() {
	b.dirtyFrom = -1
}

// TabWidth returns the tab stop width.
func (b *Buffer) TabWidth() int {
	return b.tabWidth
}

// DeleteDirection returns the direction used by RemoveChar.
func (b *Buffer) DeleteDirection() DeleteDirection {
	return b.deleteDir
}

// SetSaveHook installs the function called by Save.
func (b *Buffer) SetSaveHook(fn SaveFunc) {
	b.saveHook = fn
}

// Save passes the lines to the save hook and clears the modified flag on
// success.
func (b *Buffer) Save() error {
	if b.saveHook == nil {
		return ErrNoSaveHook
	}
	if err := b.saveHook(b.Lines()); err != nil {
		return err
	}
	b.modified = false
	return nil
}

// Validation

func (b *Buffer) validPoint(p Point) bool {
	return p.Line >= 0 && p.Line < len(b.lines) &&
		p.Column >= 0 && p.Column <= b.lines[p.Line].Len()
}

func (b *Buffer) checkPoint(op string, p Point) error {
	if !b.validPoint(p) {
		return &RangeError{Op: op, Point: p, Lines: len(b.lines)}
	}
	return nil
}

// clampPoint returns the nearest valid point to p.
func (b *Buffer) clampPoint(p Point) Point {
	p.Line = min(max(p.Line, 0), len(b.lines)-1)
	p.Column = min(max(p.Column, 0), b.lines[p.Line].Len())
	return p
}

// touch records a content change starting at line.
func (b *Buffer) touch(line int) {
	b.modified = true
	b.revision++
	b.markDirty(line)
	b.goal = -1
	if b.region.hasAnchor {
		b.region.anchor = b.clampPoint(b.region.anchor)
	}
	if b.region.hasEnd {
		b.region.end = b.clampPoint(b.region.end)
	}
}

func (b *Buffer) markDirty(line int) {
	line = max(line, 0)
	if b.dirtyFrom < 0 || line < b.dirtyFrom {
		b.dirtyFrom = line
	}
}

func (b *Buffer) assertLines() {
	if len(b.lines) == 0 {
		panic("buffer: line sequence is empty")
	}
}
