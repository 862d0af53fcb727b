package buffer

import "strings"

// Snapshot provides a read-only copy of a buffer at a specific revision.
// It is safe for concurrent access and does not change when the buffer is
// modified, so scanners can run over it outside the document lock.
type Snapshot struct {
	lines    [][]rune
	revision uint64
	mode     string
	tabWidth int
}

// Snapshot copies the current content.
func (b *Buffer) Snapshot() *Snapshot {
	lines := make([][]rune, len(b.lines))
	for i, l := range b.lines {
		lines[i] = l.Runes()
	}
	return &Snapshot{
		lines:    lines,
		revision: b.revision,
		mode:     b.mode,
		tabWidth: b.tabWidth,
	}
}

// LineCount returns the number of lines.
func (s *Snapshot) LineCount() int {
	return len(s.lines)
}

// LineRunes returns the characters of line i. The slice must not be
// modified.
func (s *Snapshot) LineRunes(i int) []rune {
	if i < 0 || i >= len(s.lines) {
		return nil
	}
	return s.lines[i]
}

// Line returns the text of line i.
func (s *Snapshot) Line(i int) string {
	return string(s.LineRunes(i))
}

// Text returns the full content with lines joined by '\n'.
func (s *Snapshot) Text() string {
	parts := make([]string, len(s.lines))
	for i, l := range s.lines {
		parts[i] = string(l)
	}
	return strings.Join(parts, "\n")
}

// Revision returns the buffer revision the snapshot was taken at.
func (s *Snapshot) Revision() uint64 {
	return s.revision
}

// Mode returns the buffer's mode tag at snapshot time.
func (s *Snapshot) Mode() string {
	return s.mode
}

// TabWidth returns the buffer's tab width.
func (s *Snapshot) TabWidth() int {
	return s.tabWidth
}
