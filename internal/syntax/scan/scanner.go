package scan

import (
	"errors"
	"fmt"
)

// ErrScanBoundary is returned when rewinding to an offset that was never
// observed.
var ErrScanBoundary = errors.New("rewind beyond observed input")

// BoundaryError records a rejected rewind.
type BoundaryError struct {
	Offset int // requested offset
	Low    int // lowest valid offset
	High   int // highest offset observed so far
}

func (e *BoundaryError) Error() string {
	return fmt.Sprintf("rewind to %d outside [%d, %d]: %v", e.Offset, e.Low, e.High, ErrScanBoundary)
}

func (e *BoundaryError) Unwrap() error {
	return ErrScanBoundary
}

// Scanner is a cursor over a character stream.
type Scanner interface {
	// Peek returns the next character without consuming it.
	Peek() (rune, bool)

	// Advance consumes and returns the next character.
	Advance() (rune, bool)

	// Position returns the current offset.
	Position() int

	// Rewind moves the cursor back (or forward) to an offset that has
	// already been observed.
	Rewind(offset int) error

	// AtEnd reports whether the input is exhausted.
	AtEnd() bool

	// Text returns the characters in [start, end).
	Text(start, end int) string
}

// StringScanner scans an immutable string.
type StringScanner struct {
	runes []rune
	pos   int
	high  int
}

// NewString creates a scanner over s.
func NewString(s string) *StringScanner {
	return &StringScanner{runes: []rune(s)}
}

// Peek returns the next character without consuming it.
func (s *StringScanner) Peek() (rune, bool) {
	if s.pos >= len(s.runes) {
		return 0, false
	}
	return s.runes[s.pos], true
}

// Advance consumes and returns the next character.
func (s *StringScanner) Advance() (rune, bool) {
	r, ok := s.Peek()
	if !ok {
		return 0, false
	}
	s.pos++
	s.high = max(s.high, s.pos)
	return r, true
}

// Position returns the current offset.
func (s *StringScanner) Position() int {
	return s.pos
}

// Rewind moves to an observed offset in O(1).
func (s *StringScanner) Rewind(offset int) error {
	if offset < 0 || offset > s.high {
		return &BoundaryError{Offset: offset, High: s.high}
	}
	s.pos = offset
	return nil
}

// AtEnd reports whether the input is exhausted.
func (s *StringScanner) AtEnd() bool {
	return s.pos >= len(s.runes)
}

// Len returns the number of characters in the input.
func (s *StringScanner) Len() int {
	return len(s.runes)
}

// Text returns the characters in [start, end), clamped to the input.
func (s *StringScanner) Text(start, end int) string {
	start = min(max(start, 0), len(s.runes))
	end = min(max(end, start), len(s.runes))
	return string(s.runes[start:end])
}
