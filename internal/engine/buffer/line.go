package buffer

import "unicode/utf8"

// Line is a mutable sequence of characters without its line separator.
// A Line is owned by exactly one Buffer.
type Line struct {
	runes []rune
}

// NewLine creates a line holding s.
func NewLine(s string) *Line {
	return &Line{runes: []rune(s)}
}

// Len returns the number of characters in the line.
func (l *Line) Len() int {
	return len(l.runes)
}

// String returns the line content.
func (l *Line) String() string {
	return string(l.runes)
}

// At returns the character at col.
func (l *Line) At(col int) rune {
	return l.runes[col]
}

// Runes returns a copy of the line content.
func (l *Line) Runes() []rune {
	out := make([]rune, len(l.runes))
	copy(out, l.runes)
	return out
}

// Insert inserts rs before col.
func (l *Line) Insert(col int, rs []rune) {
	l.runes = append(l.runes[:col], append(append([]rune(nil), rs...), l.runes[col:]...)...)
}

// Erase removes n characters starting at col and returns them.
func (l *Line) Erase(col, n int) []rune {
	erased := append([]rune(nil), l.runes[col:col+n]...)
	l.runes = append(l.runes[:col], l.runes[col+n:]...)
	return erased
}

// Split truncates the line at col and returns the tail as a new line.
func (l *Line) Split(col int) *Line {
	tail := &Line{runes: append([]rune(nil), l.runes[col:]...)}
	l.runes = l.runes[:col:col]
	return tail
}

// Join appends other's content to the line.
func (l *Line) Join(other *Line) {
	l.runes = append(l.runes, other.runes...)
}

// Clone returns an independent copy of the line.
func (l *Line) Clone() *Line {
	return &Line{runes: l.Runes()}
}

// FindFirstNotOf returns the index of the first character at or after from
// for which in returns false, or Len() if there is none.
func (l *Line) FindFirstNotOf(in func(rune) bool, from int) int {
	for i := max(from, 0); i < len(l.runes); i++ {
		if !in(l.runes[i]) {
			return i
		}
	}
	return len(l.runes)
}

// FindLastNotOf returns the index of the last character before from for
// which in returns false, or -1 if there is none.
func (l *Line) FindLastNotOf(in func(rune) bool, from int) int {
	for i := min(from, len(l.runes)) - 1; i >= 0; i-- {
		if !in(l.runes[i]) {
			return i
		}
	}
	return -1
}

// IndentSize returns the display width of the leading whitespace, expanding
// tabs to tabWidth stops.
func (l *Line) IndentSize(tabWidth int) int {
	if tabWidth <= 0 {
		tabWidth = DefaultTabWidth
	}
	width := 0
	for _, r := range l.runes {
		switch r {
		case ' ':
			width++
		case '\t':
			width += tabWidth - width%tabWidth
		default:
			return width
		}
	}
	return width
}

// IsBlank reports whether the line holds only spaces and tabs.
func (l *Line) IsBlank() bool {
	return l.FindFirstNotOf(isSpaceOrTab, 0) == len(l.runes)
}

func isSpaceOrTab(r rune) bool {
	return r == ' ' || r == '\t'
}

func runeCount(s string) int {
	return utf8.RuneCountInString(s)
}
