package buffer

import "fmt"

// Point represents a line and column position.
// Both Line and Column are 0-indexed.
// Column is measured in characters (runes) from the start of the line;
// Column == line length means end of line.
type Point struct {
	Line   int
	Column int
}

// String returns a human-readable representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Point) Compare(other Point) int {
	if p.Line < other.Line {
		return -1
	}
	if p.Line > other.Line {
		return 1
	}
	if p.Column < other.Column {
		return -1
	}
	if p.Column > other.Column {
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Point) Before(other Point) bool {
	return p.Compare(other) < 0
}

// After returns true if p comes after other.
func (p Point) After(other Point) bool {
	return p.Compare(other) > 0
}

// IsZero returns true if this is the zero point (0:0).
func (p Point) IsZero() bool {
	return p.Line == 0 && p.Column == 0
}

// orderPoints returns a and b in document order.
func orderPoints(a, b Point) (Point, Point) {
	if b.Before(a) {
		return b, a
	}
	return a, b
}

// Span is a half-open range of points: [Start, End).
type Span struct {
	Start Point
	End   Point
}

// String returns a human-readable representation of the span.
func (s Span) String() string {
	return fmt.Sprintf("[%s:%s)", s.Start, s.End)
}

// IsEmpty returns true if start equals end.
func (s Span) IsEmpty() bool {
	return s.Start.Compare(s.End) == 0
}

// Contains returns true if the given point is within the span.
func (s Span) Contains(p Point) bool {
	return p.Compare(s.Start) >= 0 && p.Compare(s.End) < 0
}

// IsSingleLine returns true if the span lies on one line.
func (s Span) IsSingleLine() bool {
	return s.Start.Line == s.End.Line
}

// spanEnd returns the point just after text inserted at p, where text is
// a sequence of lines joined by newlines.
func spanEnd(p Point, text []string) Point {
	if len(text) <= 1 {
		n := 0
		if len(text) == 1 {
			n = runeCount(text[0])
		}
		return Point{Line: p.Line, Column: p.Column + n}
	}
	return Point{Line: p.Line + len(text) - 1, Column: runeCount(text[len(text)-1])}
}
