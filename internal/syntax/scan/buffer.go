package scan

import (
	"sort"
	"strings"

	"github.com/dshills/tedit/internal/engine/buffer"
)

// LineSource is a read-only view of lines. *buffer.Buffer and
// *buffer.Snapshot implement it.
type LineSource interface {
	LineCount() int
	LineRunes(i int) []rune
}

// BufferScanner scans the lines of a LineSource, reading one synthetic '\n'
// between consecutive lines and none after the last line.
type BufferScanner struct {
	src    LineSource
	starts []int // offset of the first character of each line

	line, col int
	pos       int
	low, high int
	limit     int // offset where input ends
}

// NewBuffer creates a scanner over the whole source.
func NewBuffer(src LineSource) *BufferScanner {
	s := newBufferScanner(src)
	last := len(s.starts) - 1
	s.limit = s.starts[last] + len(src.LineRunes(last))
	return s
}

// NewBufferRange creates a scanner over [from, to). Both points are clamped
// to the source. Offsets stay absolute from the start of the source.
func NewBufferRange(src LineSource, from, to buffer.Point) *BufferScanner {
	s := newBufferScanner(src)
	from, to = s.clamp(from), s.clamp(to)
	if to.Before(from) {
		to = from
	}
	s.line, s.col = from.Line, from.Column
	s.pos = s.OffsetOf(from)
	s.low, s.high = s.pos, s.pos
	s.limit = s.OffsetOf(to)
	return s
}

func newBufferScanner(src LineSource) *BufferScanner {
	n := max(src.LineCount(), 1)
	starts := make([]int, n)
	for i := 1; i < n; i++ {
		starts[i] = starts[i-1] + len(src.LineRunes(i-1)) + 1
	}
	return &BufferScanner{src: src, starts: starts}
}

func (s *BufferScanner) clamp(p buffer.Point) buffer.Point {
	p.Line = min(max(p.Line, 0), len(s.starts)-1)
	p.Column = min(max(p.Column, 0), len(s.src.LineRunes(p.Line)))
	return p
}

// Peek returns the next character without consuming it.
func (s *BufferScanner) Peek() (rune, bool) {
	if s.pos >= s.limit {
		return 0, false
	}
	runes := s.src.LineRunes(s.line)
	if s.col < len(runes) {
		return runes[s.col], true
	}
	return '\n', true
}

// Advance consumes and returns the next character.
func (s *BufferScanner) Advance() (rune, bool) {
	r, ok := s.Peek()
	if !ok {
		return 0, false
	}
	if s.col < len(s.src.LineRunes(s.line)) {
		s.col++
	} else {
		s.line++
		s.col = 0
	}
	s.pos++
	s.high = max(s.high, s.pos)
	return r, true
}

// Position returns the current absolute offset.
func (s *BufferScanner) Position() int {
	return s.pos
}

// Rewind moves to an observed offset. Offsets on the current line are
// resolved in O(1), others with a binary search over line starts.
func (s *BufferScanner) Rewind(offset int) error {
	if offset < s.low || offset > s.high {
		return &BoundaryError{Offset: offset, Low: s.low, High: s.high}
	}
	p := s.PointAt(offset)
	s.line, s.col, s.pos = p.Line, p.Column, offset
	return nil
}

// AtEnd reports whether the range is exhausted.
func (s *BufferScanner) AtEnd() bool {
	return s.pos >= s.limit
}

// PointAt converts an absolute offset to a buffer point.
func (s *BufferScanner) PointAt(offset int) buffer.Point {
	line := s.line
	if offset < s.starts[line] || (line+1 < len(s.starts) && offset >= s.starts[line+1]) {
		line = sort.Search(len(s.starts), func(i int) bool { return s.starts[i] > offset }) - 1
		line = max(line, 0)
	}
	return s.clamp(buffer.Point{Line: line, Column: offset - s.starts[line]})
}

// OffsetOf converts a buffer point to an absolute offset.
func (s *BufferScanner) OffsetOf(p buffer.Point) int {
	p = s.clamp(p)
	return s.starts[p.Line] + p.Column
}

// Text returns the characters in [start, end), including line separators.
func (s *BufferScanner) Text(start, end int) string {
	if end <= start {
		return ""
	}
	from, to := s.PointAt(start), s.PointAt(end)
	var sb strings.Builder
	for line := from.Line; line <= to.Line; line++ {
		runes := s.src.LineRunes(line)
		lo, hi := 0, len(runes)
		if line == from.Line {
			lo = from.Column
		}
		if line == to.Line {
			hi = to.Column
		}
		sb.WriteString(string(runes[lo:hi]))
		if line < to.Line {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
