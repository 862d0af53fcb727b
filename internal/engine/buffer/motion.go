package buffer

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Point motions move the current point and never touch the history.

func (b *Buffer) setPoint(p Point) Point {
	b.point = p
	b.goal = -1
	return p
}

// MoveTo sets the point.
func (b *Buffer) MoveTo(p Point) (Point, error) {
	if err := b.checkPoint("move", p); err != nil {
		return b.point, err
	}
	return b.setPoint(p), nil
}

// GotoLine moves to the start of line.
func (b *Buffer) GotoLine(line int) (Point, error) {
	return b.MoveTo(Point{Line: line})
}

// StartOfLine moves to column zero.
func (b *Buffer) StartOfLine() Point {
	return b.setPoint(Point{Line: b.point.Line})
}

// EndOfLine moves past the last character of the line.
func (b *Buffer) EndOfLine() Point {
	return b.setPoint(Point{Line: b.point.Line, Column: b.lines[b.point.Line].Len()})
}

// Begin moves to the start of the buffer.
func (b *Buffer) Begin() Point {
	return b.setPoint(Point{})
}

// End moves to the end of the buffer.
func (b *Buffer) End() Point {
	last := len(b.lines) - 1
	return b.setPoint(Point{Line: last, Column: b.lines[last].Len()})
}

// Right moves forward one grapheme cluster, wrapping to the next line.
func (b *Buffer) Right() Point {
	p := b.point
	line := b.lines[p.Line]
	if p.Column >= line.Len() {
		if p.Line+1 < len(b.lines) {
			return b.setPoint(Point{Line: p.Line + 1})
		}
		return b.setPoint(p)
	}
	for _, stop := range graphemeStops(line.runes) {
		if stop > p.Column {
			return b.setPoint(Point{Line: p.Line, Column: stop})
		}
	}
	return b.setPoint(Point{Line: p.Line, Column: line.Len()})
}

// Left moves back one grapheme cluster, wrapping to the previous line.
func (b *Buffer) Left() Point {
	p := b.point
	if p.Column == 0 {
		if p.Line > 0 {
			return b.setPoint(Point{Line: p.Line - 1, Column: b.lines[p.Line-1].Len()})
		}
		return b.setPoint(p)
	}
	prev := 0
	for _, stop := range graphemeStops(b.lines[p.Line].runes) {
		if stop >= p.Column {
			break
		}
		prev = stop
	}
	return b.setPoint(Point{Line: p.Line, Column: prev})
}

// Up moves to the previous line, keeping the display column.
func (b *Buffer) Up() Point {
	return b.vertical(-1)
}

// Down moves to the next line, keeping the display column.
func (b *Buffer) Down() Point {
	return b.vertical(1)
}

func (b *Buffer) vertical(delta int) Point {
	goal := b.goal
	if goal < 0 {
		goal = b.DisplayColumn(b.point)
	}
	target := b.point.Line + delta
	if target < 0 || target >= len(b.lines) {
		return b.point
	}
	b.point = b.PointAtDisplayColumn(target, goal)
	b.goal = goal
	return b.point
}

// NextWord moves to the start of the next word.
func (b *Buffer) NextWord() Point {
	p := b.point
	line := b.lines[p.Line]
	col := line.FindFirstNotOf(b.isWordChar, p.Column)
	for {
		col = line.FindFirstNotOf(b.isNotWordChar, col)
		if col < line.Len() || p.Line == len(b.lines)-1 {
			return b.setPoint(Point{Line: p.Line, Column: col})
		}
		p.Line++
		line = b.lines[p.Line]
		col = 0
	}
}

// PrevWord moves to the start of the current or previous word.
func (b *Buffer) PrevWord() Point {
	p := b.point
	line := b.lines[p.Line]
	col := p.Column
	for {
		if i := line.FindLastNotOf(b.isNotWordChar, col); i >= 0 {
			start := line.FindLastNotOf(b.isWordChar, i) + 1
			return b.setPoint(Point{Line: p.Line, Column: start})
		}
		if p.Line == 0 {
			return b.setPoint(Point{})
		}
		p.Line--
		line = b.lines[p.Line]
		col = line.Len()
	}
}

// NextPara moves to the blank line after the current paragraph, or to the
// end of the buffer.
func (b *Buffer) NextPara() Point {
	i := b.point.Line
	for i < len(b.lines) && b.lines[i].IsBlank() {
		i++
	}
	for i < len(b.lines) && !b.lines[i].IsBlank() {
		i++
	}
	if i >= len(b.lines) {
		return b.End()
	}
	return b.setPoint(Point{Line: i})
}

// PrevPara moves to the blank line before the current paragraph, or to the
// start of the buffer.
func (b *Buffer) PrevPara() Point {
	i := b.point.Line
	for i >= 0 && b.lines[i].IsBlank() {
		i--
	}
	for i >= 0 && !b.lines[i].IsBlank() {
		i--
	}
	if i < 0 {
		return b.Begin()
	}
	return b.setPoint(Point{Line: i})
}

var parenPairs = map[rune]struct {
	mate    rune
	forward bool
}{
	'(': {')', true}, '[': {']', true}, '{': {'}', true},
	')': {'(', false}, ']': {'[', false}, '}': {'{', false},
}

// MatchParen moves to the bracket matching the one at the point, or the one
// just before it. It reports false and stays put when there is no match.
func (b *Buffer) MatchParen() (Point, bool) {
	p := b.point
	open, ok := b.bracketAt(p)
	if !ok && p.Column > 0 {
		p.Column--
		open, ok = b.bracketAt(p)
	}
	if !ok {
		return b.point, false
	}

	pair := parenPairs[open]
	depth := 0
	for q, ok := p, true; ok; q, ok = b.stepChar(q, pair.forward) {
		r, _ := b.CharAt(q)
		switch r {
		case open:
			depth++
		case pair.mate:
			depth--
			if depth == 0 {
				return b.setPoint(q), true
			}
		}
	}
	return b.point, false
}

func (b *Buffer) bracketAt(p Point) (rune, bool) {
	r, ok := b.CharAt(p)
	if !ok {
		return 0, false
	}
	_, isBracket := parenPairs[r]
	return r, isBracket
}

// stepChar moves one character forward or backward across line breaks.
func (b *Buffer) stepChar(p Point, forward bool) (Point, bool) {
	if forward {
		if p.Column < b.lines[p.Line].Len() {
			return Point{Line: p.Line, Column: p.Column + 1}, true
		}
		if p.Line+1 < len(b.lines) {
			return Point{Line: p.Line + 1}, true
		}
		return p, false
	}
	if p.Column > 0 {
		return Point{Line: p.Line, Column: p.Column - 1}, true
	}
	if p.Line > 0 {
		return Point{Line: p.Line - 1, Column: b.lines[p.Line-1].Len()}, true
	}
	return p, false
}

func (b *Buffer) isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(b.wordChars, r)
}

func (b *Buffer) isNotWordChar(r rune) bool {
	return !b.isWordChar(r)
}

// Display columns

// DisplayColumn returns the screen column of p, expanding tabs and counting
// wide characters as two cells.
func (b *Buffer) DisplayColumn(p Point) int {
	p = b.clampPoint(p)
	col := 0
	runes := b.lines[p.Line].runes
	g := uniseg.NewGraphemes(string(runes[:p.Column]))
	for g.Next() {
		col += b.cellWidth(g.Str(), col)
	}
	return col
}

// PointAtDisplayColumn returns the point on line whose display column is
// the last one not past col.
func (b *Buffer) PointAtDisplayColumn(line, col int) Point {
	line = min(max(line, 0), len(b.lines)-1)
	runes := b.lines[line].runes
	width, at := 0, 0
	g := uniseg.NewGraphemes(string(runes))
	for g.Next() {
		w := b.cellWidth(g.Str(), width)
		if width+w > col {
			break
		}
		width += w
		at += len(g.Runes())
	}
	return Point{Line: line, Column: at}
}

func (b *Buffer) cellWidth(cluster string, col int) int {
	if cluster == "\t" {
		return b.tabWidth - col%b.tabWidth
	}
	w := runewidth.StringWidth(cluster)
	if w <= 0 {
		w = uniseg.StringWidth(cluster)
	}
	return w
}

// graphemeStops returns the rune offsets at which grapheme clusters end.
func graphemeStops(runes []rune) []int {
	stops := make([]int, 0, len(runes))
	at := 0
	g := uniseg.NewGraphemes(string(runes))
	for g.Next() {
		at += len(g.Runes())
		stops = append(stops, at)
	}
	return stops
}
