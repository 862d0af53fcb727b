package buffer

import "strings"

// Primitive mutators. Each one validates its positions, mutates the lines,
// records an OpData, clears redo, sets the modified flag and returns the
// resulting point, which also becomes the current point. On error nothing
// changes.

// newOp starts an entry capturing the current point and region.
func (b *Buffer) newOp(kind OpKind, at Point) *OpData {
	return &OpData{
		Kind:         kind,
		At:           at,
		PointBefore:  b.point,
		RegionBefore: b.region,
	}
}

// record logs op and moves the point to after.
func (b *Buffer) record(op *OpData, after Point) Point {
	b.touch(op.FirstLine())
	b.point = after
	op.PointAfter = after
	op.RegionAfter = b.region
	b.history.Push(op)
	return after
}

// InsertChar inserts r at p. A newline splits the line instead.
func (b *Buffer) InsertChar(p Point, r rune) (Point, error) {
	if r == '\n' {
		return b.SplitLine(p)
	}
	if err := b.checkPoint("insert char", p); err != nil {
		return b.point, err
	}

	op := b.newOp(OpInsertChar, p)
	op.Text = []string{string(r)}
	b.lines[p.Line].Insert(p.Column, []rune{r})
	return b.record(op, Point{Line: p.Line, Column: p.Column + 1}), nil
}

// RemoveChar removes the character after p, or before p when the buffer
// deletes backward. Crossing a line edge joins the two lines. At the edge
// of the buffer it does nothing.
func (b *Buffer) RemoveChar(p Point) (Point, error) {
	if err := b.checkPoint("remove char", p); err != nil {
		return b.point, err
	}

	line := b.lines[p.Line]
	at := p
	if b.deleteDir == DeleteBackward {
		switch {
		case p.Column > 0:
			at.Column--
		case p.Line > 0:
			at = Point{Line: p.Line - 1, Column: b.lines[p.Line-1].Len()}
		default:
			return p, nil
		}
		line = b.lines[at.Line]
	}

	if at.Column < line.Len() {
		op := b.newOp(OpRemoveChar, at)
		op.Text = []string{string(line.Erase(at.Column, 1))}
		return b.record(op, at), nil
	}
	if at.Line+1 >= len(b.lines) {
		return p, nil
	}

	op := b.newOp(OpJoinLine, at)
	b.joinAt(at.Line)
	return b.record(op, at), nil
}

// InsertLines inserts lines joined by newlines at p and returns the point
// just after the inserted text.
func (b *Buffer) InsertLines(p Point, lines []string) (Point, error) {
	if err := b.checkPoint("insert lines", p); err != nil {
		return b.point, err
	}
	if len(lines) == 0 {
		return p, nil
	}

	// Elements that carry their own newlines contribute several lines.
	text := strings.Split(strings.Join(lines, "\n"), "\n")
	if len(text) == 1 && text[0] == "" {
		return p, nil
	}

	op := b.newOp(OpInsertLines, p)
	op.Text = text
	return b.record(op, b.spliceText(p, text)), nil
}

// InsertText inserts s at p, splitting it on '\n'.
func (b *Buffer) InsertText(p Point, s string) (Point, error) {
	return b.InsertLines(p, []string{s})
}

// RemoveLines removes count whole lines starting at start. Removing every
// line leaves a single empty line.
func (b *Buffer) RemoveLines(start, count int) (Point, error) {
	at := Point{Line: start}
	if start < 0 || start >= len(b.lines) || count < 0 || start+count > len(b.lines) {
		return b.point, &RangeError{Op: "remove lines", Point: at, Lines: len(b.lines)}
	}
	if count == 0 {
		return b.point, nil
	}

	op := b.newOp(OpRemoveLines, at)
	op.Text, op.Emptied = b.cutLines(start, count)
	return b.record(op, Point{Line: min(start, len(b.lines)-1)}), nil
}

// SplitLine breaks the line at p. The point moves to the start of the new
// line.
func (b *Buffer) SplitLine(p Point) (Point, error) {
	if err := b.checkPoint("split line", p); err != nil {
		return b.point, err
	}

	op := b.newOp(OpSplitLine, p)
	b.splitAt(p)
	return b.record(op, Point{Line: p.Line + 1}), nil
}

// JoinLine merges line with the line after it. The point moves to the
// join position.
func (b *Buffer) JoinLine(line int) (Point, error) {
	if line < 0 || line+1 >= len(b.lines) {
		return b.point, &RangeError{Op: "join line", Point: Point{Line: line}, Lines: len(b.lines)}
	}

	at := Point{Line: line, Column: b.lines[line].Len()}
	op := b.newOp(OpJoinLine, at)
	b.joinAt(line)
	return b.record(op, at), nil
}

// Region operations

// StartRegion sets the region anchor.
func (b *Buffer) StartRegion(p Point) error {
	if err := b.checkPoint("start region", p); err != nil {
		return err
	}
	b.region.anchor = p
	b.region.hasAnchor = true
	return nil
}

// StopRegion sets the region end. The region is active once both ends are
// set.
func (b *Buffer) StopRegion(p Point) error {
	if err := b.checkPoint("stop region", p); err != nil {
		return err
	}
	b.region.end = p
	b.region.hasEnd = true
	return nil
}

// ClearRegion deactivates the region.
func (b *Buffer) ClearRegion() {
	b.region = Region{}
}

// RegionActive reports whether both region ends are set.
func (b *Buffer) RegionActive() bool {
	return b.region.Active()
}

// Region returns the normalized region bounds.
func (b *Buffer) Region() (start, end Point, ok bool) {
	s, ok := b.region.Span()
	return s.Start, s.End, ok
}

// CurrentRegion returns the region as stored.
func (b *Buffer) CurrentRegion() Region {
	return b.region
}

// RegionAsStr returns the text covered by the region, or "" when no region
// is active.
func (b *Buffer) RegionAsStr() string {
	s, ok := b.region.Span()
	if !ok {
		return ""
	}
	return strings.Join(b.textSpan(s.Start, s.End), "\n")
}

// TextIn returns the text in [start, end).
func (b *Buffer) TextIn(start, end Point) (string, error) {
	if err := b.checkPoint("text", start); err != nil {
		return "", err
	}
	if err := b.checkPoint("text", end); err != nil {
		return "", err
	}
	start, end = orderPoints(start, end)
	return strings.Join(b.textSpan(start, end), "\n"), nil
}

// RemoveRegion deletes the region text as one entry and clears the region.
func (b *Buffer) RemoveRegion() (Point, error) {
	s, ok := b.region.Span()
	if !ok {
		return b.point, ErrNoRegion
	}

	op := b.newOp(OpRemoveRegion, s.Start)
	op.Text = b.cutSpan(s.Start, s.End)
	b.region = Region{}
	return b.record(op, s.Start), nil
}

// RemoveSpan deletes [start, end) as one entry. The region is left alone.
func (b *Buffer) RemoveSpan(start, end Point) (Point, error) {
	if err := b.checkPoint("remove span", start); err != nil {
		return b.point, err
	}
	if err := b.checkPoint("remove span", end); err != nil {
		return b.point, err
	}
	start, end = orderPoints(start, end)
	if start == end {
		return start, nil
	}

	op := b.newOp(OpRemoveRegion, start)
	op.Text = b.cutSpan(start, end)
	return b.record(op, start), nil
}
