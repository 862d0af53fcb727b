package buffer

// Low-level line surgery shared by the primitives and by undo/redo replay.
// Callers validate positions first.

// spliceText inserts text, a sequence of lines joined by newlines, at p and
// returns the point just after it.
func (b *Buffer) spliceText(p Point, text []string) Point {
	line := b.lines[p.Line]
	if len(text) <= 1 {
		if len(text) == 1 {
			line.Insert(p.Column, []rune(text[0]))
		}
		return spanEnd(p, text)
	}

	tail := line.Split(p.Column)
	line.Insert(p.Column, []rune(text[0]))

	added := make([]*Line, 0, len(text)-1)
	for _, s := range text[1 : len(text)-1] {
		added = append(added, NewLine(s))
	}
	last := NewLine(text[len(text)-1])
	last.Join(tail)
	added = append(added, last)

	b.insertLineObjects(p.Line+1, added)
	return spanEnd(p, text)
}

// cutSpan removes [start, end) and returns the removed text as lines.
func (b *Buffer) cutSpan(start, end Point) []string {
	first := b.lines[start.Line]
	if start.Line == end.Line {
		return []string{string(first.Erase(start.Column, end.Column-start.Column))}
	}

	removed := make([]string, 0, end.Line-start.Line+1)
	removed = append(removed, string(first.runes[start.Column:]))
	for i := start.Line + 1; i < end.Line; i++ {
		removed = append(removed, b.lines[i].String())
	}
	last := b.lines[end.Line]
	removed = append(removed, string(last.runes[:end.Column]))

	first.Split(start.Column)
	first.Join(&Line{runes: last.runes[end.Column:]})
	b.lines = append(b.lines[:start.Line+1], b.lines[end.Line+1:]...)
	return removed
}

// textSpan returns [start, end) as lines without modifying the buffer.
func (b *Buffer) textSpan(start, end Point) []string {
	if start.Line == end.Line {
		return []string{string(b.lines[start.Line].runes[start.Column:end.Column])}
	}
	out := make([]string, 0, end.Line-start.Line+1)
	out = append(out, string(b.lines[start.Line].runes[start.Column:]))
	for i := start.Line + 1; i < end.Line; i++ {
		out = append(out, b.lines[i].String())
	}
	return append(out, string(b.lines[end.Line].runes[:end.Column]))
}

func (b *Buffer) splitAt(p Point) {
	tail := b.lines[p.Line].Split(p.Column)
	b.insertLineObjects(p.Line+1, []*Line{tail})
}

// joinAt merges line with the next one.
func (b *Buffer) joinAt(line int) {
	b.lines[line].Join(b.lines[line+1])
	b.lines = append(b.lines[:line+1], b.lines[line+2:]...)
}

// cutLines removes count whole lines starting at start. Removing every line
// leaves one empty line, which is reported by emptied.
func (b *Buffer) cutLines(start, count int) (removed []string, emptied bool) {
	removed = make([]string, count)
	for i := range count {
		removed[i] = b.lines[start+i].String()
	}
	if count == len(b.lines) {
		b.lines = []*Line{{}}
		return removed, true
	}
	b.lines = append(b.lines[:start], b.lines[start+count:]...)
	b.assertLines()
	return removed, false
}

// restoreLines undoes cutLines.
func (b *Buffer) restoreLines(start int, removed []string, emptied bool) {
	if emptied {
		b.lines = makeLines(removed)
		return
	}
	b.insertLineObjects(start, makeLines(removed))
}

func (b *Buffer) insertLineObjects(at int, lines []*Line) {
	b.lines = append(b.lines[:at], append(lines, b.lines[at:]...)...)
}
