package buffer

import (
	"slices"
	"strings"
)

// Compound edits are built from primitives and recorded as one undo entry.

// KillLine removes from p to the end of its line. At the end of a line it
// joins the next line instead. It returns the removed text.
func (b *Buffer) KillLine(p Point) (string, error) {
	if err := b.checkPoint("kill line", p); err != nil {
		return "", err
	}

	line := b.lines[p.Line]
	if p.Column < line.Len() {
		killed := string(line.runes[p.Column:])
		_, err := b.RemoveSpan(p, Point{Line: p.Line, Column: line.Len()})
		return killed, err
	}
	if p.Line+1 >= len(b.lines) {
		return "", nil
	}
	_, err := b.JoinLine(p.Line)
	return "\n", err
}

// KeepLines removes every line for which match(line) != keep, so keep=true
// keeps matching lines and keep=false flushes them. It returns the number
// of lines removed.
func (b *Buffer) KeepLines(match func(string) bool, keep bool) (int, error) {
	removed := 0
	err := b.Transaction("keep-lines", func() error {
		// Walk upward so earlier indexes stay valid; remove runs at once.
		for i := len(b.lines) - 1; i >= 0; {
			if match(b.lines[i].String()) == keep {
				i--
				continue
			}
			end := i
			for i >= 0 && match(b.lines[i].String()) != keep {
				i--
			}
			count := end - i
			if _, err := b.RemoveLines(i+1, count); err != nil {
				return err
			}
			removed += count
		}
		return nil
	})
	return removed, err
}

// SortLines sorts lines [start, end) in ascending order.
func (b *Buffer) SortLines(start, end int) error {
	if start < 0 || end > len(b.lines) || start > end {
		return &RangeError{Op: "sort lines", Point: Point{Line: start}, Lines: len(b.lines)}
	}

	current := make([]string, 0, end-start)
	for _, l := range b.lines[start:end] {
		current = append(current, l.String())
	}
	sorted := slices.Clone(current)
	slices.Sort(sorted)
	if slices.Equal(current, sorted) {
		return nil
	}

	return b.Transaction("sort-lines", func() error {
		// Insert the sorted copy above the range, then drop the original.
		if _, err := b.InsertLines(Point{Line: start}, append(sorted, "")); err != nil {
			return err
		}
		_, err := b.RemoveLines(start+len(sorted), len(sorted))
		return err
	})
}

// ReplaceAll replaces the whole content with lines as one undo entry.
// The point is kept where possible.
func (b *Buffer) ReplaceAll(lines []string) error {
	if len(lines) == 0 {
		lines = []string{""}
	}
	if slices.Equal(b.Lines(), lines) {
		return nil
	}

	keep := b.point
	old := len(b.lines)
	return b.Transaction("replace-all", func() error {
		text := append(slices.Clone(lines), "")
		if _, err := b.InsertLines(Point{}, text); err != nil {
			return err
		}
		if _, err := b.RemoveLines(len(lines), old); err != nil {
			return err
		}
		b.setPoint(b.clampPoint(keep))
		return nil
	})
}

// IndentFunc returns the indent width wanted for line.
type IndentFunc func(b *Buffer, line int) int

// IndentLikePrevious asks for the indent width of the line above. The
// first line keeps its own indent.
func IndentLikePrevious(b *Buffer, line int) int {
	if line == 0 {
		return b.lines[0].IndentSize(b.tabWidth)
	}
	return b.lines[line-1].IndentSize(b.tabWidth)
}

// Indent rewrites the leading whitespace of line as spaces, as wide as rule
// asks, and returns the change in width. A nil rule uses
// IndentLikePrevious. A point on the line stays on the same text; a point
// inside the old indent moves to the end of the new one.
func (b *Buffer) Indent(line int, rule IndentFunc) (int, error) {
	if line < 0 || line >= len(b.lines) {
		return 0, &RangeError{Op: "indent", Point: Point{Line: line}, Lines: len(b.lines)}
	}
	if rule == nil {
		rule = IndentLikePrevious
	}

	current := b.lines[line].IndentSize(b.tabWidth)
	want := max(rule(b, line), 0)
	if want == current {
		return 0, nil
	}
	lead := 0
	for _, r := range b.lines[line].runes {
		if r != ' ' && r != '\t' {
			break
		}
		lead++
	}

	keep := b.point
	err := b.Transaction("indent", func() error {
		if lead > 0 {
			if _, err := b.RemoveSpan(Point{Line: line}, Point{Line: line, Column: lead}); err != nil {
				return err
			}
		}
		if want > 0 {
			if _, err := b.InsertText(Point{Line: line}, strings.Repeat(" ", want)); err != nil {
				return err
			}
		}
		if keep.Line == line {
			keep.Column = max(keep.Column-lead, 0) + want
		}
		b.setPoint(b.clampPoint(keep))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return want - current, nil
}

// Replace substitutes to for every occurrence of from on each line and
// returns the number of replacements. Neither string may span lines.
func (b *Buffer) Replace(from, to string) (int, error) {
	if from == "" || strings.Contains(from, "\n") || strings.Contains(to, "\n") {
		return 0, nil
	}
	count := 0
	err := b.Transaction("replace", func() error {
		fromLen := runeCount(from)
		for i := range b.lines {
			for col := 0; ; {
				idx := indexRunes(b.lines[i].runes[col:], []rune(from))
				if idx < 0 {
					break
				}
				at := Point{Line: i, Column: col + idx}
				if _, err := b.RemoveSpan(at, Point{Line: i, Column: at.Column + fromLen}); err != nil {
					return err
				}
				end, err := b.InsertText(at, to)
				if err != nil {
					return err
				}
				col = end.Column
				count++
			}
		}
		return nil
	})
	return count, err
}

func indexRunes(s, sub []rune) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if slices.Equal(s[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}
