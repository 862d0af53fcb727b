package buffer

import (
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/dshills/tedit/internal/engine/history"
)

// state captures everything undo must restore.
type state struct {
	lines  []string
	point  Point
	region Region
}

func capture(b *Buffer) state {
	return state{lines: b.Lines(), point: b.Point(), region: b.CurrentRegion()}
}

func assertState(t *testing.T, label string, b *Buffer, want state) {
	t.Helper()
	got := capture(b)
	if !slices.Equal(got.lines, want.lines) {
		t.Fatalf("%s: lines = %q, want %q", label, got.lines, want.lines)
	}
	if got.point != want.point {
		t.Fatalf("%s: point = %v, want %v", label, got.point, want.point)
	}
	if got.region != want.region {
		t.Fatalf("%s: region = %v, want %v", label, got.region, want.region)
	}
}

func randomPoint(r *rand.Rand, b *Buffer) Point {
	line := r.IntN(b.LineCount())
	return Point{Line: line, Column: r.IntN(b.LineLen(line) + 1)}
}

// randomRegion sometimes moves one or both region ends.
func randomRegion(r *rand.Rand, b *Buffer) {
	switch r.IntN(4) {
	case 0:
		b.StartRegion(randomPoint(r, b))
	case 1:
		b.StartRegion(randomPoint(r, b))
		b.StopRegion(randomPoint(r, b))
	case 2:
		b.ClearRegion()
	}
}

// randomMutation applies one primitive and reports whether it was recorded.
func randomMutation(r *rand.Rand, b *Buffer) bool {
	before := b.UndoCount()
	switch r.IntN(9) {
	case 0:
		b.InsertChar(randomPoint(r, b), rune('a'+r.IntN(26)))
	case 1:
		b.InsertChar(randomPoint(r, b), '\n')
	case 2:
		b.RemoveChar(randomPoint(r, b))
	case 3:
		b.InsertLines(randomPoint(r, b), []string{"x", "yy", "zzz"}[:1+r.IntN(3)])
	case 4:
		start := r.IntN(b.LineCount())
		b.RemoveLines(start, 1+r.IntN(b.LineCount()-start))
	case 5:
		b.SplitLine(randomPoint(r, b))
	case 6:
		if b.LineCount() > 1 {
			b.JoinLine(r.IntN(b.LineCount() - 1))
		}
	case 7:
		b.RemoveRegion()
	case 8:
		b.RemoveSpan(randomPoint(r, b), randomPoint(r, b))
	}
	return b.UndoCount() > before
}

func TestUndoRestoresOriginal(t *testing.T) {
	for _, dir := range []DeleteDirection{DeleteForward, DeleteBackward} {
		r := rand.New(rand.NewPCG(1, uint64(dir)))
		b := NewFromString("The quick brown fox\njumps over\n\nthe lazy dog", WithDeleteDirection(dir))

		var states []state
		for range 300 {
			randomRegion(r, b)
			pre := capture(b)
			if randomMutation(r, b) {
				states = append(states, pre)
			}
		}

		for i := len(states) - 1; i >= 0; i-- {
			if _, err := b.Undo(); err != nil {
				t.Fatalf("Undo %d failed: %v", i, err)
			}
			assertState(t, "undo", b, states[i])
		}
		if b.CanUndo() {
			t.Error("history should be exhausted")
		}
	}
}

func TestRedoReproducesMutation(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	b := NewFromString("alpha beta\ngamma\ndelta epsilon")

	for i := 0; i < 200; i++ {
		randomRegion(r, b)
		if !randomMutation(r, b) {
			continue
		}
		post := capture(b)

		if _, err := b.Undo(); err != nil {
			t.Fatalf("Undo failed: %v", err)
		}
		if _, err := b.Redo(); err != nil {
			t.Fatalf("Redo failed: %v", err)
		}
		assertState(t, "redo", b, post)
	}
}

func TestNewMutationDiscardsRedo(t *testing.T) {
	b := NewFromString("abc")

	b.InsertChar(Point{Line: 0, Column: 3}, 'd')
	b.Undo()
	b.InsertChar(Point{Line: 0, Column: 0}, 'x')

	p := b.Point()
	_, err := b.Redo()
	if !errors.Is(err, history.ErrEmptyHistory) {
		t.Fatalf("Redo error = %v, want ErrEmptyHistory", err)
	}
	if b.Text() != "xabc" || b.Point() != p {
		t.Errorf("failed redo should change nothing, got %q at %v", b.Text(), b.Point())
	}
}

func TestUndoEmptyHistory(t *testing.T) {
	b := NewFromString("abc")

	if _, err := b.Undo(); !errors.Is(err, history.ErrNothingToUndo) {
		t.Errorf("Undo error = %v, want ErrNothingToUndo", err)
	}
	if _, err := b.Redo(); !errors.Is(err, history.ErrNothingToRedo) {
		t.Errorf("Redo error = %v, want ErrNothingToRedo", err)
	}
	if b.Modified() {
		t.Error("failed undo should not modify the buffer")
	}
}

func TestHistoryDepthBound(t *testing.T) {
	b := NewBuffer(WithMaxUndoEntries(5))

	for i := 0; i < 12; i++ {
		if _, err := b.InsertChar(Point{Line: 0, Column: i}, 'a'); err != nil {
			t.Fatalf("InsertChar failed: %v", err)
		}
	}

	if b.UndoCount() != 5 {
		t.Errorf("UndoCount() = %d, want 5", b.UndoCount())
	}
	if b.DroppedEntries() != 7 {
		t.Errorf("DroppedEntries() = %d, want 7", b.DroppedEntries())
	}
	if b.MaxUndoEntries() != 5 {
		t.Errorf("MaxUndoEntries() = %d, want 5", b.MaxUndoEntries())
	}
	for b.CanUndo() {
		b.Undo()
	}
	if b.Text() != strings.Repeat("a", 7) {
		t.Errorf("after undoing retained entries: %q", b.Text())
	}
}

func TestRegionRoundTrip(t *testing.T) {
	b := NewFromString("hello world")
	b.MoveTo(Point{Line: 0, Column: 11})

	if err := b.StartRegion(Point{Line: 0, Column: 0}); err != nil {
		t.Fatalf("StartRegion failed: %v", err)
	}
	if b.RegionActive() {
		t.Error("region should not be active with only an anchor")
	}
	if err := b.StopRegion(Point{Line: 0, Column: 5}); err != nil {
		t.Fatalf("StopRegion failed: %v", err)
	}
	if got := b.RegionAsStr(); got != "hello" {
		t.Errorf("RegionAsStr() = %q, want %q", got, "hello")
	}

	before := capture(b)
	if _, err := b.RemoveRegion(); err != nil {
		t.Fatalf("RemoveRegion failed: %v", err)
	}
	if b.Text() != " world" {
		t.Errorf("after RemoveRegion: %q", b.Text())
	}
	if b.RegionActive() {
		t.Error("region should be cleared after removal")
	}
	if b.UndoCount() != 1 {
		t.Errorf("RemoveRegion should record one entry, got %d", b.UndoCount())
	}

	if _, err := b.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	assertState(t, "undo remove region", b, before)
}

func TestRegionNormalizedOnRead(t *testing.T) {
	b := NewFromString("one\ntwo\nthree")

	b.StartRegion(Point{Line: 2, Column: 2})
	b.StopRegion(Point{Line: 0, Column: 1})

	start, end, ok := b.Region()
	if !ok || start != (Point{Line: 0, Column: 1}) || end != (Point{Line: 2, Column: 2}) {
		t.Errorf("Region() = %v, %v, %v", start, end, ok)
	}
	if anchor, _ := b.CurrentRegion().Anchor(); anchor != (Point{Line: 2, Column: 2}) {
		t.Errorf("anchor should be kept as given, got %v", anchor)
	}
	if got := b.RegionAsStr(); got != "ne\ntwo\nth" {
		t.Errorf("RegionAsStr() = %q", got)
	}

	b.ClearRegion()
	if b.RegionActive() || b.RegionAsStr() != "" {
		t.Error("ClearRegion should deactivate the region")
	}
	if _, err := b.RemoveRegion(); !errors.Is(err, ErrNoRegion) {
		t.Errorf("RemoveRegion without region: %v, want ErrNoRegion", err)
	}
}

func TestGroupIsOneUndoUnit(t *testing.T) {
	b := NewFromString("abc")

	b.BeginGroup("typing")
	b.InsertChar(Point{Line: 0, Column: 3}, 'd')
	b.InsertChar(Point{Line: 0, Column: 4}, 'e')
	if _, err := b.Undo(); !errors.Is(err, ErrGroupOpen) {
		t.Errorf("Undo inside group: %v, want ErrGroupOpen", err)
	}
	b.EndGroup()

	if b.UndoCount() != 1 {
		t.Fatalf("UndoCount() = %d, want 1", b.UndoCount())
	}
	top, _ := b.PeekUndo()
	if top.Kind != OpCompound || top.Count() != 2 || top.Name != "typing" {
		t.Errorf("group entry = %v", top)
	}

	b.Undo()
	if b.Text() != "abc" {
		t.Errorf("after undo: %q", b.Text())
	}
}

func TestTransactionRollback(t *testing.T) {
	b := NewFromString("abc")
	b.MoveTo(Point{Line: 0, Column: 1})
	before := capture(b)

	failure := errors.New("abort")
	err := b.Transaction("edit", func() error {
		b.InsertText(Point{Line: 0, Column: 3}, "\nmore")
		b.RemoveChar(Point{Line: 0, Column: 0})
		return failure
	})

	if !errors.Is(err, failure) {
		t.Fatalf("Transaction error = %v, want %v", err, failure)
	}
	assertState(t, "rollback", b, before)
	if b.CanUndo() {
		t.Error("rolled back transaction should not be recorded")
	}
}

func TestTransactionCommit(t *testing.T) {
	b := NewFromString("abc")

	err := b.Transaction("edit", func() error {
		if _, err := b.InsertText(Point{Line: 0, Column: 3}, "def"); err != nil {
			return err
		}
		_, err := b.SplitLine(Point{Line: 0, Column: 3})
		return err
	})
	if err != nil {
		t.Fatalf("Transaction failed: %v", err)
	}
	if b.Text() != "abc\ndef" || b.UndoCount() != 1 {
		t.Errorf("got %q with %d entries", b.Text(), b.UndoCount())
	}
}

func TestKillLine(t *testing.T) {
	b := NewFromString("hello world\nnext")

	killed, err := b.KillLine(Point{Line: 0, Column: 5})
	if err != nil {
		t.Fatalf("KillLine failed: %v", err)
	}
	if killed != " world" || b.Text() != "hello\nnext" {
		t.Errorf("KillLine() = %q, text %q", killed, b.Text())
	}

	killed, _ = b.KillLine(Point{Line: 0, Column: 5})
	if killed != "\n" || b.Text() != "hellonext" {
		t.Errorf("KillLine() at EOL = %q, text %q", killed, b.Text())
	}

	killed, _ = b.KillLine(Point{Line: 0, Column: 9})
	if killed != "" || b.UndoCount() != 2 {
		t.Errorf("KillLine() at buffer end = %q with %d entries", killed, b.UndoCount())
	}
}

func TestKeepLines(t *testing.T) {
	hasTodo := func(s string) bool { return strings.Contains(s, "TODO") }

	tests := []struct {
		name    string
		keep    bool
		want    string
		removed int
	}{
		{"keep matching", true, "TODO a\nTODO b\nTODO c", 3},
		{"flush matching", false, "x\ny\nz", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := "TODO a\nx\ny\nTODO b\nTODO c\nz"
			b := NewFromString(text)

			n, err := b.KeepLines(hasTodo, tt.keep)
			if err != nil {
				t.Fatalf("KeepLines failed: %v", err)
			}
			if n != tt.removed || b.Text() != tt.want {
				t.Errorf("KeepLines() = %d, %q; want %d, %q", n, b.Text(), tt.removed, tt.want)
			}

			b.Undo()
			if b.Text() != text {
				t.Errorf("one undo should restore, got %q", b.Text())
			}
		})
	}
}

func TestKeepLinesRemovesEverything(t *testing.T) {
	b := NewFromString("a\nb")

	n, _ := b.KeepLines(func(string) bool { return true }, false)
	if n != 2 || b.LineCount() != 1 || b.Line(0) != "" {
		t.Errorf("KeepLines() = %d, %q", n, b.Lines())
	}
	b.Undo()
	if b.Text() != "a\nb" {
		t.Errorf("after undo: %q", b.Text())
	}
}

func TestSortLines(t *testing.T) {
	text := "pear\nbanana\napple\ncherry"
	b := NewFromString(text)

	if err := b.SortLines(0, 4); err != nil {
		t.Fatalf("SortLines failed: %v", err)
	}
	if b.Text() != "apple\nbanana\ncherry\npear" {
		t.Errorf("sorted = %q", b.Text())
	}
	if b.UndoCount() != 1 {
		t.Errorf("UndoCount() = %d, want 1", b.UndoCount())
	}

	b.Undo()
	if b.Text() != text {
		t.Errorf("after undo: %q", b.Text())
	}

	if err := b.SortLines(1, 3); err != nil {
		t.Fatalf("SortLines failed: %v", err)
	}
	if b.Text() != "pear\napple\nbanana\ncherry" {
		t.Errorf("partial sort = %q", b.Text())
	}
	if err := b.SortLines(3, 9); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("SortLines out of range: %v", err)
	}
}

func TestReplaceAll(t *testing.T) {
	b := NewFromString("old one\nold two\nold three")
	b.MoveTo(Point{Line: 2, Column: 5})

	if err := b.ReplaceAll([]string{"new"}); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}
	if b.Text() != "new" {
		t.Errorf("got %q", b.Text())
	}
	if b.Point() != (Point{Line: 0, Column: 3}) {
		t.Errorf("point should be clamped, got %v", b.Point())
	}

	b.Undo()
	if b.Text() != "old one\nold two\nold three" {
		t.Errorf("after undo: %q", b.Text())
	}

	if err := b.ReplaceAll(nil); err != nil {
		t.Fatalf("ReplaceAll(nil) failed: %v", err)
	}
	if b.LineCount() != 1 || b.Text() != "" {
		t.Errorf("ReplaceAll(nil) = %q", b.Lines())
	}
}

func TestPeekRedo(t *testing.T) {
	b := NewFromString("ab")
	if _, ok := b.PeekRedo(); ok {
		t.Fatal("PeekRedo on fresh buffer should report false")
	}

	b.InsertChar(Point{Line: 0, Column: 2}, 'c')
	b.Undo()
	op, ok := b.PeekRedo()
	if !ok || op.Kind != OpInsertChar || !slices.Equal(op.Text, []string{"c"}) {
		t.Fatalf("PeekRedo() = %+v, %v; want insert-char %q", op, ok, "c")
	}

	b.Redo()
	if _, ok := b.PeekRedo(); ok {
		t.Error("PeekRedo after Redo should report false")
	}
}

func TestReplaceAllRedoRestoresPoint(t *testing.T) {
	b := NewFromString("one\ntwo\nthree")
	b.MoveTo(Point{Line: 1, Column: 2})
	before := capture(b)

	if err := b.ReplaceAll([]string{"alpha", "beta", "gamma", "delta"}); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}
	after := capture(b)
	if after.point != (Point{Line: 1, Column: 2}) {
		t.Fatalf("point after ReplaceAll = %v, want 1:2", after.point)
	}

	if _, err := b.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	assertState(t, "undo", b, before)

	p, err := b.Redo()
	if err != nil {
		t.Fatalf("Redo failed: %v", err)
	}
	if p != after.point {
		t.Errorf("Redo() = %v, want %v", p, after.point)
	}
	assertState(t, "redo", b, after)
}

func TestGroupRedoRestoresFinalPoint(t *testing.T) {
	b := NewFromString("abc\ndef")

	b.BeginGroup("edit and move")
	b.InsertText(Point{Line: 1, Column: 3}, "!")
	b.MoveTo(Point{Line: 0, Column: 1})
	b.EndGroup()
	after := capture(b)

	b.Undo()
	b.Redo()
	assertState(t, "redo", b, after)
}

func TestReplace(t *testing.T) {
	b := NewFromString("foo bar foo\nfoofoo")

	n, err := b.Replace("foo", "x")
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if n != 4 || b.Text() != "x bar x\nxx" {
		t.Errorf("Replace() = %d, %q", n, b.Text())
	}
	b.Undo()
	if b.Text() != "foo bar foo\nfoofoo" {
		t.Errorf("after undo: %q", b.Text())
	}
}

func TestOpDataString(t *testing.T) {
	b := NewFromString("ab")
	b.InsertChar(Point{}, 'x')

	top, _ := b.PeekUndo()
	if got := top.String(); got != `insert-char (0:0) "x"` {
		t.Errorf("String() = %q", got)
	}
	if OpKind(99).String() != "OpKind(99)" {
		t.Errorf("unknown kind String() = %q", OpKind(99).String())
	}
}

func TestIndent(t *testing.T) {
	b := NewFromString("func() {\n\tx := 1\n  y := 2", WithTabWidth(4))
	b.MoveTo(Point{Line: 2, Column: 3})
	before := capture(b)

	delta, err := b.Indent(2, nil)
	if err != nil {
		t.Fatalf("Indent failed: %v", err)
	}
	if delta != 2 {
		t.Errorf("Indent() = %d, want 2", delta)
	}
	if got := b.Line(2); got != "    y := 2" {
		t.Errorf("line 2 = %q", got)
	}
	if b.Point() != (Point{Line: 2, Column: 5}) {
		t.Errorf("point = %v, want 2:5", b.Point())
	}
	after := capture(b)

	b.Undo()
	assertState(t, "undo", b, before)
	b.Redo()
	assertState(t, "redo", b, after)

	flush := func(*Buffer, int) int { return 0 }
	delta, err = b.Indent(1, flush)
	if err != nil || delta != -4 {
		t.Errorf("Indent(flush) = %d, %v; want -4", delta, err)
	}
	if got := b.Line(1); got != "x := 1" {
		t.Errorf("line 1 = %q", got)
	}

	undos := b.UndoCount()
	if delta, _ := b.Indent(0, nil); delta != 0 || b.UndoCount() != undos {
		t.Errorf("indenting to the current width should not record an entry")
	}

	var rerr *RangeError
	if _, err := b.Indent(3, nil); !errors.As(err, &rerr) {
		t.Errorf("Indent(3) error = %v, want RangeError", err)
	}
}
