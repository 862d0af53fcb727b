// Package buffer provides the line-based document model of the editor: an
// ordered sequence of mutable lines, a point (caret), an optional region
// and an undo/redo history of reversible operations.
//
// The buffer package provides:
//
//   - Primitive mutators (InsertChar, RemoveChar, InsertLines, RemoveLines,
//     SplitLine, JoinLine, RemoveRegion) that validate, mutate and log an
//     OpData holding the exact inverse
//   - Undo/redo that restores content, point and region
//   - Grouped edits and transactions recorded as a single undo entry
//   - Point motions by grapheme cluster, word, paragraph and bracket
//   - Display columns that account for tabs and wide characters
//   - Read-only snapshots for scanning outside the owner's lock
//
// Basic usage:
//
//	buf := buffer.NewFromString("hello world")
//
//	// Delete "hello" as one undoable step
//	buf.StartRegion(buffer.Point{Line: 0, Column: 0})
//	buf.StopRegion(buffer.Point{Line: 0, Column: 5})
//	buf.RemoveRegion()
//
//	buf.Undo() // "hello world" again, region restored
//
// Positions:
//
// Point columns count characters (runes). Use DisplayColumn and
// PointAtDisplayColumn to convert to and from screen cells.
//
// Content round-trips exactly: text is split on '\n' only and no line
// ending or whitespace normalization is applied.
//
// Thread Safety:
//
// A Buffer is not safe for concurrent use. The engine's Document wraps it
// with a mutex; Snapshot is safe to share.
package buffer
