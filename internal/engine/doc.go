// Package engine provides the Document, the unit the editor works on: one
// line buffer with its undo history, an identity, exclusive access and
// change notification.
//
// # Architecture
//
// The engine is built on two sub-packages:
//
//   - history: bounded two-stack undo/redo log with grouping
//   - buffer: lines, point, region, primitive mutators and motions
//
// # Thread Safety
//
// A buffer.Buffer is single-threaded. Document serializes every access with
// a mutex: Edit and Reload take it exclusively, View and the read helpers
// take it for the duration of the call. A reload triggered by a file watcher
// therefore runs as one ordinary mutating operation and never interleaves
// with user edits.
//
// # Basic Usage
//
//	doc := engine.New(engine.WithContent("hello world"))
//
//	err := doc.Edit(func(b *buffer.Buffer) error {
//	    _, err := b.InsertText(buffer.Point{Line: 0, Column: 5}, ",")
//	    return err
//	})
//
//	doc.Undo() // "hello world"
//
// # Change Notification
//
// Subscribe registers a listener that receives a Change after every Edit or
// Reload that moved the buffer revision. Listeners run after the lock is
// released, so they may call back into the document:
//
//	unsubscribe := doc.Subscribe(func(c engine.Change) {
//	    highlighter.Invalidate(c.FirstLine)
//	})
//	defer unsubscribe()
//
// # Files
//
// Open reads a file into a document whose Save writes it back. ReloadFile
// re-reads the file and replaces the content as a single undoable step.
package engine
