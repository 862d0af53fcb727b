// Package scan provides cursors over character streams for the pattern
// engine.
//
// A Scanner exposes peek/advance over characters, the current offset and
// rewinding to any offset already observed. Two sources are provided:
//
//   - StringScanner over an immutable string
//   - BufferScanner over the lines of a live buffer or snapshot, with a
//     single synthetic '\n' between lines
//
// Offsets count characters from the start of the source, so tokens produced
// by a BufferScanner map back to buffer points with PointAt.
//
// A BufferScanner borrows the buffer's lines. Mutating the buffer while a
// scan is in progress is undefined; re-tokenize after every mutation.
package scan
