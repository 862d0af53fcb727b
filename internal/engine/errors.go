package engine

import "errors"

// Errors returned by document operations.
var (
	// ErrReadOnly indicates an edit was attempted on a read-only document.
	ErrReadOnly = errors.New("document is read-only")

	// ErrNoPath indicates a file operation on a document without a path.
	ErrNoPath = errors.New("document has no path")
)
