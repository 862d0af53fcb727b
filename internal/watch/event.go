package watch

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrClosed     = errors.New("watcher is closed")
	ErrNoPath     = errors.New("document has no backing file")
	ErrNotTracked = errors.New("document is not tracked")
)

// Op is a set of file system operations.
type Op uint32

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

// String returns the operations joined by '|'.
func (op Op) String() string {
	var parts []string
	for _, o := range []struct {
		op   Op
		name string
	}{
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{OpRemove, "REMOVE"},
		{OpRename, "RENAME"},
		{OpChmod, "CHMOD"},
	} {
		if op.Has(o.op) {
			parts = append(parts, o.name)
		}
	}
	if len(parts) == 0 {
		return "NONE"
	}
	return strings.Join(parts, "|")
}

// Has reports whether op includes o.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Event is a change to one file.
type Event struct {
	Path      string
	Op        Op
	Timestamp time.Time
}
