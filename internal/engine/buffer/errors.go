package buffer

import (
	"errors"
	"fmt"
)

// Errors returned by buffer operations.
var (
	ErrOutOfRange = errors.New("position out of range")
	ErrNoRegion   = errors.New("no active region")
	ErrGroupOpen  = errors.New("edit group is open")
	ErrNoSaveHook = errors.New("no save hook installed")
)

// RangeError records the operation and position that failed validation.
type RangeError struct {
	Op    string
	Point Point
	Lines int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %s: %v (buffer has %d lines)", e.Op, e.Point, ErrOutOfRange, e.Lines)
}

func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}
