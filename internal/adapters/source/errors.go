package source

import (
	"errors"
	"fmt"
)

// ErrDataLoad marks every failure to read or coerce an input table.
var ErrDataLoad = errors.New("data load failed")

// LoadError describes where loading stopped. It matches both ErrDataLoad and
// the underlying cause under errors.Is.
type LoadError struct {
	Table string // ratings, books or users
	Path  string
	Line  int // 1-based record number; 0 when not tied to a record
	Err   error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load %s from %s: line %d: %v", e.Table, e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("load %s from %s: %v", e.Table, e.Path, e.Err)
}

// Unwrap exposes the sentinel kind and the cause.
func (e *LoadError) Unwrap() []error {
	return []error{ErrDataLoad, e.Err}
}

// Sentinel causes wrapped inside a LoadError.
var (
	ErrMissingColumn = errors.New("missing required column")
	ErrBadValue      = errors.New("value cannot be coerced")
)
