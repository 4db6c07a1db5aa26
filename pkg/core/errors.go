package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrReadOnly       = errors.New("repository is in read-only mode")
	ErrNotFound       = errors.New("notebook not found")
	ErrInvalidVersion = errors.New("invalid notebook version")
)

// MissingFieldError reports a required key absent from the generic
// container representation during structural loading.
type MissingFieldError struct {
	Field string
	Index int // cell index, or -1 for a top-level field
}

func (e *MissingFieldError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("missing field %q", e.Field)
	}
	return fmt.Sprintf("cell %d: missing field %q", e.Index, e.Field)
}
