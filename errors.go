package prioritycache

import (
	"errors"
	"fmt"
)

var (
	ErrBackendRequired = errors.New("prioritycache: backend is required")
	ErrEmptyKey        = errors.New("prioritycache: empty key")
	ErrInvalidData     = errors.New("prioritycache: data is not valid JSON")
)

// RefreshError is returned (and surfaced on views) when a manual refresh of a
// cached dataset fails. Cached and displayed data are left untouched.
type RefreshError struct {
	Key string
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("refresh %q: %v", e.Key, e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }
