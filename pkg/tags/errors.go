package tags

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrCapacityExceeded = errors.New("tag capacity exceeded")
	ErrInvalidKey       = errors.New("invalid tag key")
)

// Error provides structured information about a failed registry operation.
type Error struct {
	Op       string // Operation that failed (e.g. "index", "register")
	Tag      string // Display name of the key involved
	Capacity int    // Registry capacity at the time of failure
	Cause    error  // Underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if errors.Is(e.Cause, ErrCapacityExceeded) {
		return fmt.Sprintf("%s tag %q: %v (capacity %d)", e.Op, e.Tag, e.Cause, e.Capacity)
	}
	if e.Tag != "" {
		return fmt.Sprintf("%s tag %q: %v", e.Op, e.Tag, e.Cause)
	}
	return fmt.Sprintf("%s tag: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCapacityExceeded reports whether err was caused by a full registry.
func IsCapacityExceeded(err error) bool {
	return errors.Is(err, ErrCapacityExceeded)
}
