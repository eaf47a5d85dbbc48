package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCredentialsUnavailable short-circuits a call site before any
	// network I/O. Fatal for the call, not for the process.
	ErrCredentialsUnavailable = errors.New("upstream credentials unavailable")

	ErrBookingNotFound = errors.New("booking not found")
	ErrGuideNotFound   = errors.New("guide not found")
)

// CapacityError is a normal failure result from assignment and move
// operations, not an exceptional condition.
type CapacityError struct {
	GuideID string
	Current int
	Adding  int
	Max     int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("guide %s capacity exceeded: %d + %d > %d passengers", e.GuideID, e.Current, e.Adding, e.Max)
}
