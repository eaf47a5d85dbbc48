package pickup

import (
	"time"

	"github.com/arcticshore/pickups/internal/domain"
)

type State string

const (
	StateIdle    State = "IDLE"
	StateLoading State = "LOADING"
	StateLoaded  State = "LOADED"
	StateError   State = "ERROR"
)

// Snapshot is the immutable view the orchestrator exposes. Every transition
// replaces the whole snapshot; collections inside it are never mutated in
// place, and callers must treat them as read-only.
type Snapshot struct {
	State               State
	SelectedDate        time.Time
	DateKey             string
	Bookings            []domain.Booking
	CurrentUserBookings []domain.Booking
	GuideLists          []domain.GuideAssignmentList
	Err                 error

	// Saved manual order for the current user's guide, applied on refresh.
	currentUserOrder []string
}

func (s Snapshot) IsLoading() bool {
	return s.State == StateLoading
}
