package domain

import "time"

// Booking is one customer's pickup for one tour date. Bookings are rebuilt
// from the upstream feed on every fetch; only overrides are durable.
type Booking struct {
	ID               string
	CustomerName     string
	PickupPlaceName  string
	PickupTime       time.Time
	GuestCount       int
	Phone            string
	Email            string
	BookingRef       string
	ConfirmationCode string
	Unpaid           bool
	AmountDue        *float64
	GuideID          string
	GuideName        string
	Arrived          bool
	NoShow           bool
}

func (b Booking) Assigned() bool {
	return b.GuideID != ""
}

type Guide struct {
	ID   string
	Name string
}

// GuideAssignmentList is the derived per-guide view for one date. It is
// recomputed from bookings on every reconciliation, never persisted.
type GuideAssignmentList struct {
	GuideID    string
	GuideName  string
	Bookings   []Booking
	Passengers int
	DateKey    string
}

// DateKey renders the canonical YYYY-MM-DD key used by all override and
// cache lookups.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
