package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arcticshore/pickups/internal/domain"
	"github.com/arcticshore/pickups/internal/upstream"
)

// Sub-booking statuses that still represent a live reservation. Anything
// else (CANCELLED, RESCHEDULED leftovers) is a superseded entry under the
// same parent id and must not produce a Booking.
var validStatuses = map[string]struct{}{
	"CONFIRMED":    {},
	"INVOICED":     {},
	"PAID_IN_FULL": {},
}

const combinedDateTimeLayout = "2006-01-02 15:04"

// Normalizer converts raw upstream reservations into canonical Bookings.
// It is stateless apart from the clock, which is injectable for tests.
type Normalizer struct {
	now func() time.Time
}

func New() *Normalizer {
	return &Normalizer{now: time.Now}
}

func NewWithClock(now func() time.Time) *Normalizer {
	return &Normalizer{now: now}
}

// Reservations normalizes a batch. A record that fails to yield a Booking is
// skipped, never aborts the batch.
func (n *Normalizer) Reservations(records []upstream.Reservation) []domain.Booking {
	bookings := make([]domain.Booking, 0, len(records))
	for _, r := range records {
		if b, ok := n.Reservation(r); ok {
			bookings = append(bookings, b)
		}
	}
	return bookings
}

// Reservation normalizes one parent record into zero or one Booking.
func (n *Normalizer) Reservation(r upstream.Reservation) (domain.Booking, bool) {
	valid := validSubBookings(r.Items)
	if len(valid) == 0 {
		return domain.Booking{}, false
	}

	// The first remaining valid sub-booking is the source of truth for tour
	// date/time and guest count.
	sub := valid[0]

	unpaid, due := paymentBalance(r)

	booking := domain.Booking{
		ID:               bookingID(r, n.now),
		CustomerName:     customerName(r.Customer),
		PickupPlaceName:  PickupPlace(r, sub),
		PickupTime:       n.pickupTime(r, sub),
		GuestCount:       guestCount(sub),
		Phone:            r.Customer.Phone,
		Email:            r.Customer.Email,
		BookingRef:       r.BookingID,
		ConfirmationCode: r.ConfirmationCode,
		Unpaid:           unpaid,
		AmountDue:        due,
	}
	return booking, true
}

func validSubBookings(items []upstream.SubBooking) []upstream.SubBooking {
	var valid []upstream.SubBooking
	for _, item := range items {
		status := strings.ToUpper(strings.TrimSpace(item.Status))
		if _, ok := validStatuses[status]; ok {
			valid = append(valid, item)
		}
	}
	return valid
}

// pickupTime prefers the explicit hour/minute pair combined with the
// sub-booking's date, then a combined date-time or epoch-millis field, and
// finally falls back to the current time. The fallback is a data-quality
// anomaly worth logging, not a fatal condition.
func (n *Normalizer) pickupTime(r upstream.Reservation, sub upstream.SubBooking) time.Time {
	if sub.PickupHour != nil && sub.PickupMinute != nil {
		if day, ok := subBookingDate(sub); ok {
			return time.Date(day.Year(), day.Month(), day.Day(), *sub.PickupHour, *sub.PickupMinute, 0, 0, time.UTC)
		}
	}
	if day, ok := subBookingDate(sub); ok {
		return day
	}

	logrus.WithFields(logrus.Fields{
		"booking_ref": r.BookingID,
	}).Warn("reservation has no usable pickup time, defaulting to now")
	return n.now()
}

func subBookingDate(sub upstream.SubBooking) (time.Time, bool) {
	if sub.StartDateTime != "" {
		if t, err := time.Parse(combinedDateTimeLayout, sub.StartDateTime); err == nil {
			return t.UTC(), true
		}
		if t, err := time.Parse(time.RFC3339, sub.StartDateTime); err == nil {
			return t.UTC(), true
		}
	}
	if sub.StartDate != nil {
		return time.UnixMilli(*sub.StartDate).UTC(), true
	}
	return time.Time{}, false
}

func guestCount(sub upstream.SubBooking) int {
	if sub.TotalParticipants < 1 {
		return 1
	}
	return sub.TotalParticipants
}

func customerName(c upstream.Customer) string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}

func bookingID(r upstream.Reservation, now func() time.Time) string {
	if r.BookingID != "" {
		return r.BookingID
	}
	return fmt.Sprintf("generated-%d", now().UnixMilli())
}
