package pickup

import "github.com/arcticshore/pickups/internal/domain"

// Placement pairs one booking with the guide it was distributed to.
type Placement struct {
	Booking domain.Booking
	Guide   domain.Guide
}

// Distribute spreads unassigned bookings across guides: bookings in input
// order, guides round-robin. A booking whose guest count would push its
// candidate guide past maxPassengers is skipped for that guide and stays
// unassigned; there is no spill-over search to another guide. seatTotals
// seeds each guide's already-carried passenger count so re-distribution
// never violates capacity.
func Distribute(unassigned []domain.Booking, guides []domain.Guide, seatTotals map[string]int, maxPassengers int) []Placement {
	if len(guides) == 0 {
		return nil
	}

	totals := make(map[string]int, len(guides))
	for id, n := range seatTotals {
		totals[id] = n
	}

	var placements []Placement
	for i, b := range unassigned {
		g := guides[i%len(guides)]
		if totals[g.ID]+b.GuestCount > maxPassengers {
			continue
		}
		totals[g.ID] += b.GuestCount
		placements = append(placements, Placement{Booking: b, Guide: g})
	}
	return placements
}
