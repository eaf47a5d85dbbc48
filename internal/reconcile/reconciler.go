package reconcile

import (
	"sort"
	"strings"

	"github.com/arcticshore/pickups/internal/domain"
)

// Overrides bundles the three per-booking override layers loaded for one
// date key. Missing layers are just empty maps; reconciliation proceeds with
// defaults.
type Overrides struct {
	Statuses     map[string]domain.StatusOverride
	Assignments  map[string]domain.AssignmentOverride
	PickupPlaces map[string]domain.PickupPlaceOverride
}

// Apply merges freshly normalized bookings with the override layers, in
// order: status, assignment, pickup place. The result is a new slice sorted
// alphabetically by pickup place, the default visiting order. Input bookings
// are never mutated in place.
func Apply(bookings []domain.Booking, o Overrides) []domain.Booking {
	merged := make([]domain.Booking, len(bookings))
	copy(merged, bookings)

	for i := range merged {
		if status, ok := o.Statuses[merged[i].ID]; ok {
			merged[i].Arrived = status.Arrived
			merged[i].NoShow = status.NoShow
		}
		if assignment, ok := o.Assignments[merged[i].ID]; ok {
			merged[i].GuideID = assignment.GuideID
			merged[i].GuideName = assignment.GuideName
		}
		if place, ok := o.PickupPlaces[merged[i].ID]; ok {
			merged[i].PickupPlaceName = place.PickupPlaceName
		}
	}

	SortAlphabetical(merged)
	return merged
}

// SortAlphabetical orders bookings by pickup place, then customer name for a
// stable tiebreak.
func SortAlphabetical(bookings []domain.Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		a := strings.ToLower(bookings[i].PickupPlaceName)
		b := strings.ToLower(bookings[j].PickupPlaceName)
		if a != b {
			return a < b
		}
		return strings.ToLower(bookings[i].CustomerName) < strings.ToLower(bookings[j].CustomerName)
	})
}

// ForGuide filters the reconciled set down to one guide's bookings.
func ForGuide(bookings []domain.Booking, guideID string) []domain.Booking {
	subset := make([]domain.Booking, 0)
	for _, b := range bookings {
		if b.GuideID == guideID {
			subset = append(subset, b)
		}
	}
	return subset
}

// ApplyOrder reorders a guide's subset to match a saved id sequence. Saved
// ids no longer present are silently dropped (cancelled bookings); bookings
// absent from the saved order are appended at the end (newly added). Never
// fails on a missing id.
func ApplyOrder(bookings []domain.Booking, savedIDs []string) []domain.Booking {
	if len(savedIDs) == 0 {
		return bookings
	}

	byID := make(map[string]domain.Booking, len(bookings))
	for _, b := range bookings {
		byID[b.ID] = b
	}

	ordered := make([]domain.Booking, 0, len(bookings))
	placed := make(map[string]struct{}, len(savedIDs))
	for _, id := range savedIDs {
		if b, ok := byID[id]; ok {
			ordered = append(ordered, b)
			placed[id] = struct{}{}
		}
	}
	for _, b := range bookings {
		if _, ok := placed[b.ID]; !ok {
			ordered = append(ordered, b)
		}
	}
	return ordered
}

// BuildGuideLists recomputes the derived per-guide lists from the reconciled
// bookings. Every assigned booking lands in exactly one list: the roster
// first, then any guide seen only on bookings (an assignment override naming
// a guide the roster no longer carries).
func BuildGuideLists(bookings []domain.Booking, guides []domain.Guide, dateKey string) []domain.GuideAssignmentList {
	lists := make([]domain.GuideAssignmentList, 0, len(guides))
	index := make(map[string]int, len(guides))
	for _, g := range guides {
		index[g.ID] = len(lists)
		lists = append(lists, domain.GuideAssignmentList{GuideID: g.ID, GuideName: g.Name, Bookings: []domain.Booking{}, DateKey: dateKey})
	}

	for _, b := range bookings {
		if !b.Assigned() {
			continue
		}
		i, ok := index[b.GuideID]
		if !ok {
			index[b.GuideID] = len(lists)
			i = len(lists)
			lists = append(lists, domain.GuideAssignmentList{GuideID: b.GuideID, GuideName: b.GuideName, Bookings: []domain.Booking{}, DateKey: dateKey})
		}
		lists[i].Bookings = append(lists[i].Bookings, b)
		lists[i].Passengers += b.GuestCount
	}
	return lists
}

// Unassigned returns the bookings not yet placed with any guide.
func Unassigned(bookings []domain.Booking) []domain.Booking {
	rest := make([]domain.Booking, 0)
	for _, b := range bookings {
		if !b.Assigned() {
			rest = append(rest, b)
		}
	}
	return rest
}
