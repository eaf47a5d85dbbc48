package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcticshore/pickups/internal/domain"
)

func TestApply_MergesOverrideLayers(t *testing.T) {
	bookings := []domain.Booking{
		{ID: "b1", CustomerName: "Anna", PickupPlaceName: "Harbour Hotel"},
		{ID: "b2", CustomerName: "Bjorn", PickupPlaceName: "City Hall"},
	}

	merged := Apply(bookings, Overrides{
		Statuses: map[string]domain.StatusOverride{
			"b1": {BookingID: "b1", Arrived: true},
		},
		Assignments: map[string]domain.AssignmentOverride{
			"b2": {BookingID: "b2", GuideID: "g1", GuideName: "Kari"},
		},
		PickupPlaces: map[string]domain.PickupPlaceOverride{
			"b1": {BookingID: "b1", PickupPlaceName: "Aurora Lodge"},
		},
	})

	require.Len(t, merged, 2)
	// Alphabetical by pickup place: Aurora Lodge (b1) before City Hall (b2).
	assert.Equal(t, "b1", merged[0].ID)
	assert.True(t, merged[0].Arrived)
	assert.Equal(t, "Aurora Lodge", merged[0].PickupPlaceName)
	assert.Equal(t, "g1", merged[1].GuideID)
	assert.Equal(t, "Kari", merged[1].GuideName)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	bookings := []domain.Booking{{ID: "b1", PickupPlaceName: "Original"}}

	Apply(bookings, Overrides{
		PickupPlaces: map[string]domain.PickupPlaceOverride{
			"b1": {BookingID: "b1", PickupPlaceName: "Corrected"},
		},
	})

	assert.Equal(t, "Original", bookings[0].PickupPlaceName)
}

func TestApplyOrder_Reconstruction(t *testing.T) {
	b1 := domain.Booking{ID: "b1"}
	b2 := domain.Booking{ID: "b2"}
	b3 := domain.Booking{ID: "b3"}

	testCases := []struct {
		name     string
		bookings []domain.Booking
		saved    []string
		wantIDs  []string
	}{
		{
			name:     "saved order respected, new bookings appended",
			bookings: []domain.Booking{b1, b2, b3},
			saved:    []string{"b2", "b1"},
			wantIDs:  []string{"b2", "b1", "b3"},
		},
		{
			name:     "missing saved ids silently dropped",
			bookings: []domain.Booking{b1, b2},
			saved:    []string{"b2", "b4"},
			wantIDs:  []string{"b2", "b1"},
		},
		{
			name:     "no saved order keeps input order",
			bookings: []domain.Booking{b1, b2},
			saved:    nil,
			wantIDs:  []string{"b1", "b2"},
		},
		{
			name:     "all saved ids gone",
			bookings: []domain.Booking{b3},
			saved:    []string{"b1", "b2"},
			wantIDs:  []string{"b3"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ordered := ApplyOrder(tc.bookings, tc.saved)
			ids := make([]string, 0, len(ordered))
			for _, b := range ordered {
				ids = append(ids, b.ID)
			}
			assert.Equal(t, tc.wantIDs, ids)
		})
	}
}

func TestForGuide(t *testing.T) {
	bookings := []domain.Booking{
		{ID: "b1", GuideID: "g1"},
		{ID: "b2", GuideID: "g2"},
		{ID: "b3", GuideID: "g1"},
		{ID: "b4"},
	}

	subset := ForGuide(bookings, "g1")

	require.Len(t, subset, 2)
	assert.Equal(t, "b1", subset[0].ID)
	assert.Equal(t, "b3", subset[1].ID)
}

func TestBuildGuideLists(t *testing.T) {
	guides := []domain.Guide{{ID: "g1", Name: "Kari"}, {ID: "g2", Name: "Lena"}}
	bookings := []domain.Booking{
		{ID: "b1", GuideID: "g1", GuideName: "Kari", GuestCount: 2},
		{ID: "b2", GuideID: "g1", GuideName: "Kari", GuestCount: 3},
		{ID: "b3", GuideID: "g3", GuideName: "Former Guide", GuestCount: 1},
		{ID: "b4", GuestCount: 4},
	}

	lists := BuildGuideLists(bookings, guides, "2026-03-20")

	require.Len(t, lists, 3)
	assert.Equal(t, 5, lists[0].Passengers)
	assert.Len(t, lists[0].Bookings, 2)
	assert.Equal(t, 0, lists[1].Passengers)
	// A booking naming a guide outside the roster still lands in exactly one list.
	assert.Equal(t, "g3", lists[2].GuideID)
	assert.Equal(t, 1, lists[2].Passengers)

	// Every assigned booking appears in exactly one list.
	seen := map[string]int{}
	for _, list := range lists {
		for _, b := range list.Bookings {
			seen[b.ID]++
		}
	}
	assert.Equal(t, map[string]int{"b1": 1, "b2": 1, "b3": 1}, seen)
}

func TestUnassigned(t *testing.T) {
	bookings := []domain.Booking{
		{ID: "b1", GuideID: "g1"},
		{ID: "b2"},
	}

	rest := Unassigned(bookings)

	require.Len(t, rest, 1)
	assert.Equal(t, "b2", rest[0].ID)
}
