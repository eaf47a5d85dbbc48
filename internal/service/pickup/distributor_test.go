package pickup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcticshore/pickups/internal/domain"
)

func TestDistribute_RoundRobin(t *testing.T) {
	guides := []domain.Guide{{ID: "g1", Name: "Kari"}, {ID: "g2", Name: "Lena"}}
	bookings := []domain.Booking{
		{ID: "b1", GuestCount: 2},
		{ID: "b2", GuestCount: 3},
		{ID: "b3", GuestCount: 1},
		{ID: "b4", GuestCount: 4},
	}

	placements := Distribute(bookings, guides, nil, 19)

	require.Len(t, placements, 4)
	assert.Equal(t, "g1", placements[0].Guide.ID)
	assert.Equal(t, "g2", placements[1].Guide.ID)
	assert.Equal(t, "g1", placements[2].Guide.ID)
	assert.Equal(t, "g2", placements[3].Guide.ID)
}

func TestDistribute_CapacitySkipWithoutSpillOver(t *testing.T) {
	guides := []domain.Guide{{ID: "g1", Name: "Kari"}, {ID: "g2", Name: "Lena"}}
	bookings := []domain.Booking{
		{ID: "b1", GuestCount: 18},
		{ID: "b2", GuestCount: 1},
		{ID: "b3", GuestCount: 5}, // candidate g1 is at 18, no spill-over to g2
		{ID: "b4", GuestCount: 1},
	}

	placements := Distribute(bookings, guides, nil, 19)

	require.Len(t, placements, 3)
	placed := map[string]string{}
	for _, p := range placements {
		placed[p.Booking.ID] = p.Guide.ID
	}
	assert.Equal(t, map[string]string{"b1": "g1", "b2": "g2", "b4": "g2"}, placed)
	assert.NotContains(t, placed, "b3")
}

func TestDistribute_SeededTotalsRespectCapacity(t *testing.T) {
	guides := []domain.Guide{{ID: "g1", Name: "Kari"}}
	bookings := []domain.Booking{{ID: "b1", GuestCount: 2}}

	placements := Distribute(bookings, guides, map[string]int{"g1": 18}, 19)

	assert.Empty(t, placements)
}

func TestDistribute_NoGuides(t *testing.T) {
	placements := Distribute([]domain.Booking{{ID: "b1", GuestCount: 1}}, nil, nil, 19)
	assert.Nil(t, placements)
}

func TestDistribute_CapacityInvariantHolds(t *testing.T) {
	guides := []domain.Guide{{ID: "g1"}, {ID: "g2"}, {ID: "g3"}}
	var bookings []domain.Booking
	for i := 0; i < 40; i++ {
		bookings = append(bookings, domain.Booking{ID: string(rune('a' + i)), GuestCount: 1 + i%6})
	}

	placements := Distribute(bookings, guides, nil, 19)

	totals := map[string]int{}
	for _, p := range placements {
		totals[p.Guide.ID] += p.Booking.GuestCount
	}
	for guideID, total := range totals {
		assert.LessOrEqual(t, total, 19, "guide %s over capacity", guideID)
	}
}
