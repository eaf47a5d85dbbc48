package normalize

import (
	"regexp"
	"strings"

	"github.com/arcticshore/pickups/internal/upstream"
)

const (
	// PickupPending is emitted when no step of the priority chain matched.
	PickupPending = "Pickup pending"
	// MeetOnLocation short-circuits the chain when the customer opted out
	// of pickup entirely.
	MeetOnLocation = "Meet on location"
)

// Phrases the upstream widget inserts when the customer postponed the
// choice. These must never win at any step of the chain.
var placeholderPhrases = []string{
	"i will select my pickup location later",
	"i will choose my pickup location later",
	"select pickup location",
	"pickup location to be decided",
	"to be decided",
	"tbd",
}

// Back-office staff write pickup corrections as free-text notes in the shape
// "pickup point changed from X to **Y**"; the bold segment is the new place.
var changedPickupNote = regexp.MustCompile(`(?i)pickup (?:point|place|location) changed from .+? to \*\*(.+?)\*\*`)

var pickupKeywords = []string{"pickup", "pick up", "pick-up"}

// PickupPlace extracts the canonical pickup location for a reservation via
// an ordered priority chain, stopping at the first non-placeholder match:
//
//  1. the sub-booking's structured pickup place title (plus address)
//  2. the same structured object at the parent record level
//  3. the free-text pickup description
//  4. a back-office "pickup point changed" note
//  5. pickup-related answers across the nested answer collections
//  6. the special-requests field, if it mentions pickup
//  7. the room number, formatted as "Room N"
//  8. "Pickup pending"
func PickupPlace(r upstream.Reservation, sub upstream.SubBooking) string {
	if sub.Pickup != nil && !*sub.Pickup {
		return MeetOnLocation
	}

	if title := placeTitle(sub.PickupPlace); title != "" {
		return title
	}
	if title := placeTitle(r.PickupPlace); title != "" {
		return title
	}
	if desc := cleanCandidate(sub.PickupDescription); desc != "" {
		return desc
	}
	if place := changedPickupFromNotes(r.Notes, sub.Notes); place != "" {
		return place
	}
	if answer := pickupFromAnswers(sub.Answers, sub.FieldAnswers); answer != "" {
		return answer
	}
	if requests := cleanCandidate(sub.SpecialRequests); requests != "" && mentionsPickup(requests) {
		return requests
	}
	if room := strings.TrimSpace(sub.RoomNumber); room != "" {
		return "Room " + room
	}
	return PickupPending
}

func placeTitle(p *upstream.Place) string {
	if p == nil {
		return ""
	}
	title := cleanCandidate(p.Title)
	if title == "" {
		return ""
	}
	if addr := strings.TrimSpace(p.Address); addr != "" {
		return title + ", " + addr
	}
	return title
}

func changedPickupFromNotes(noteSets ...[]upstream.Note) string {
	for _, notes := range noteSets {
		for _, note := range notes {
			if m := changedPickupNote.FindStringSubmatch(note.Body); m != nil {
				if place := cleanCandidate(m[1]); place != "" {
					return place
				}
			}
		}
	}
	return ""
}

func pickupFromAnswers(answerSets ...[]upstream.Answer) string {
	for _, answers := range answerSets {
		for _, a := range answers {
			if !mentionsPickup(a.Question) && !mentionsPickup(a.Group) {
				continue
			}
			if answer := cleanCandidate(a.Answer); answer != "" {
				return answer
			}
		}
	}
	return ""
}

func mentionsPickup(s string) bool {
	lower := strings.ToLower(s)
	for _, kw := range pickupKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// cleanCandidate trims a candidate value and rejects known placeholders.
func cleanCandidate(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}
	lower := strings.ToLower(trimmed)
	for _, placeholder := range placeholderPhrases {
		if lower == placeholder {
			return ""
		}
	}
	return trimmed
}
