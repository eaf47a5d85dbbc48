package domain

// Override records are operator-entered corrections stored independently of
// the upstream feed and re-applied on every reconciliation. Removal is always
// an explicit operation; overrides are never deleted implicitly.

type StatusOverride struct {
	BookingID string
	DateKey   string
	Arrived   bool
	NoShow    bool
}

type AssignmentOverride struct {
	BookingID string
	DateKey   string
	GuideID   string
	GuideName string
}

type PickupPlaceOverride struct {
	BookingID       string
	DateKey         string
	PickupPlaceName string
}

// OrderOverride is a guide's manually-chosen visiting order for one date,
// keyed by (guideID, dateKey) rather than booking id.
type OrderOverride struct {
	GuideID    string
	DateKey    string
	BookingIDs []string
}
