package upstream

// Typed representation of the reservation platform's search payload. The
// upstream shape is deeply inconsistent, so every field that may be absent is
// optional; parsing happens eagerly into this structure and all heuristics
// downstream operate on typed fields, never on raw maps.

type SearchResponse struct {
	Items     []Reservation `json:"items"`
	TotalHits int           `json:"totalHits"`
}

// Reservation is one parent record. A reschedule produces a cancelled
// original plus a new valid sub-booking under the same parent, so Items may
// hold superseded entries alongside the live one.
type Reservation struct {
	BookingID        string       `json:"bookingId"`
	ConfirmationCode string       `json:"confirmationCode"`
	Customer         Customer     `json:"customer"`
	CreationDate     *int64       `json:"creationDate"`
	Items            []SubBooking `json:"items"`
	PickupPlace      *Place       `json:"pickupPlace"`
	Notes            []Note       `json:"notes"`
	PaymentStatus    string       `json:"paymentStatus"`
	TotalPrice       *float64     `json:"totalPrice"`
	PaidAmount       *float64     `json:"paidAmount"`
	AmountDue        *float64     `json:"amountDue"`
	Invoice          *Invoice     `json:"invoice"`
}

type Customer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phoneNumber"`
	Email     string `json:"email"`
}

type SubBooking struct {
	Status            string   `json:"status"`
	StartDate         *int64   `json:"startDate"`
	StartDateTime     string   `json:"startDateTime"`
	PickupHour        *int     `json:"pickupHour"`
	PickupMinute      *int     `json:"pickupMinute"`
	TotalParticipants int      `json:"totalParticipants"`
	Pickup            *bool    `json:"pickup"`
	PickupPlace       *Place   `json:"pickupPlace"`
	PickupDescription string   `json:"pickupPlaceDescription"`
	Answers           []Answer `json:"answers"`
	FieldAnswers      []Answer `json:"fieldAnswers"`
	SpecialRequests   string   `json:"specialRequests"`
	RoomNumber        string   `json:"roomNumber"`
	Notes             []Note   `json:"notes"`
}

type Place struct {
	Title   string `json:"title"`
	Address string `json:"address"`
}

type Note struct {
	Body string `json:"body"`
}

type Answer struct {
	Question string `json:"question"`
	Group    string `json:"group"`
	Answer   string `json:"answer"`
}

type Invoice struct {
	TotalPrice *float64 `json:"totalPrice"`
	PaidAmount *float64 `json:"paidAmount"`
	Total      *Money   `json:"total"`
	Paid       *Money   `json:"paid"`
}

type Money struct {
	Amount *float64 `json:"amount"`
}
