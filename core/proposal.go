package core

// ProposalStatus tracks the lifecycle of a (venue, slot) offer.
type ProposalStatus int

const (
	// ProposalNone is the zero status before any offer exists.
	ProposalNone ProposalStatus = iota
	// ProposalProposed means the offer is awaiting a user decision.
	ProposalProposed
	// ProposalConfirmed means the user accepted and booking may start.
	ProposalConfirmed
	// ProposalBooked means the calendar event was created.
	ProposalBooked
	// ProposalRejected means the user declined the offer.
	ProposalRejected
)

// String returns the status name.
func (s ProposalStatus) String() string {
	switch s {
	case ProposalNone:
		return "none"
	case ProposalProposed:
		return "proposed"
	case ProposalConfirmed:
		return "confirmed"
	case ProposalBooked:
		return "booked"
	case ProposalRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Proposal is a specific (venue, slot) pair offered to the user. The
// BookingAttempted flag guarantees createEvent is dispatched at most once per
// confirmed proposal even when the conversation turn is retried.
type Proposal struct {
	ID               string         `json:"id"`
	Venue            VenueCandidate `json:"venue"`
	Slot             FreeSlot       `json:"slot"`
	Status           ProposalStatus `json:"status"`
	BookingAttempted bool           `json:"booking_attempted"`
	EventID          string         `json:"event_id,omitempty"`
}

// PairKey identifies the (venue, slot) combination for per-session exclusion
// of rejected offers.
func (p Proposal) PairKey() string {
	return p.Venue.Identity() + "|" + p.Slot.Start.UTC().Format("2006-01-02T15:04:05Z07:00")
}
