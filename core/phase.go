package core

// Phase is the planner's dialogue state for one session.
type Phase int

const (
	// PhaseCollecting gathers required fields via clarifying questions.
	PhaseCollecting Phase = iota
	// PhaseSearching runs venue search and free/busy queries.
	PhaseSearching
	// PhaseAwaitingConfirmation has a standing proposal pending a decision.
	PhaseAwaitingConfirmation
	// PhaseBooking dispatches event creation for a confirmed proposal.
	PhaseBooking
	// PhaseDone is terminal: the event was booked.
	PhaseDone
	// PhaseAbandoned is terminal: explicit exit or turn budget exceeded.
	PhaseAbandoned
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseCollecting:
		return "COLLECTING"
	case PhaseSearching:
		return "SEARCHING"
	case PhaseAwaitingConfirmation:
		return "AWAITING_CONFIRMATION"
	case PhaseBooking:
		return "BOOKING"
	case PhaseDone:
		return "DONE"
	case PhaseAbandoned:
		return "ABANDONED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no further session mutation is permitted.
func (p Phase) Terminal() bool { return p == PhaseDone || p == PhaseAbandoned }
