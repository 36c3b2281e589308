package core

import (
	"errors"
	"fmt"
)

var (
	// ErrExtractionAmbiguous is returned when an utterance cannot be parsed
	// into any recognized field and carries no actionable content. The
	// planner treats it as "no new information" and re-asks.
	ErrExtractionAmbiguous = errors.New("utterance carries no recognizable planning content")

	// ErrNoVenues is returned when the venue search produced zero candidates
	// after de-duplication.
	ErrNoVenues = errors.New("no venues matched the search criteria")

	// ErrNoCommonSlot is returned when no free window of the requested
	// duration exists for all attendees inside the search window.
	ErrNoCommonSlot = errors.New("no common free slot for all attendees")

	// ErrAmbiguousConfirmation is returned when a bare affirmation cannot be
	// bound to a single outstanding proposal.
	ErrAmbiguousConfirmation = errors.New("confirmation does not identify a single proposal")

	// ErrSessionClosed is returned when a mutation is attempted on a session
	// that already reached a terminal phase.
	ErrSessionClosed = errors.New("session has reached a terminal state")
)

// CollaboratorError wraps a failure of an external collaborator (model,
// venue search, calendar). Timeout distinguishes deadline expiry from other
// transport or service failures; both are retried once by the dispatcher
// before being surfaced.
type CollaboratorError struct {
	Op      string // "venue_search", "free_busy", "create_event", "extract"
	Timeout bool
	Err     error
}

func (e *CollaboratorError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("collaborator %s timed out: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("collaborator %s unavailable: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// NewCollaboratorError creates a CollaboratorError for the given operation.
func NewCollaboratorError(op string, timeout bool, err error) *CollaboratorError {
	return &CollaboratorError{Op: op, Timeout: timeout, Err: err}
}

// BookingError reports that event creation failed after retry exhaustion.
// The session keeps its proposal intact so the user can retry or pick an
// alternative.
type BookingError struct {
	Attempts int
	Err      error
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("booking failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *BookingError) Unwrap() error { return e.Err }
