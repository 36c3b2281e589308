// Package extract maps free-form user utterances onto partial planning
// requests and dialogue intents. The language model performs recognition
// only; it never invents venues or free times, and date arithmetic is owned
// by the deterministic resolver in resolve.go.
package extract

import (
	"context"
	"time"

	"github.com/planmesh/planmesh/core"
)

// Intent classifies what the utterance does to a standing proposal, beyond
// any field content it carries.
type Intent int

const (
	// IntentNone carries field content only (or nothing).
	IntentNone Intent = iota
	// IntentConfirm accepts a standing proposal.
	IntentConfirm
	// IntentReject declines a standing proposal outright.
	IntentReject
	// IntentModify asks for a different venue or slot.
	IntentModify
	// IntentAbandon ends the conversation.
	IntentAbandon
)

// String returns the intent name.
func (i Intent) String() string {
	switch i {
	case IntentNone:
		return "none"
	case IntentConfirm:
		return "confirm"
	case IntentReject:
		return "reject"
	case IntentModify:
		return "modify"
	case IntentAbandon:
		return "abandon"
	default:
		return "unknown"
	}
}

// Result is the outcome of one extraction turn.
type Result struct {
	Fields core.Fields
	Intent Intent
	// Reference carries the venue name or slot description the user pointed
	// at when confirming or modifying, empty for bare affirmations.
	Reference string
	// Notes records the model's confidence remarks for logging.
	Notes string
}

// Extractor is the slot-extraction collaborator contract. Implementations
// must signal "unchanged" by omission and "explicitly cleared" only when the
// user negates a previously given value, and must return
// core.ErrExtractionAmbiguous when the utterance carries no actionable
// content at all.
type Extractor interface {
	Extract(ctx context.Context, utterance string, current core.PlanningRequest, now time.Time) (Result, error)
}
