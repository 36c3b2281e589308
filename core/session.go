package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Turn is one utterance in the session transcript.
type Turn struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the complete planning record for one conversation. It is safe
// for concurrent access, although the engine additionally serializes turns
// per session so tool results are never merged out of order.
//
// Contract:
//   - All mutation goes through the methods below; none are permitted once
//     the phase is terminal
//   - Getters return defensive copies so callers cannot corrupt state
//   - Clone performs deep copies for safe divergence in the store.
type Session struct {
	ID         string           `json:"id"`
	Phase      Phase            `json:"phase"`
	Request    PlanningRequest  `json:"request"`
	Venues     []VenueCandidate `json:"venues,omitempty"`
	Busy       AttendeeBusyMap  `json:"busy,omitempty"`
	Slots      []FreeSlot       `json:"slots,omitempty"`
	Proposals  []Proposal       `json:"proposals,omitempty"`
	Rejected   map[string]bool  `json:"rejected,omitempty"`
	Turns      int              `json:"turns"`
	Transcript []Turn           `json:"transcript,omitempty"`
	Created    time.Time        `json:"created"`
	Updated    time.Time        `json:"updated"`
	mu         sync.RWMutex
}

// NewSession creates a fresh session in the collecting phase.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:       id,
		Phase:    PhaseCollecting,
		Request:  NewPlanningRequest(),
		Busy:     NewAttendeeBusyMap(),
		Rejected: map[string]bool{},
		Created:  now,
		Updated:  now,
	}
}

// NewID generates a unique identifier for sessions, turns and proposals.
func NewID() string { return uuid.NewString() }

// ApplyFields merges one turn's extraction into the planning request.
func (s *Session) ApplyFields(f Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Phase.Terminal() {
		return ErrSessionClosed
	}
	s.Request.Apply(f)
	s.Updated = time.Now()
	return nil
}

// SetWindow stores the deterministically resolved search window.
func (s *Session) SetWindow(w Window) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Phase.Terminal() {
		return ErrSessionClosed
	}
	s.Request.Window = &w
	s.Updated = time.Now()
	return nil
}

// SetVenues replaces the candidate list with de-duplicated search results.
func (s *Session) SetVenues(venues []VenueCandidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Phase.Terminal() {
		return ErrSessionClosed
	}
	s.Venues = DedupeVenues(venues)
	s.Updated = time.Now()
	return nil
}

// SetBusy replaces the attendee busy map.
func (s *Session) SetBusy(busy AttendeeBusyMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Phase.Terminal() {
		return ErrSessionClosed
	}
	s.Busy = busy.Clone()
	s.Updated = time.Now()
	return nil
}

// SetSlots replaces the ranked free-slot candidates.
func (s *Session) SetSlots(slots []FreeSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Phase.Terminal() {
		return ErrSessionClosed
	}
	s.Slots = append([]FreeSlot(nil), slots...)
	s.Updated = time.Now()
	return nil
}

// Propose records a new outstanding proposal.
func (s *Session) Propose(venue VenueCandidate, slot FreeSlot) (Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Phase.Terminal() {
		return Proposal{}, ErrSessionClosed
	}
	p := Proposal{ID: NewID(), Venue: venue, Slot: slot, Status: ProposalProposed}
	s.Proposals = append(s.Proposals, p)
	s.Updated = time.Now()
	return p, nil
}

// OpenProposals returns the proposals still awaiting a decision.
func (s *Session) OpenProposals() []Proposal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var open []Proposal
	for _, p := range s.Proposals {
		if p.Status == ProposalProposed {
			open = append(open, p)
		}
	}
	return open
}

// UpdateProposal replaces the stored proposal with the same ID.
func (s *Session) UpdateProposal(p Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Phase == PhaseAbandoned {
		return ErrSessionClosed
	}
	for i := range s.Proposals {
		if s.Proposals[i].ID == p.ID {
			s.Proposals[i] = p
			s.Updated = time.Now()
			return nil
		}
	}
	return ErrAmbiguousConfirmation
}

// RejectPair excludes a (venue, slot) combination from future ranking for
// this session.
func (s *Session) RejectPair(p Proposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Rejected[p.PairKey()] = true
	s.Updated = time.Now()
}

// PairRejected reports whether the combination was declined earlier.
func (s *Session) PairRejected(venue VenueCandidate, slot FreeSlot) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Rejected[Proposal{Venue: venue, Slot: slot}.PairKey()]
}

// Transition moves the session to a new phase. Transitions out of a terminal
// phase are rejected.
func (s *Session) Transition(to Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Phase.Terminal() {
		return ErrSessionClosed
	}
	s.Phase = to
	s.Updated = time.Now()
	return nil
}

// CurrentPhase returns the phase under the read lock.
func (s *Session) CurrentPhase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Phase
}

// AddTurn appends an utterance to the transcript and, for user turns,
// advances the turn counter used for the session budget.
func (s *Session) AddTurn(role, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Transcript = append(s.Transcript, Turn{ID: NewID(), Role: role, Text: text, Timestamp: time.Now()})
	if role == "user" {
		s.Turns++
	}
	s.Updated = time.Now()
}

// History returns a defensive copy of the transcript.
func (s *Session) History() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Turn, len(s.Transcript))
	copy(out, s.Transcript)
	return out
}

// Snapshot returns a copy of the planning request under the read lock.
func (s *Session) Snapshot() PlanningRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Request.Clone()
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := &Session{
		ID:      s.ID,
		Phase:   s.Phase,
		Request: s.Request.Clone(),
		Busy:    s.Busy.Clone(),
		Turns:   s.Turns,
		Created: s.Created,
		Updated: s.Updated,
	}
	clone.Venues = append([]VenueCandidate(nil), s.Venues...)
	clone.Slots = append([]FreeSlot(nil), s.Slots...)
	clone.Proposals = append([]Proposal(nil), s.Proposals...)
	clone.Transcript = append([]Turn(nil), s.Transcript...)
	clone.Rejected = make(map[string]bool, len(s.Rejected))
	for k, v := range s.Rejected {
		clone.Rejected[k] = v
	}
	return clone
}

// SessionStore persists sessions across turns until they reach a terminal
// state.
type SessionStore interface {
	Create(id string) (*Session, error)
	Get(id string) (*Session, error)
	Save(sess *Session) error
}
