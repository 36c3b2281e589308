package core

import (
	"errors"
	"testing"
	"time"
)

func sampleVenue(name string) VenueCandidate {
	return VenueCandidate{Name: name, Address: "1 Main St"}
}

func sampleSlot(hour int) FreeSlot {
	start := time.Date(2026, 3, 6, hour, 0, 0, 0, time.UTC)
	return FreeSlot{Start: start, End: start.Add(90 * time.Minute), SegmentEnd: start.Add(2 * time.Hour)}
}

func TestSession_LifecycleAndClone(t *testing.T) {
	s := NewSession("s1")
	if s.CurrentPhase() != PhaseCollecting {
		t.Fatalf("new session phase = %s", s.CurrentPhase())
	}

	if err := s.ApplyFields(Fields{AddAttendees: []string{"a@x"}}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	clone := s.Clone()
	if clone == s {
		t.Error("Clone should be a different pointer")
	}
	_ = clone.ApplyFields(Fields{AddAttendees: []string{"b@x"}})
	if len(s.Snapshot().Attendees) != 1 {
		t.Error("original should not see clone's attendee")
	}
}

func TestSession_TerminalPhaseRejectsMutation(t *testing.T) {
	s := NewSession("s1")
	if err := s.Transition(PhaseAbandoned); err != nil {
		t.Fatalf("transition: %v", err)
	}

	if err := s.ApplyFields(Fields{AddAttendees: []string{"a@x"}}); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("ApplyFields err = %v", err)
	}
	if err := s.Transition(PhaseCollecting); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Transition err = %v", err)
	}
	if _, err := s.Propose(sampleVenue("V"), sampleSlot(19)); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Propose err = %v", err)
	}
}

func TestSession_ProposalFlow(t *testing.T) {
	s := NewSession("s1")
	p, err := s.Propose(sampleVenue("Trattoria"), sampleSlot(19))
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if p.ID == "" || p.Status != ProposalProposed {
		t.Fatalf("proposal = %+v", p)
	}

	open := s.OpenProposals()
	if len(open) != 1 || open[0].ID != p.ID {
		t.Fatalf("open = %+v", open)
	}

	p.Status = ProposalConfirmed
	if err := s.UpdateProposal(p); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(s.OpenProposals()) != 0 {
		t.Error("confirmed proposal still open")
	}

	unknown := Proposal{ID: "missing"}
	if err := s.UpdateProposal(unknown); err == nil {
		t.Error("expected error for unknown proposal id")
	}
}

func TestSession_RejectedPairExclusion(t *testing.T) {
	s := NewSession("s1")
	venue := sampleVenue("Trattoria")
	slot := sampleSlot(19)

	if s.PairRejected(venue, slot) {
		t.Fatal("fresh pair should not be rejected")
	}
	p, _ := s.Propose(venue, slot)
	s.RejectPair(p)

	if !s.PairRejected(venue, slot) {
		t.Error("rejected pair not excluded")
	}
	// Same venue at a different time stays available.
	if s.PairRejected(venue, sampleSlot(21)) {
		t.Error("different slot wrongly excluded")
	}
	// Different venue at the same time stays available.
	if s.PairRejected(sampleVenue("Momo House"), slot) {
		t.Error("different venue wrongly excluded")
	}
}

func TestSession_TurnBudgetCountsUserTurnsOnly(t *testing.T) {
	s := NewSession("s1")
	s.AddTurn("user", "hello")
	s.AddTurn("assistant", "hi")
	s.AddTurn("user", "plan a dinner")

	if s.Turns != 2 {
		t.Errorf("turns = %d, want 2", s.Turns)
	}
	if got := s.History(); len(got) != 3 {
		t.Errorf("transcript length = %d", len(got))
	}
}

func TestDedupeVenues(t *testing.T) {
	in := []VenueCandidate{
		{Name: "Trattoria Lucia", Address: "12 Harbor St"},
		{Name: "trattoria lucia", Address: "12 HARBOR ST"},
		{Name: "Trattoria Lucia", Address: "99 Other Rd"},
	}
	out := DedupeVenues(in)
	if len(out) != 2 {
		t.Fatalf("deduped = %+v", out)
	}
	if out[0].Name != "Trattoria Lucia" || out[1].Address != "99 Other Rd" {
		t.Errorf("order not preserved: %+v", out)
	}
}
