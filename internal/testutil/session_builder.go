package testutil

import (
	"time"

	"github.com/planmesh/planmesh/core"
)

// SessionBuilder helps construct sessions with fluent chaining for tests.
// Example:
//
//	sess := NewSessionBuilder("sess-1").Attendees("a@x.com").Place("", "italian").Build()
type SessionBuilder struct {
	id     string
	phase  core.Phase
	fields core.Fields
	window *core.Window
	venues []core.VenueCandidate
	busy   core.AttendeeBusyMap
	slots  []core.FreeSlot
}

// NewSessionBuilder creates a new builder for a session with the given id.
// Use chainable methods then call Build.
func NewSessionBuilder(id string) *SessionBuilder {
	return &SessionBuilder{id: id, phase: core.PhaseCollecting, busy: core.NewAttendeeBusyMap()}
}

// Phase sets the phase the built session starts in (chainable).
func (b *SessionBuilder) Phase(p core.Phase) *SessionBuilder {
	b.phase = p
	return b
}

// Attendees adds attendee emails to the planning request (chainable).
func (b *SessionBuilder) Attendees(emails ...string) *SessionBuilder {
	b.fields.AddAttendees = append(b.fields.AddAttendees, emails...)
	return b
}

// Place sets location and cuisine on the planning request (chainable).
func (b *SessionBuilder) Place(location, cuisine string) *SessionBuilder {
	if location != "" {
		b.fields.Location = &location
	}
	if cuisine != "" {
		b.fields.Cuisine = &cuisine
	}
	return b
}

// Hint sets the raw date/time hint (chainable).
func (b *SessionBuilder) Hint(hint string) *SessionBuilder {
	b.fields.DateTimeHint = &hint
	return b
}

// TeamSize sets the team size (chainable).
func (b *SessionBuilder) TeamSize(n int) *SessionBuilder {
	b.fields.TeamSize = &n
	return b
}

// Window sets the resolved search window directly, bypassing hint
// resolution (chainable).
func (b *SessionBuilder) Window(start, end time.Time) *SessionBuilder {
	b.window = &core.Window{Start: start, End: end}
	return b
}

// Venues seeds the cached venue candidates (chainable).
func (b *SessionBuilder) Venues(venues ...core.VenueCandidate) *SessionBuilder {
	b.venues = append(b.venues, venues...)
	return b
}

// Busy inserts a busy interval for an attendee (chainable).
func (b *SessionBuilder) Busy(attendee string, start, end time.Time) *SessionBuilder {
	b.busy.Ensure(attendee)
	_ = b.busy.Insert(core.BusyInterval{Attendee: attendee, Start: start, End: end})
	return b
}

// Slots seeds the cached free slots (chainable).
func (b *SessionBuilder) Slots(slots ...core.FreeSlot) *SessionBuilder {
	b.slots = append(b.slots, slots...)
	return b
}

// Build returns a *core.Session with the accumulated state applied through
// the session's own mutation methods.
func (b *SessionBuilder) Build() *core.Session {
	s := core.NewSession(b.id)
	_ = s.ApplyFields(b.fields)
	if b.window != nil {
		_ = s.SetWindow(*b.window)
	}
	if len(b.venues) > 0 {
		_ = s.SetVenues(b.venues)
	}
	if len(b.busy) > 0 {
		_ = s.SetBusy(b.busy)
	}
	if len(b.slots) > 0 {
		_ = s.SetSlots(b.slots)
	}
	if b.phase != core.PhaseCollecting {
		_ = s.Transition(b.phase)
	}
	return s
}

// Day returns a time on the given date in UTC, a shorthand for busy and
// window fixtures.
func Day(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

// Slot builds a FreeSlot whose segment ends at segEnd.
func Slot(start, end, segEnd time.Time) core.FreeSlot {
	return core.FreeSlot{Start: start, End: end, SegmentEnd: segEnd}
}

// Venue builds a minimal venue candidate fixture.
func Venue(name, address string) core.VenueCandidate {
	return core.VenueCandidate{Name: name, Address: address}
}
