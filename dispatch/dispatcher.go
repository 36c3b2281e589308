// Package dispatch holds the thin adapters between the planner and the
// external collaborators. It owns per-call timeouts, the single bounded
// retry, concurrent fan-out of free/busy queries and normalization of
// results into session-compatible shapes. It keeps no per-session state.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/planmesh/planmesh/core"
	"github.com/planmesh/planmesh/logging"
)

// VenueSearcher is the venue-search collaborator contract.
type VenueSearcher interface {
	SearchVenues(ctx context.Context, cuisine, location string, limit int) ([]core.VenueCandidate, error)
}

// Calendar is the calendar collaborator contract. Both methods speak
// absolute instants, never local wall-clock text.
type Calendar interface {
	FreeBusy(ctx context.Context, attendee string, window core.Window) ([]core.BusyInterval, error)
	CreateEvent(ctx context.Context, req EventRequest) (string, error)
}

// EventRequest describes the event to create.
type EventRequest struct {
	Title       string
	Location    string
	Description string
	Start       time.Time
	End         time.Time
	Attendees   []string
}

// Options configure the Dispatcher.
type Options struct {
	// CallTimeout bounds every individual collaborator call.
	CallTimeout time.Duration
	// VenueLimit caps how many candidates a search may return.
	VenueLimit int
	// Logger receives structured call telemetry.
	Logger logging.Logger
}

// Dispatcher invokes the collaborators with validated arguments. Reads are
// idempotent and retried once on failure; event creation is also retried
// once at the transport level, while at-most-once semantics per proposal are
// enforced by the planner's booking-attempted flag.
type Dispatcher struct {
	venues VenueSearcher
	cal    Calendar

	callTimeout time.Duration
	venueLimit  int
	logger      logging.Logger
}

// NewDispatcher creates a Dispatcher over the given collaborators.
func NewDispatcher(venues VenueSearcher, cal Calendar, optFns ...func(o *Options)) *Dispatcher {
	opts := Options{CallTimeout: 15 * time.Second, VenueLimit: 5, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Dispatcher{
		venues:      venues,
		cal:         cal,
		callTimeout: opts.CallTimeout,
		venueLimit:  opts.VenueLimit,
		logger:      opts.Logger,
	}
}

// SearchVenues queries the venue collaborator and returns de-duplicated
// candidates in rank order. core.ErrNoVenues is returned on an empty result.
func (d *Dispatcher) SearchVenues(ctx context.Context, cuisine, location string) ([]core.VenueCandidate, error) {
	var found []core.VenueCandidate
	err := d.withRetry(ctx, "venue_search", func(callCtx context.Context) error {
		var err error
		found, err = d.venues.SearchVenues(callCtx, cuisine, location, d.venueLimit)
		return err
	})
	if err != nil {
		return nil, err
	}
	found = core.DedupeVenues(found)
	if len(found) == 0 {
		return nil, core.ErrNoVenues
	}
	return found, nil
}

// CollectBusy fans out one free/busy query per attendee concurrently and
// merges the results into an AttendeeBusyMap. Every attendee is registered
// in the map even with zero busy intervals. The first collaborator failure
// wins; remaining results are discarded.
func (d *Dispatcher) CollectBusy(ctx context.Context, attendees []string, window core.Window) (core.AttendeeBusyMap, error) {
	type answer struct {
		attendee  string
		intervals []core.BusyInterval
		err       error
	}

	answers := make(chan answer, len(attendees))
	var wg sync.WaitGroup
	for _, attendee := range attendees {
		wg.Add(1)
		go func(attendee string) {
			defer wg.Done()
			var intervals []core.BusyInterval
			err := d.withRetry(ctx, "free_busy", func(callCtx context.Context) error {
				var err error
				intervals, err = d.cal.FreeBusy(callCtx, attendee, window)
				return err
			})
			answers <- answer{attendee: attendee, intervals: intervals, err: err}
		}(attendee)
	}
	wg.Wait()
	close(answers)

	busy := core.NewAttendeeBusyMap()
	for a := range answers {
		if a.err != nil {
			return nil, a.err
		}
		busy.Ensure(a.attendee)
		for _, iv := range a.intervals {
			if err := busy.Insert(iv); err != nil {
				return nil, fmt.Errorf("normalize busy data: %w", err)
			}
		}
	}
	return busy, nil
}

// CreateEvent dispatches event creation for a confirmed proposal and returns
// the created event id.
func (d *Dispatcher) CreateEvent(ctx context.Context, attendees []string, venue core.VenueCandidate, slot core.FreeSlot) (string, error) {
	req := EventRequest{
		Title:       fmt.Sprintf("Team Dinner at %s", venue.Name),
		Location:    venue.Address,
		Description: "Team dinner arranged by the planning assistant.",
		Start:       slot.Start,
		End:         slot.End,
		Attendees:   attendees,
	}
	var eventID string
	err := d.withRetry(ctx, "create_event", func(callCtx context.Context) error {
		var err error
		eventID, err = d.cal.CreateEvent(callCtx, req)
		return err
	})
	if err != nil {
		return "", err
	}
	return eventID, nil
}

// toolCallLogger is satisfied by loggers that record structured tool
// telemetry, such as *logging.DialogueLogger.
type toolCallLogger interface {
	LogToolCall(tool string, dur time.Duration, success bool, err error)
}

// withRetry runs fn under the per-call timeout, retrying exactly once on
// failure. Failures are wrapped as CollaboratorError; the parent context
// being cancelled (user abandon) is never retried.
func (d *Dispatcher) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, d.callTimeout)
		start := time.Now()
		err := fn(callCtx)
		cancel()
		d.logToolCall(op, time.Since(start), attempt, err)

		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return core.NewCollaboratorError(op, errors.Is(ctx.Err(), context.DeadlineExceeded), ctx.Err())
		}
	}
	return core.NewCollaboratorError(op, errors.Is(lastErr, context.DeadlineExceeded), lastErr)
}

func (d *Dispatcher) logToolCall(op string, dur time.Duration, attempt int, err error) {
	if tl, ok := d.logger.(toolCallLogger); ok {
		tl.LogToolCall(op, dur, err == nil, err)
		return
	}
	if err == nil {
		d.logger.Debug("tool.call.success", "tool", op, "attempt", attempt+1, "duration_ms", dur.Milliseconds())
		return
	}
	d.logger.Warn("tool.call.failed", "tool", op, "attempt", attempt+1, "error", err.Error())
}
