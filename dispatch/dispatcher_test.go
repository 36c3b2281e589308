package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planmesh/planmesh/core"
	"github.com/planmesh/planmesh/logging"
)

type fakeVenues struct {
	mu      sync.Mutex
	results []core.VenueCandidate
	errs    []error // per-call script, nil entries succeed
	calls   int
}

func (f *fakeVenues) SearchVenues(ctx context.Context, cuisine, location string, limit int) ([]core.VenueCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := f.calls
	f.calls++
	if call < len(f.errs) && f.errs[call] != nil {
		return nil, f.errs[call]
	}
	if len(f.results) > limit {
		return f.results[:limit], nil
	}
	return f.results, nil
}

type fakeCalendar struct {
	mu         sync.Mutex
	busy       map[string][]core.BusyInterval
	busyErr    error
	eventErrs  []error
	eventCalls int
	created    []EventRequest
	delay      time.Duration
}

func (f *fakeCalendar) FreeBusy(ctx context.Context, attendee string, window core.Window) ([]core.BusyInterval, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busyErr != nil {
		return nil, f.busyErr
	}
	return f.busy[attendee], nil
}

func (f *fakeCalendar) CreateEvent(ctx context.Context, req EventRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := f.eventCalls
	f.eventCalls++
	if call < len(f.eventErrs) && f.eventErrs[call] != nil {
		return "", f.eventErrs[call]
	}
	f.created = append(f.created, req)
	return fmt.Sprintf("event-%d", call), nil
}

func testWindow() core.Window {
	return core.Window{
		Start: time.Date(2026, 3, 6, 17, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 6, 22, 0, 0, 0, time.UTC),
	}
}

func TestDispatcher_SearchVenuesDedupes(t *testing.T) {
	venues := &fakeVenues{results: []core.VenueCandidate{
		{Name: "Trattoria", Address: "12 Harbor St"},
		{Name: "TRATTORIA", Address: "12 harbor st"},
		{Name: "Momo House", Address: "88 Hill Rd"},
	}}
	d := NewDispatcher(venues, &fakeCalendar{})

	got, err := d.SearchVenues(context.Background(), "italian", "downtown")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestDispatcher_SearchVenuesEmptyResult(t *testing.T) {
	d := NewDispatcher(&fakeVenues{}, &fakeCalendar{})
	_, err := d.SearchVenues(context.Background(), "italian", "downtown")
	assert.ErrorIs(t, err, core.ErrNoVenues)
}

func TestDispatcher_SearchVenuesRetriesOnce(t *testing.T) {
	venues := &fakeVenues{
		results: []core.VenueCandidate{{Name: "Trattoria", Address: "1 St"}},
		errs:    []error{errors.New("transient"), nil},
	}
	d := NewDispatcher(venues, &fakeCalendar{})

	got, err := d.SearchVenues(context.Background(), "italian", "")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 2, venues.calls)
}

func TestDispatcher_SearchVenuesFailsAfterRetry(t *testing.T) {
	venues := &fakeVenues{errs: []error{errors.New("down"), errors.New("down")}}
	d := NewDispatcher(venues, &fakeCalendar{})

	_, err := d.SearchVenues(context.Background(), "italian", "")
	var collab *core.CollaboratorError
	require.ErrorAs(t, err, &collab)
	assert.Equal(t, "venue_search", collab.Op)
	assert.False(t, collab.Timeout)
	assert.Equal(t, 2, venues.calls)
}

func TestDispatcher_CallTimeoutSurfacesAsTimeout(t *testing.T) {
	cal := &fakeCalendar{delay: 200 * time.Millisecond}
	d := NewDispatcher(&fakeVenues{}, cal, func(o *Options) {
		o.CallTimeout = 10 * time.Millisecond
	})

	_, err := d.CollectBusy(context.Background(), []string{"a@x"}, testWindow())
	var collab *core.CollaboratorError
	require.ErrorAs(t, err, &collab)
	assert.Equal(t, "free_busy", collab.Op)
	assert.True(t, collab.Timeout)
}

func TestDispatcher_CollectBusyFansOut(t *testing.T) {
	w := testWindow()
	cal := &fakeCalendar{busy: map[string][]core.BusyInterval{
		"ana@x": {{Attendee: "ana@x", Start: w.Start.Add(time.Hour), End: w.Start.Add(2 * time.Hour)}},
		"ben@x": {
			{Attendee: "ben@x", Start: w.Start, End: w.Start.Add(30 * time.Minute)},
			{Attendee: "ben@x", Start: w.Start.Add(15 * time.Minute), End: w.Start.Add(45 * time.Minute)},
		},
	}}
	d := NewDispatcher(&fakeVenues{}, cal)

	busy, err := d.CollectBusy(context.Background(), []string{"ana@x", "ben@x", "free@x"}, w)
	require.NoError(t, err)

	// Every attendee is registered, busy or not.
	assert.Equal(t, []string{"ana@x", "ben@x", "free@x"}, busy.Attendees())
	assert.Empty(t, busy["free@x"])
	// Overlapping intervals are merged on insert.
	require.Len(t, busy["ben@x"], 1)
	assert.Equal(t, w.Start.Add(45*time.Minute), busy["ben@x"][0].End)
}

func TestDispatcher_CollectBusyFirstErrorWins(t *testing.T) {
	cal := &fakeCalendar{busyErr: errors.New("calendar down")}
	d := NewDispatcher(&fakeVenues{}, cal)

	_, err := d.CollectBusy(context.Background(), []string{"a@x", "b@x"}, testWindow())
	var collab *core.CollaboratorError
	require.ErrorAs(t, err, &collab)
	assert.Equal(t, "free_busy", collab.Op)
}

func TestDispatcher_CreateEventBuildsRequest(t *testing.T) {
	cal := &fakeCalendar{}
	d := NewDispatcher(&fakeVenues{}, cal)

	slot := core.FreeSlot{
		Start: time.Date(2026, 3, 6, 19, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 6, 20, 30, 0, 0, time.UTC),
	}
	venue := core.VenueCandidate{Name: "Trattoria Lucia", Address: "12 Harbor St"}

	id, err := d.CreateEvent(context.Background(), []string{"a@x", "b@x"}, venue, slot)
	require.NoError(t, err)
	assert.Equal(t, "event-0", id)

	require.Len(t, cal.created, 1)
	created := cal.created[0]
	assert.Equal(t, "Team Dinner at Trattoria Lucia", created.Title)
	assert.Equal(t, "12 Harbor St", created.Location)
	assert.Equal(t, slot.Start, created.Start)
	assert.Equal(t, slot.End, created.End)
	assert.Equal(t, []string{"a@x", "b@x"}, created.Attendees)
}

func TestDispatcher_CreateEventRetriesOnce(t *testing.T) {
	cal := &fakeCalendar{eventErrs: []error{errors.New("503"), nil}}
	d := NewDispatcher(&fakeVenues{}, cal)

	id, err := d.CreateEvent(context.Background(), []string{"a@x"},
		core.VenueCandidate{Name: "V"}, core.FreeSlot{Start: time.Now(), End: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, "event-1", id)
	assert.Equal(t, 2, cal.eventCalls)
}

func TestDispatcher_NoRetryAfterParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	venues := &fakeVenues{errs: []error{errors.New("fail")}}
	d := NewDispatcher(venues, &fakeCalendar{})

	_, err := d.SearchVenues(ctx, "italian", "")
	require.Error(t, err)
	assert.Equal(t, 1, venues.calls)
}

func TestDispatcher_DialogueLoggerReceivesToolTelemetry(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&logging.LoggerConfig{
		Level: logging.LogLevelDebug, Format: "json", Output: &buf, Component: "dispatch",
	})
	venues := &fakeVenues{results: []core.VenueCandidate{{Name: "Trattoria", Address: "12 Harbor St"}}}
	d := NewDispatcher(venues, &fakeCalendar{}, func(o *Options) {
		o.Logger = logger
	})

	_, err := d.SearchVenues(context.Background(), "italian", "downtown")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"Tool execution completed"`)
	assert.Contains(t, out, `"tool_name":"venue_search"`)
	assert.Contains(t, out, `"component":"dispatch"`)
}

func TestDispatcher_DialogueLoggerRecordsFailedCall(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&logging.LoggerConfig{
		Level: logging.LogLevelDebug, Format: "json", Output: &buf,
	})
	venues := &fakeVenues{errs: []error{errors.New("503 backend"), errors.New("503 backend")}}
	d := NewDispatcher(venues, &fakeCalendar{}, func(o *Options) {
		o.Logger = logger
	})

	_, err := d.SearchVenues(context.Background(), "italian", "downtown")
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"Tool execution failed"`)
	assert.Contains(t, out, `"error":"503 backend"`)
}
