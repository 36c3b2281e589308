// Package gcal adapts the Google Calendar v3 API to planmesh's calendar
// collaborator contract: free/busy queries per attendee and event creation
// with invitations. OAuth token lifecycle is the caller's concern; the
// client only consumes a ready token source.
package gcal

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/planmesh/planmesh/core"
	"github.com/planmesh/planmesh/dispatch"
)

// Client wraps the Google Calendar service.
type Client struct {
	svc        *calendar.Service
	calendarID string
	timeZone   string
}

// Options configure the calendar client.
type Options struct {
	// CalendarID is the calendar events are inserted into.
	CalendarID string
	// TimeZone names the zone stamped onto created events.
	TimeZone string
}

// NewClient builds a Client from an OAuth2 token source.
func NewClient(ctx context.Context, ts oauth2.TokenSource, optFns ...func(o *Options)) (*Client, error) {
	svc, err := calendar.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return NewClientFromService(svc, optFns...), nil
}

// NewClientFromService wraps an existing calendar service.
func NewClientFromService(svc *calendar.Service, optFns ...func(o *Options)) *Client {
	opts := Options{CalendarID: "primary", TimeZone: "UTC"}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{svc: svc, calendarID: opts.CalendarID, timeZone: opts.TimeZone}
}

// FreeBusy returns the attendee's busy intervals inside the window.
func (c *Client) FreeBusy(ctx context.Context, attendee string, window core.Window) ([]core.BusyInterval, error) {
	query := &calendar.FreeBusyRequest{
		TimeMin: window.Start.Format(time.RFC3339),
		TimeMax: window.End.Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: attendee}},
	}

	result, err := c.svc.Freebusy.Query(query).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("freebusy query for %s: %w", attendee, err)
	}

	var intervals []core.BusyInterval
	for _, cal := range result.Calendars {
		for _, e := range cal.Errors {
			return nil, fmt.Errorf("freebusy query for %s: %s", attendee, e.Reason)
		}
		for _, busy := range cal.Busy {
			start, err := time.Parse(time.RFC3339, busy.Start)
			if err != nil {
				return nil, fmt.Errorf("parse busy start %q: %w", busy.Start, err)
			}
			end, err := time.Parse(time.RFC3339, busy.End)
			if err != nil {
				return nil, fmt.Errorf("parse busy end %q: %w", busy.End, err)
			}
			intervals = append(intervals, core.BusyInterval{Attendee: attendee, Start: start, End: end})
		}
	}
	return intervals, nil
}

// CreateEvent inserts the dinner event and sends invitations to every
// attendee. Reminder overrides follow the house convention: an email a day
// ahead and a popup ten minutes before.
func (c *Client) CreateEvent(ctx context.Context, req dispatch.EventRequest) (string, error) {
	event := &calendar.Event{
		Summary:     req.Title,
		Location:    req.Location,
		Description: req.Description,
		Start:       &calendar.EventDateTime{DateTime: req.Start.Format(time.RFC3339), TimeZone: c.timeZone},
		End:         &calendar.EventDateTime{DateTime: req.End.Format(time.RFC3339), TimeZone: c.timeZone},
		Reminders: &calendar.EventReminders{
			UseDefault: false,
			Overrides: []*calendar.EventReminder{
				{Method: "email", Minutes: 24 * 60},
				{Method: "popup", Minutes: 10},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}
	for _, email := range req.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: email})
	}

	created, err := c.svc.Events.Insert(c.calendarID, event).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}
	return created.Id, nil
}
