package core

import (
	"strings"
	"time"
)

// DefaultDuration is assumed for the dinner when the user never states one.
const DefaultDuration = 90 * time.Minute

// Field names used for completeness reporting and clarifying questions.
const (
	FieldAttendees = "attendees"
	FieldPlace     = "location_or_cuisine"
	FieldDateTime  = "date_time"
	FieldTeamSize  = "team_size"
)

// PlanningRequest is the mutable planning record for one conversation. It is
// owned exclusively by the Session; all mutation goes through Apply so a
// field set in an earlier turn is never silently regressed to empty.
type PlanningRequest struct {
	TeamSize     int           `json:"team_size,omitempty"` // 0 = unset
	Location     string        `json:"location,omitempty"`
	Cuisine      string        `json:"cuisine,omitempty"`
	DateTimeHint string        `json:"date_time_hint,omitempty"`
	Window       *Window       `json:"resolved_window,omitempty"`
	Duration     time.Duration `json:"duration"`
	Attendees    []string      `json:"attendees,omitempty"` // unique, insertion ordered
}

// NewPlanningRequest returns an empty request with the default duration.
func NewPlanningRequest() PlanningRequest {
	return PlanningRequest{Duration: DefaultDuration}
}

// Fields is a partial PlanningRequest produced by one extraction turn.
// A nil pointer means "the utterance did not mention this field"; the Clear*
// flags signal that the user explicitly negated a previously given value.
// The two must never be conflated.
type Fields struct {
	TeamSize     *int
	Location     *string
	Cuisine      *string
	DateTimeHint *string
	Duration     *time.Duration

	AddAttendees    []string
	RemoveAttendees []string

	ClearTeamSize bool
	ClearLocation bool
	ClearCuisine  bool
	ClearDateTime bool
}

// Empty reports whether the extraction carried no field changes at all.
func (f Fields) Empty() bool {
	return f.TeamSize == nil && f.Location == nil && f.Cuisine == nil &&
		f.DateTimeHint == nil && f.Duration == nil &&
		len(f.AddAttendees) == 0 && len(f.RemoveAttendees) == 0 &&
		!f.ClearTeamSize && !f.ClearLocation && !f.ClearCuisine && !f.ClearDateTime
}

// Apply merges one turn's partial extraction into the request. Scalar fields
// overwrite only when explicitly supplied, attendees are a set union unless
// removal was requested, and a new date/time hint invalidates any previously
// resolved window so it gets re-normalized deterministically.
func (r *PlanningRequest) Apply(f Fields) {
	if f.TeamSize != nil && *f.TeamSize > 0 {
		r.TeamSize = *f.TeamSize
	}
	if f.ClearTeamSize {
		r.TeamSize = 0
	}
	if f.Location != nil && *f.Location != "" {
		r.Location = *f.Location
	}
	if f.ClearLocation {
		r.Location = ""
	}
	if f.Cuisine != nil && *f.Cuisine != "" {
		r.Cuisine = *f.Cuisine
	}
	if f.ClearCuisine {
		r.Cuisine = ""
	}
	if f.DateTimeHint != nil && *f.DateTimeHint != "" {
		if !strings.EqualFold(*f.DateTimeHint, r.DateTimeHint) {
			r.Window = nil
		}
		r.DateTimeHint = *f.DateTimeHint
	}
	if f.ClearDateTime {
		r.DateTimeHint = ""
		r.Window = nil
	}
	if f.Duration != nil && *f.Duration > 0 {
		r.Duration = *f.Duration
	}
	for _, a := range f.AddAttendees {
		r.addAttendee(a)
	}
	for _, a := range f.RemoveAttendees {
		r.removeAttendee(a)
	}
}

func (r *PlanningRequest) addAttendee(email string) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return
	}
	for _, existing := range r.Attendees {
		if existing == email {
			return
		}
	}
	r.Attendees = append(r.Attendees, email)
}

func (r *PlanningRequest) removeAttendee(email string) {
	email = strings.ToLower(strings.TrimSpace(email))
	kept := r.Attendees[:0]
	for _, existing := range r.Attendees {
		if existing != email {
			kept = append(kept, existing)
		}
	}
	r.Attendees = kept
}

// MissingFields lists the required fields still absent, ordered by question
// priority: attendees > location/cuisine > date/time > team size.
func (r PlanningRequest) MissingFields() []string {
	var missing []string
	if len(r.Attendees) == 0 {
		missing = append(missing, FieldAttendees)
	}
	if r.Location == "" && r.Cuisine == "" {
		missing = append(missing, FieldPlace)
	}
	if r.DateTimeHint == "" {
		missing = append(missing, FieldDateTime)
	}
	if r.TeamSize <= 0 {
		missing = append(missing, FieldTeamSize)
	}
	return missing
}

// Complete reports whether enough information exists to start searching.
func (r PlanningRequest) Complete() bool { return len(r.MissingFields()) == 0 }

// Clone returns a deep copy safe for independent mutation.
func (r PlanningRequest) Clone() PlanningRequest {
	clone := r
	if r.Window != nil {
		w := *r.Window
		clone.Window = &w
	}
	clone.Attendees = append([]string(nil), r.Attendees...)
	return clone
}
