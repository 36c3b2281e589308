package core

import (
	"fmt"
	"time"
)

// Window is a half-open, timezone-aware instant range [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewWindow constructs a Window and validates ordering.
func NewWindow(start, end time.Time) (Window, error) {
	if !start.Before(end) {
		return Window{}, fmt.Errorf("window start %s must precede end %s", start, end)
	}
	return Window{Start: start, End: end}, nil
}

// IsZero reports whether the window is unset.
func (w Window) IsZero() bool { return w.Start.IsZero() && w.End.IsZero() }

// Duration returns End - Start.
func (w Window) Duration() time.Duration { return w.End.Sub(w.Start) }

// Overlaps reports whether two half-open windows share any instant.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

// Clip truncates the window to the boundaries of bound. The zero Window is
// returned when there is no overlap.
func (w Window) Clip(bound Window) Window {
	start, end := w.Start, w.End
	if start.Before(bound.Start) {
		start = bound.Start
	}
	if end.After(bound.End) {
		end = bound.End
	}
	if !start.Before(end) {
		return Window{}
	}
	return Window{Start: start, End: end}
}

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}
