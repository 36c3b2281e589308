package core

import "time"

// FreeSlot is a candidate meeting window free for every attendee. Start/End
// span exactly the requested duration; SegmentEnd marks the end of the
// maximal free segment the slot was cut from, so the planner can offer a
// later start inside a long segment without re-running the intersection.
type FreeSlot struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	SegmentEnd time.Time `json:"segment_end"`
}

// Duration returns End - Start.
func (s FreeSlot) Duration() time.Duration { return s.End.Sub(s.Start) }

// SegmentDuration returns the length of the maximal free segment.
func (s FreeSlot) SegmentDuration() time.Duration { return s.SegmentEnd.Sub(s.Start) }

// Before implements the slot ranking order: earliest start first, ties broken
// by the longer underlying segment.
func (s FreeSlot) Before(o FreeSlot) bool {
	if !s.Start.Equal(o.Start) {
		return s.Start.Before(o.Start)
	}
	return s.SegmentDuration() > o.SegmentDuration()
}

// Equal reports whether two slots describe the same window.
func (s FreeSlot) Equal(o FreeSlot) bool {
	return s.Start.Equal(o.Start) && s.End.Equal(o.End)
}
