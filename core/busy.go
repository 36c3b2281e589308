package core

import (
	"fmt"
	"sort"
	"time"
)

// BusyInterval is one busy range reported by the calendar collaborator for a
// single attendee. Start must precede End and both carry their zone.
type BusyInterval struct {
	Attendee string    `json:"attendee"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// Validate checks interval ordering.
func (b BusyInterval) Validate() error {
	if !b.Start.Before(b.End) {
		return fmt.Errorf("busy interval for %s: start %s must precede end %s", b.Attendee, b.Start, b.End)
	}
	return nil
}

// AttendeeBusyMap holds each attendee's busy timeline as an ordered sequence
// of non-overlapping windows, merged on insert.
type AttendeeBusyMap map[string][]Window

// NewAttendeeBusyMap returns an empty busy map.
func NewAttendeeBusyMap() AttendeeBusyMap { return AttendeeBusyMap{} }

// Ensure registers an attendee with no busy time yet. An attendee present
// with zero intervals is treated as fully free by the intersector.
func (m AttendeeBusyMap) Ensure(attendee string) {
	if _, ok := m[attendee]; !ok {
		m[attendee] = nil
	}
}

// Insert adds a busy interval for its attendee, merging any overlap or
// adjacency with existing windows so the per-attendee sequence stays ordered
// and non-overlapping.
func (m AttendeeBusyMap) Insert(iv BusyInterval) error {
	if err := iv.Validate(); err != nil {
		return err
	}
	windows := append(m[iv.Attendee], Window{Start: iv.Start, End: iv.End})
	sort.Slice(windows, func(i, j int) bool { return windows[i].Start.Before(windows[j].Start) })

	merged := windows[:1]
	for _, w := range windows[1:] {
		last := &merged[len(merged)-1]
		if !w.Start.After(last.End) {
			if w.End.After(last.End) {
				last.End = w.End
			}
			continue
		}
		merged = append(merged, w)
	}
	m[iv.Attendee] = append([]Window(nil), merged...)
	return nil
}

// Attendees returns the registered attendee identifiers in sorted order.
func (m AttendeeBusyMap) Attendees() []string {
	out := make([]string, 0, len(m))
	for a := range m {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Endpoints returns the total interval-endpoint count, the M in the
// intersector's O(M log M) bound.
func (m AttendeeBusyMap) Endpoints() int {
	n := 0
	for _, ws := range m {
		n += 2 * len(ws)
	}
	return n
}

// Clone returns a deep copy.
func (m AttendeeBusyMap) Clone() AttendeeBusyMap {
	clone := make(AttendeeBusyMap, len(m))
	for a, ws := range m {
		clone[a] = append([]Window(nil), ws...)
	}
	return clone
}
