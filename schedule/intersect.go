// Package schedule implements the pure interval-intersection algorithm that
// turns per-attendee busy timelines into ranked common free slots.
package schedule

import (
	"sort"
	"time"

	"github.com/planmesh/planmesh/core"
)

// endpoint is one sweep event: interval starts raise the concurrent-busy
// count, interval ends lower it. Ends sort before starts at the same instant
// so touching intervals produce a zero-length gap instead of a phantom
// overlap.
type endpoint struct {
	at    time.Time
	delta int
}

// Intersect computes every maximal window inside searchWindow that is free
// for all attendees simultaneously and emits one FreeSlot per maximal
// segment of length >= duration, cut to the duration-length prefix. Slots
// are ordered earliest start first, ties broken by the longer segment.
//
// An attendee with zero reported busy intervals is fully free. An empty busy
// map degenerates to "the whole window is free"; the planner rejects that
// case upstream because attendees is a required field.
//
// Complexity is O(M log M) in the total endpoint count M. Re-running on the
// same inputs yields the same ordered output.
func Intersect(busy core.AttendeeBusyMap, searchWindow core.Window, duration time.Duration) []core.FreeSlot {
	if searchWindow.IsZero() || duration <= 0 {
		return nil
	}
	segments := FreeSegments(busy, searchWindow)
	slots := make([]core.FreeSlot, 0, len(segments))
	for _, seg := range segments {
		if seg.Duration() < duration {
			continue
		}
		slots = append(slots, core.FreeSlot{
			Start:      seg.Start,
			End:        seg.Start.Add(duration),
			SegmentEnd: seg.End,
		})
	}
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Before(slots[j]) })
	return slots
}

// FreeSegments returns the maximal zero-busy windows inside searchWindow in
// chronological order. Together with the merged busy windows they partition
// the search window exactly.
func FreeSegments(busy core.AttendeeBusyMap, searchWindow core.Window) []core.Window {
	points := make([]endpoint, 0, busy.Endpoints())
	for _, windows := range busy {
		for _, w := range windows {
			clipped := w.Clip(searchWindow)
			if clipped.IsZero() {
				continue
			}
			points = append(points, endpoint{at: clipped.Start, delta: +1})
			points = append(points, endpoint{at: clipped.End, delta: -1})
		}
	}
	sort.Slice(points, func(i, j int) bool {
		if !points[i].at.Equal(points[j].at) {
			return points[i].at.Before(points[j].at)
		}
		return points[i].delta < points[j].delta
	})

	var segments []core.Window
	concurrent := 0
	cursor := searchWindow.Start
	for _, p := range points {
		if concurrent == 0 && cursor.Before(p.at) {
			segments = append(segments, core.Window{Start: cursor, End: p.at})
		}
		concurrent += p.delta
		if p.at.After(cursor) {
			cursor = p.at
		}
	}
	if cursor.Before(searchWindow.End) {
		segments = append(segments, core.Window{Start: cursor, End: searchWindow.End})
	}
	return segments
}

// BusySegments returns the merged occupied windows inside searchWindow, the
// complement of FreeSegments. Exposed for the coverage invariant: free plus
// busy segments tile the search window with no gaps and no overlaps.
func BusySegments(busy core.AttendeeBusyMap, searchWindow core.Window) []core.Window {
	free := FreeSegments(busy, searchWindow)
	var out []core.Window
	cursor := searchWindow.Start
	for _, seg := range free {
		if cursor.Before(seg.Start) {
			out = append(out, core.Window{Start: cursor, End: seg.Start})
		}
		cursor = seg.End
	}
	if cursor.Before(searchWindow.End) {
		out = append(out, core.Window{Start: cursor, End: searchWindow.End})
	}
	return out
}
