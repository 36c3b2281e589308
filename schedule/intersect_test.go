package schedule

import (
	"testing"
	"time"

	"github.com/planmesh/planmesh/core"
)

func at(hour, min int) time.Time {
	return time.Date(2026, time.March, 6, hour, min, 0, 0, time.UTC)
}

func window(startH, endH int) core.Window {
	return core.Window{Start: at(startH, 0), End: at(endH, 0)}
}

func busyMap(t *testing.T, intervals ...core.BusyInterval) core.AttendeeBusyMap {
	t.Helper()
	m := core.NewAttendeeBusyMap()
	for _, iv := range intervals {
		m.Ensure(iv.Attendee)
		if err := m.Insert(iv); err != nil {
			t.Fatalf("insert %v: %v", iv, err)
		}
	}
	return m
}

func TestIntersect_TwoBusyAttendees(t *testing.T) {
	// Dinner window 17:00-22:00. One attendee busy 18:00-19:00, the other
	// 20:00-21:00. A 60 minute dinner fits at 17:00, 19:00 and 21:00.
	busy := busyMap(t,
		core.BusyInterval{Attendee: "ana@x", Start: at(18, 0), End: at(19, 0)},
		core.BusyInterval{Attendee: "ben@x", Start: at(20, 0), End: at(21, 0)},
	)

	slots := Intersect(busy, window(17, 22), time.Hour)
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d: %+v", len(slots), slots)
	}
	wantStarts := []time.Time{at(17, 0), at(19, 0), at(21, 0)}
	for i, slot := range slots {
		if !slot.Start.Equal(wantStarts[i]) {
			t.Errorf("slot %d start = %s, want %s", i, slot.Start, wantStarts[i])
		}
		if got := slot.Duration(); got != time.Hour {
			t.Errorf("slot %d duration = %s, want 1h", i, got)
		}
	}
	if !slots[0].SegmentEnd.Equal(at(18, 0)) {
		t.Errorf("slot 0 segment end = %s, want 18:00", slots[0].SegmentEnd)
	}
}

func TestIntersect_TouchingIntervalsLeaveNoGap(t *testing.T) {
	busy := busyMap(t,
		core.BusyInterval{Attendee: "ana@x", Start: at(18, 0), End: at(19, 0)},
		core.BusyInterval{Attendee: "ben@x", Start: at(19, 0), End: at(20, 0)},
	)

	segments := FreeSegments(busy, window(17, 22))
	want := []core.Window{
		{Start: at(17, 0), End: at(18, 0)},
		{Start: at(20, 0), End: at(22, 0)},
	}
	if len(segments) != len(want) {
		t.Fatalf("expected %d segments, got %d: %+v", len(want), len(segments), segments)
	}
	for i := range want {
		if !segments[i].Start.Equal(want[i].Start) || !segments[i].End.Equal(want[i].End) {
			t.Errorf("segment %d = %v, want %v", i, segments[i], want[i])
		}
	}
}

func TestIntersect_OverlappingBusyAcrossAttendees(t *testing.T) {
	busy := busyMap(t,
		core.BusyInterval{Attendee: "ana@x", Start: at(17, 30), End: at(19, 0)},
		core.BusyInterval{Attendee: "ben@x", Start: at(18, 30), End: at(20, 30)},
	)

	slots := Intersect(busy, window(17, 22), time.Hour)
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d: %+v", len(slots), slots)
	}
	if !slots[0].Start.Equal(at(20, 30)) || !slots[0].End.Equal(at(21, 30)) {
		t.Errorf("slot = %+v, want 20:30-21:30", slots[0])
	}
	if !slots[0].SegmentEnd.Equal(at(22, 0)) {
		t.Errorf("segment end = %s, want 22:00", slots[0].SegmentEnd)
	}
}

func TestIntersect_SegmentShorterThanDurationDropped(t *testing.T) {
	// The 17:00-17:45 prefix is too short for a 60 minute dinner.
	busy := busyMap(t,
		core.BusyInterval{Attendee: "ana@x", Start: at(17, 45), End: at(21, 0)},
	)

	slots := Intersect(busy, window(17, 22), time.Hour)
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d: %+v", len(slots), slots)
	}
	if !slots[0].Start.Equal(at(21, 0)) {
		t.Errorf("slot start = %s, want 21:00", slots[0].Start)
	}
}

func TestIntersect_FreeAttendeeDoesNotRestrict(t *testing.T) {
	busy := busyMap(t,
		core.BusyInterval{Attendee: "ana@x", Start: at(18, 0), End: at(21, 0)},
	)
	busy.Ensure("free@x")

	slots := Intersect(busy, window(17, 22), time.Hour)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d: %+v", len(slots), slots)
	}
	if !slots[0].Start.Equal(at(17, 0)) || !slots[1].Start.Equal(at(21, 0)) {
		t.Errorf("slots = %+v", slots)
	}
}

func TestIntersect_EmptyBusyMapYieldsWholeWindow(t *testing.T) {
	slots := Intersect(core.NewAttendeeBusyMap(), window(17, 22), 90*time.Minute)
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if !slots[0].Start.Equal(at(17, 0)) || !slots[0].End.Equal(at(18, 30)) {
		t.Errorf("slot = %+v", slots[0])
	}
	if !slots[0].SegmentEnd.Equal(at(22, 0)) {
		t.Errorf("segment end = %s", slots[0].SegmentEnd)
	}
}

func TestIntersect_BusyOutsideWindowClipped(t *testing.T) {
	busy := busyMap(t,
		core.BusyInterval{Attendee: "ana@x", Start: at(9, 0), End: at(10, 0)},
		core.BusyInterval{Attendee: "ana@x", Start: at(16, 0), End: at(17, 30)},
	)

	slots := Intersect(busy, window(17, 22), time.Hour)
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d: %+v", len(slots), slots)
	}
	if !slots[0].Start.Equal(at(17, 30)) {
		t.Errorf("slot start = %s, want 17:30", slots[0].Start)
	}
}

func TestIntersect_FullyBusyWindow(t *testing.T) {
	busy := busyMap(t,
		core.BusyInterval{Attendee: "ana@x", Start: at(17, 0), End: at(22, 0)},
	)
	if slots := Intersect(busy, window(17, 22), time.Hour); len(slots) != 0 {
		t.Fatalf("expected no slots, got %+v", slots)
	}
}

func TestIntersect_Deterministic(t *testing.T) {
	busy := busyMap(t,
		core.BusyInterval{Attendee: "ana@x", Start: at(18, 0), End: at(19, 0)},
		core.BusyInterval{Attendee: "ben@x", Start: at(20, 0), End: at(21, 0)},
		core.BusyInterval{Attendee: "chloe@x", Start: at(17, 15), End: at(17, 40)},
	)

	first := Intersect(busy, window(17, 22), 45*time.Minute)
	for run := 0; run < 5; run++ {
		again := Intersect(busy, window(17, 22), 45*time.Minute)
		if len(again) != len(first) {
			t.Fatalf("run %d: length changed: %d vs %d", run, len(again), len(first))
		}
		for i := range first {
			if !again[i].Equal(first[i]) {
				t.Fatalf("run %d: slot %d changed: %+v vs %+v", run, i, again[i], first[i])
			}
		}
	}
}

func TestFreeAndBusySegmentsTileTheWindow(t *testing.T) {
	busy := busyMap(t,
		core.BusyInterval{Attendee: "ana@x", Start: at(17, 30), End: at(18, 15)},
		core.BusyInterval{Attendee: "ben@x", Start: at(18, 0), End: at(19, 30)},
		core.BusyInterval{Attendee: "ana@x", Start: at(21, 0), End: at(21, 45)},
	)
	w := window(17, 22)

	free := FreeSegments(busy, w)
	occupied := BusySegments(busy, w)

	// Merge both sequences chronologically; they must cover the window
	// exactly with no gaps or overlaps.
	all := append(append([]core.Window(nil), free...), occupied...)
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if all[j].Start.Before(all[i].Start) {
				all[i], all[j] = all[j], all[i]
			}
		}
	}
	cursor := w.Start
	for _, seg := range all {
		if !seg.Start.Equal(cursor) {
			t.Fatalf("gap or overlap at %s (segment starts %s)", cursor, seg.Start)
		}
		cursor = seg.End
	}
	if !cursor.Equal(w.End) {
		t.Fatalf("segments end at %s, want %s", cursor, w.End)
	}
}
