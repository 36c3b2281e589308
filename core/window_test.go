package core

import (
	"testing"
	"time"
)

func TestWindow_ClipAndOverlap(t *testing.T) {
	day := func(h int) time.Time { return time.Date(2026, 3, 6, h, 0, 0, 0, time.UTC) }
	bound := Window{Start: day(17), End: day(22)}

	cases := []struct {
		name string
		in   Window
		want Window
	}{
		{"inside", Window{Start: day(18), End: day(19)}, Window{Start: day(18), End: day(19)}},
		{"straddles start", Window{Start: day(16), End: day(18)}, Window{Start: day(17), End: day(18)}},
		{"straddles end", Window{Start: day(21), End: day(23)}, Window{Start: day(21), End: day(22)}},
		{"disjoint before", Window{Start: day(9), End: day(10)}, Window{}},
		{"touching end", Window{Start: day(22), End: day(23)}, Window{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Clip(bound)
			if !got.Start.Equal(tc.want.Start) || !got.End.Equal(tc.want.End) {
				t.Errorf("Clip = %v, want %v", got, tc.want)
			}
			if tc.want.IsZero() && tc.in.Overlaps(bound) {
				t.Error("disjoint windows report overlap")
			}
		})
	}
}

func TestNewWindow_RejectsInvertedRange(t *testing.T) {
	start := time.Date(2026, 3, 6, 22, 0, 0, 0, time.UTC)
	if _, err := NewWindow(start, start); err == nil {
		t.Error("expected error for empty range")
	}
	if _, err := NewWindow(start, start.Add(-time.Hour)); err == nil {
		t.Error("expected error for inverted range")
	}
}
