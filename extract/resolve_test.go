package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reference clock: Monday 2026-03-02 10:00 UTC
var testNow = time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)

func TestResolver_ClockTimeHintGetsSlackWindow(t *testing.T) {
	r := NewResolver()

	w, err := r.Resolve("friday at 7pm", testNow)
	require.NoError(t, err)

	// Friday 2026-03-06 19:00 padded by one hour before, three after.
	assert.Equal(t, time.Date(2026, 3, 6, 18, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2026, 3, 6, 22, 0, 0, 0, time.UTC), w.End)
}

func TestResolver_DateOnlyHintGetsDinnerHours(t *testing.T) {
	r := NewResolver()

	w, err := r.Resolve("friday", testNow)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 3, 6, 17, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2026, 3, 6, 22, 0, 0, 0, time.UTC), w.End)
}

func TestResolver_TomorrowKeepsLocation(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, loc)

	w, err := NewResolver().Resolve("tomorrow", now)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 3, 3, 17, 0, 0, 0, loc), w.Start)
	assert.Equal(t, loc, w.Start.Location())
}

func TestResolver_NextWeekdayFallback(t *testing.T) {
	at, ok := nextWeekdayFallback("next tuesday at 7pm", testNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 3, 19, 0, 0, 0, time.UTC), at)

	// "next monday" asked on a Monday means seven days out.
	at, ok = nextWeekdayFallback("next monday at 8pm", testNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 9, 20, 0, 0, 0, time.UTC), at)

	_, ok = nextWeekdayFallback("sometime soon", testNow)
	assert.False(t, ok)
}

func TestResolver_UnparseableHint(t *testing.T) {
	r := NewResolver()
	_, err := r.Resolve("whenever mercury is in retrograde", testNow)
	assert.Error(t, err)

	_, err = r.Resolve("", testNow)
	assert.Error(t, err)
}

func TestEmails(t *testing.T) {
	got := Emails("invite Ana@Corp.example and ben@corp.example, plus ana@corp.example again")
	assert.Equal(t, []string{"ana@corp.example", "ben@corp.example"}, got)

	assert.Empty(t, Emails("no addresses here"))
}
