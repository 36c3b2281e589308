package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/planmesh/planmesh/core"
)

// Slack applied around a point-in-time hint ("tuesday at 7pm") when deriving
// the search window.
const (
	pointSlackBefore = time.Hour
	pointSlackAfter  = 3 * time.Hour
)

// Dinner window assumed when a hint names a day without a clock time.
const (
	dinnerStartHour = 17
	dinnerEndHour   = 22
)

var (
	clockPattern   = regexp.MustCompile(`(?i)\b\d{1,2}:\d{2}\b|\b\d{1,2}\s*(a\.?m\.?|p\.?m\.?)\b|\bnoon\b|\bmidnight\b`)
	weekdayPattern = regexp.MustCompile(`(?i)next\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\s+at\s+(\d{1,2})\s*(pm|am)?`)
)

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// Resolver normalizes free-text date hints into concrete timezone-aware
// search windows relative to a reference "now". It is deliberately
// deterministic: scheduling correctness never depends on model arithmetic.
type Resolver struct {
	parser *when.Parser
}

// NewResolver constructs a Resolver with the English and common rule sets.
func NewResolver() *Resolver {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Resolver{parser: w}
}

// Resolve parses hint relative to now and derives the search window: a hint
// with a clock time yields the point padded by a slack window, a date-only
// hint yields the dinner hours of the named day. The window carries now's
// location.
func (r *Resolver) Resolve(hint string, now time.Time) (core.Window, error) {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return core.Window{}, fmt.Errorf("empty date/time hint")
	}

	at, err := r.resolveInstant(hint, now)
	if err != nil {
		return core.Window{}, err
	}

	if clockPattern.MatchString(hint) {
		return core.NewWindow(at.Add(-pointSlackBefore), at.Add(pointSlackAfter))
	}
	loc := now.Location()
	day := at.In(loc)
	start := time.Date(day.Year(), day.Month(), day.Day(), dinnerStartHour, 0, 0, 0, loc)
	end := time.Date(day.Year(), day.Month(), day.Day(), dinnerEndHour, 0, 0, 0, loc)
	return core.NewWindow(start, end)
}

func (r *Resolver) resolveInstant(hint string, now time.Time) (time.Time, error) {
	if res, err := r.parser.Parse(hint, now); err == nil && res != nil {
		return res.Time, nil
	}
	if at, ok := nextWeekdayFallback(hint, now); ok {
		return at, nil
	}
	return time.Time{}, fmt.Errorf("could not parse date/time hint %q", hint)
}

// nextWeekdayFallback handles "next <weekday> at <hour>[am|pm]" phrases the
// rule-based parser occasionally misses. "next tuesday" on a Tuesday means
// seven days out, not today.
func nextWeekdayFallback(hint string, now time.Time) (time.Time, bool) {
	m := weekdayPattern.FindStringSubmatch(hint)
	if m == nil {
		return time.Time{}, false
	}
	target := weekdays[strings.ToLower(m[1])]
	hour, err := strconv.Atoi(m[2])
	if err != nil || hour > 12 {
		return time.Time{}, false
	}
	switch strings.ToLower(m[3]) {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}

	daysAhead := (int(target) - int(now.Weekday()) + 7) % 7
	if daysAhead == 0 {
		daysAhead = 7
	}
	day := now.AddDate(0, 0, daysAhead)
	loc := now.Location()
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, loc), true
}
