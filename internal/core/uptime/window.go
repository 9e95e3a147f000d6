package uptime

import "time"

// Span is one contiguous (From, To] piece of a window lying on a single local day
type Span struct {
	From time.Time
	To   time.Time
	Day  Weekday
}

// Window is a trailing lookback period ending at the reference instant
type Window struct {
	Name     string
	Length   time.Duration
	MaxSpans int
}

// Report windows
var (
	LastHour = Window{Name: "last_hour", Length: time.Hour, MaxSpans: 2}
	LastDay  = Window{Name: "last_day", Length: 24 * time.Hour, MaxSpans: 2}
	LastWeek = Window{Name: "last_week", Length: 7 * 24 * time.Hour, MaxSpans: 7}
)

// PrevDayEnd returns 23:59:59 of the local day before t, in UTC
func PrevDayEnd(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d-1, 23, 59, 59, 0, t.Location()).UTC()
}

// SplitLocalDays cuts (from, to] at local 23:59:59 boundaries, newest span first.
// The last allowed span always reaches back to from exactly, so at most maxSpans are returned
func SplitLocalDays(from, to time.Time, loc *time.Location, maxSpans int) []Span {
	if !to.After(from) || maxSpans < 1 {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	spans := make([]Span, 0, maxSpans)
	upper := to
	for len(spans) < maxSpans {
		local := upper.In(loc)
		day := WeekdayOf(local)
		if len(spans) == maxSpans-1 {
			spans = append(spans, Span{From: from, To: upper, Day: day})
			break
		}
		b := PrevDayEnd(local)
		if !b.After(from) {
			spans = append(spans, Span{From: from, To: upper, Day: day})
			break
		}
		spans = append(spans, Span{From: b, To: upper, Day: day})
		upper = b
	}
	return spans
}

// ScheduleFunc resolves the business hours for a weekday
type ScheduleFunc func(Weekday) (DaySchedule, error)

// Decompose integrates obs over window w ending at now, one span per local day,
// each span evaluated against its own weekday schedule
func Decompose(obs []Observation, now time.Time, w Window, loc *time.Location, schedule ScheduleFunc) (Totals, error) {
	var tot Totals
	for _, sp := range SplitLocalDays(now.Add(-w.Length), now, loc, w.MaxSpans) {
		sched, err := schedule(sp.Day)
		if err != nil {
			return Totals{}, err
		}
		tot = tot.Add(Aggregate(obs, sp.From, sp.To, sched.OrFullDay(), loc))
	}
	return tot, nil
}
