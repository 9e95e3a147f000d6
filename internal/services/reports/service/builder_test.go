package service

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"storeuptime/internal/core/uptime"
	perr "storeuptime/internal/platform/errors"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func nineToFive() uptime.DaySchedule {
	return uptime.DaySchedule{{Start: uptime.Clock(9, 0, 0), End: uptime.Clock(17, 0, 0)}}
}

func everyDay(s uptime.DaySchedule) map[uptime.Weekday]uptime.DaySchedule {
	out := map[uptime.Weekday]uptime.DaySchedule{}
	for d := uptime.Monday; d <= uptime.Sunday; d++ {
		out[d] = s
	}
	return out
}

// seedWorkedExample is a UTC store open 09:00-17:00, sampled on Monday 2024-01-08
func seedWorkedExample(m *memRepo) {
	m.tz["s1"] = "UTC"
	m.hours["s1"] = everyDay(nineToFive())
	m.obs["s1"] = []uptime.Observation{
		{At: at("2024-01-08T09:00:00Z"), Status: uptime.StatusActive},
		{At: at("2024-01-08T12:00:00Z"), Status: uptime.StatusInactive},
		{At: at("2024-01-08T16:30:00Z"), Status: uptime.StatusInactive},
		{At: at("2024-01-08T17:00:00Z"), Status: uptime.StatusActive},
	}
}

func TestBuild_WorkedExample(t *testing.T) {
	m := newMemRepo()
	seedWorkedExample(m)

	row, err := NewBuilder(m, m).Build(context.Background(), "s1", at("2024-01-08T17:00:00Z"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if row.UptimeLastHour != 0 || row.DowntimeLastHour != 30 {
		t.Fatalf("hour = %d/%d, want 0/30", row.UptimeLastHour, row.DowntimeLastHour)
	}
	if row.UptimeLastDay.StringFixed(2) != "3.00" || row.DowntimeLastDay.StringFixed(2) != "5.00" {
		t.Fatalf("day = %s/%s, want 3.00/5.00", row.UptimeLastDay, row.DowntimeLastDay)
	}
	if row.UptimeLastWeek.StringFixed(2) != "3.00" || row.DowntimeLastWeek.StringFixed(2) != "5.00" {
		t.Fatalf("week = %s/%s, want 3.00/5.00", row.UptimeLastWeek, row.DowntimeLastWeek)
	}
	if m.hoursCalls > 7 {
		t.Fatalf("business hours fetched %d times, want at most one per weekday", m.hoursCalls)
	}
}

func TestBuild_FullDayFallback(t *testing.T) {
	m := newMemRepo()
	m.tz["s1"] = "UTC"
	now := at("2024-01-10T12:00:00Z")
	for ts := now.Add(-8 * 24 * time.Hour); !ts.After(now); ts = ts.Add(time.Hour) {
		m.obs["s1"] = append(m.obs["s1"], uptime.Observation{At: ts, Status: uptime.StatusActive})
	}

	row, err := NewBuilder(m, m).Build(context.Background(), "s1", now)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// each span starts at its first sample, so every window loses up to one step per local day
	if row.UptimeLastHour != 0 {
		t.Fatalf("hour uptime = %d", row.UptimeLastHour)
	}
	if got := row.UptimeLastDay.StringFixed(2); got != "23.00" {
		t.Fatalf("day uptime = %s, want 23.00", got)
	}
	if got := row.UptimeLastWeek.StringFixed(2); got != "167.00" {
		t.Fatalf("week uptime = %s, want 167.00", got)
	}
	if !row.DowntimeLastWeek.IsZero() || !row.DowntimeLastDay.IsZero() {
		t.Fatalf("constant active store has downtime: %+v", row)
	}
}

func TestBuild_WindowsNeverExceedTheirLength(t *testing.T) {
	m := newMemRepo()
	m.tz["s1"] = "America/New_York"
	m.hours["s1"] = map[uptime.Weekday]uptime.DaySchedule{uptime.Saturday: nineToFive()}
	now := at("2024-03-12T03:17:00Z")
	st := uptime.StatusActive
	for ts := now.Add(-8 * 24 * time.Hour); !ts.After(now); ts = ts.Add(37 * time.Minute) {
		m.obs["s1"] = append(m.obs["s1"], uptime.Observation{At: ts, Status: st})
		if st == uptime.StatusActive {
			st = uptime.StatusInactive
		} else {
			st = uptime.StatusActive
		}
	}
	row, err := NewBuilder(m, m).Build(context.Background(), "s1", now)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if row.UptimeLastHour+row.DowntimeLastHour > 60 {
		t.Fatalf("hour sum %d > 60", row.UptimeLastHour+row.DowntimeLastHour)
	}
	if row.UptimeLastDay.Add(row.DowntimeLastDay).GreaterThan(uptime.Hours(24 * time.Hour)) {
		t.Fatalf("day sum exceeds 24h: %+v", row)
	}
	if row.UptimeLastWeek.Add(row.DowntimeLastWeek).GreaterThan(uptime.Hours(7 * 24 * time.Hour)) {
		t.Fatalf("week sum exceeds 168h: %+v", row)
	}
}

func TestBuild_ReferenceAndParseErrors(t *testing.T) {
	m := newMemRepo()
	m.tz["bad"] = "Mars/Olympus_Mons"
	b := NewBuilder(m, m)
	now := at("2024-01-08T17:00:00Z")

	_, err := b.Build(context.Background(), "ghost", now)
	if perr.CodeOf(err) != perr.ErrorCodeReference {
		t.Fatalf("missing timezone: want reference error, got %v", err)
	}
	_, err = b.Build(context.Background(), "bad", now)
	if perr.CodeOf(err) != perr.ErrorCodeParse {
		t.Fatalf("bad timezone: want parse error, got %v", err)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	m := newMemRepo()
	seedWorkedExample(m)
	now := at("2024-01-08T17:00:00Z")
	a, err := NewBuilder(m, m).Build(context.Background(), "s1", now)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, err := NewBuilder(m, m).Build(context.Background(), "s1", now)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i, v := range a.Record() {
		if b.Record()[i] != v {
			t.Fatalf("column %d differs: %s vs %s", i, v, b.Record()[i])
		}
	}
}
