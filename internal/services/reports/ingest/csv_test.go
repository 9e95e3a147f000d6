package ingest

import (
	"errors"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"storeuptime/internal/core/uptime"
	perr "storeuptime/internal/platform/errors"
	"storeuptime/internal/services/reports/repo"

	"golang.org/x/text/encoding/unicode"
)

func TestStatuses_BatchesAndParses(t *testing.T) {
	src := strings.NewReader("store_id,status,timestamp_utc\n" +
		"s1,active,2023-01-22 12:09:39.388884 UTC\n" +
		"s1,inactive,2023-01-22 13:09:39 UTC\n" +
		"s2,active,2023-01-22T14:00:00Z\n")

	var batches [][]repo.StatusRow
	n, err := Statuses(src, 2, func(rows []repo.StatusRow) error {
		batches = append(batches, append([]repo.StatusRow(nil), rows...))
		return nil
	})
	if err != nil {
		t.Fatalf("Statuses: %v", err)
	}
	if n != 3 || len(batches) != 2 || len(batches[0]) != 2 || len(batches[1]) != 1 {
		t.Fatalf("n=%d batches=%v", n, batches)
	}
	first := batches[0][0]
	want := time.Date(2023, 1, 22, 12, 9, 39, 388884000, time.UTC)
	if first.StoreID != "s1" || first.Status != uptime.StatusActive || !first.At.Equal(want) {
		t.Fatalf("first row = %+v", first)
	}
	if batches[0][1].Status != uptime.StatusInactive {
		t.Fatalf("second row = %+v", batches[0][1])
	}
}

func TestStatuses_ColumnOrderFromHeader(t *testing.T) {
	src := strings.NewReader("\ufefftimestamp_utc,store_id,status\n2023-01-22 12:00:00 UTC,s9,inactive\n")
	var got []repo.StatusRow
	if _, err := Statuses(src, 0, func(rows []repo.StatusRow) error {
		got = append(got, rows...)
		return nil
	}); err != nil {
		t.Fatalf("Statuses: %v", err)
	}
	if len(got) != 1 || got[0].StoreID != "s9" || got[0].Status != uptime.StatusInactive {
		t.Fatalf("got %+v", got)
	}
}

func TestStatuses_BadValue(t *testing.T) {
	src := strings.NewReader("store_id,status,timestamp_utc\ns1,closed,2023-01-22 12:00:00 UTC\n")
	_, err := Statuses(src, 10, func([]repo.StatusRow) error { return nil })
	if perr.CodeOf(err) != perr.ErrorCodeParse {
		t.Fatalf("want parse error, got %v", err)
	}
	if e, ok := perr.As(err); !ok || e.Field() != "status" {
		t.Fatalf("want field status, got %v", err)
	}
}

func TestMissingHeaderColumn(t *testing.T) {
	_, err := Timezones(strings.NewReader("store_id\ns1\n"), 10, func([]repo.TimezoneRow) error { return nil })
	if perr.CodeOf(err) != perr.ErrorCodeParse {
		t.Fatalf("want parse error, got %v", err)
	}
}

func TestTimezones_RejectsUnknownZone(t *testing.T) {
	src := strings.NewReader("store_id,timezone_str\ns1,America/Chicago\ns2,Mars/Olympus\n")
	var got []repo.TimezoneRow
	_, err := Timezones(src, 1, func(rows []repo.TimezoneRow) error {
		got = append(got, rows...)
		return nil
	})
	if err == nil {
		t.Fatalf("expected error for unknown zone")
	}
	if len(got) != 1 || got[0].TZ != "America/Chicago" {
		t.Fatalf("rows before the bad line should be delivered, got %+v", got)
	}
}

func TestBusinessHours(t *testing.T) {
	src := strings.NewReader("store_id,dayOfWeek,start_time_local,end_time_local\n" +
		"s1,0,09:00:00,17:00:00\n" +
		"s1,6,22:00,02:00\n")
	var got []repo.HoursRow
	if _, err := BusinessHours(src, 10, func(rows []repo.HoursRow) error {
		got = append(got, rows...)
		return nil
	}); err != nil {
		t.Fatalf("BusinessHours: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %+v", got)
	}
	if got[0].Day != uptime.Monday || got[0].Start != uptime.Clock(9, 0, 0) || got[0].End != uptime.Clock(17, 0, 0) {
		t.Fatalf("row 0 = %+v", got[0])
	}
	if got[1].Day != uptime.Sunday || got[1].End != uptime.Clock(2, 0, 0) {
		t.Fatalf("row 1 = %+v", got[1])
	}

	bad := strings.NewReader("store_id,dayOfWeek,start_time_local,end_time_local\ns1,7,09:00:00,17:00:00\n")
	if _, err := BusinessHours(bad, 10, func([]repo.HoursRow) error { return nil }); perr.CodeOf(err) != perr.ErrorCodeParse {
		t.Fatalf("want parse error for day 7, got %v", err)
	}
}

func TestSinkErrorStops(t *testing.T) {
	boom := errors.New("boom")
	src := strings.NewReader("store_id,timezone_str\ns1,UTC\ns2,UTC\n")
	calls := 0
	_, err := Timezones(src, 1, func([]repo.TimezoneRow) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) || calls != 1 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}
}

func TestParseTimestamp(t *testing.T) {
	for _, in := range []string{"2023-01-22 12:00:00 UTC", "2023-01-22T12:00:00Z", "2023-01-22 12:00:00", "2023-01-22 06:00:00-06:00"} {
		ts, err := ParseTimestamp(in)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q): %v", in, err)
		}
		if !ts.Equal(time.Date(2023, 1, 22, 12, 0, 0, 0, time.UTC)) {
			t.Fatalf("ParseTimestamp(%q) = %v", in, ts)
		}
	}
	if _, err := ParseTimestamp("yesterday"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestTimezones_UTF16Export(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	body, err := enc.String("Store_ID,TimeZone_Str\r\ns1,Asia/Kolkata\r\n")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var got []repo.TimezoneRow
	if _, err := Timezones(strings.NewReader(body), 0, func(rows []repo.TimezoneRow) error {
		got = append(got, rows...)
		return nil
	}); err != nil {
		t.Fatalf("Timezones: %v", err)
	}
	if len(got) != 1 || got[0].StoreID != "s1" || got[0].TZ != "Asia/Kolkata" {
		t.Fatalf("got %+v", got)
	}
}
