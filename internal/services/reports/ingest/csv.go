// Package ingest reads the store reference and status CSV exports into loader rows
package ingest

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"storeuptime/internal/core/uptime"
	perr "storeuptime/internal/platform/errors"
	"storeuptime/internal/services/reports/repo"

	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultBatch is the row count handed to the sink per call when none is given
const DefaultBatch = 10_000

// timestamp layouts seen in status exports
var tsLayouts = []string{
	"2006-01-02 15:04:05.999999999 MST",
	"2006-01-02 15:04:05.999999999Z07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
}

// table is a header-addressed csv stream
type table struct {
	r    *csv.Reader
	cols map[string]int
	line int
}

// open reads the header; a UTF-8 or UTF-16 byte order mark, as spreadsheet exports write, is honoured
func open(src io.Reader, required ...string) (*table, error) {
	r := csv.NewReader(transform.NewReader(src, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	r.TrimLeadingSpace = true
	r.ReuseRecord = true

	head, err := r.Read()
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeParse, "read csv header")
	}
	// header names match case insensitively
	fold := cases.Fold()
	cols := make(map[string]int, len(head))
	for i, h := range head {
		cols[fold.String(strings.TrimSpace(h))] = i
	}
	for _, c := range required {
		if _, ok := cols[c]; !ok {
			return nil, perr.WithField(perr.Parsef("csv header is missing column %s", c), c)
		}
	}
	r.FieldsPerRecord = len(head)
	return &table{r: r, cols: cols, line: 1}, nil
}

// next returns the next record or io.EOF
func (t *table) next() ([]string, error) {
	rec, err := t.r.Read()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	t.line++
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeParse, "csv line %d", t.line)
	}
	return rec, nil
}

func (t *table) get(rec []string, col string) string {
	return strings.TrimSpace(rec[t.cols[col]])
}

func (t *table) fail(col string, format string, a ...any) error {
	return perr.WithField(perr.Parsef("csv line %d: "+format, append([]any{t.line}, a...)...), col)
}

// each streams rows in batches of size to sink
func each[T any](t *table, size int, parse func([]string) (T, error), sink func([]T) error) (int, error) {
	if size <= 0 {
		size = DefaultBatch
	}
	var (
		total int
		batch = make([]T, 0, size)
	)
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return total, err
		}
		row, err := parse(rec)
		if err != nil {
			return total, err
		}
		batch = append(batch, row)
		if len(batch) == size {
			if err := sink(batch); err != nil {
				return total, err
			}
			total += len(batch)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := sink(batch); err != nil {
			return total, err
		}
		total += len(batch)
	}
	return total, nil
}

// Timezones reads store_id,timezone_str rows; names are validated against the tz database
func Timezones(src io.Reader, size int, sink func([]repo.TimezoneRow) error) (int, error) {
	t, err := open(src, "store_id", "timezone_str")
	if err != nil {
		return 0, err
	}
	return each(t, size, func(rec []string) (repo.TimezoneRow, error) {
		id, tz := t.get(rec, "store_id"), t.get(rec, "timezone_str")
		if id == "" {
			return repo.TimezoneRow{}, t.fail("store_id", "empty store id")
		}
		if _, err := time.LoadLocation(tz); err != nil || tz == "" {
			return repo.TimezoneRow{}, t.fail("timezone_str", "unknown timezone %q", tz)
		}
		return repo.TimezoneRow{StoreID: id, TZ: tz}, nil
	}, sink)
}

// BusinessHours reads store_id,dayOfWeek,start_time_local,end_time_local rows
func BusinessHours(src io.Reader, size int, sink func([]repo.HoursRow) error) (int, error) {
	t, err := open(src, "store_id", "dayofweek", "start_time_local", "end_time_local")
	if err != nil {
		return 0, err
	}
	return each(t, size, func(rec []string) (repo.HoursRow, error) {
		id := t.get(rec, "store_id")
		if id == "" {
			return repo.HoursRow{}, t.fail("store_id", "empty store id")
		}
		d, err := strconv.Atoi(t.get(rec, "dayofweek"))
		if err != nil || d < 0 || !uptime.Weekday(d).Valid() {
			return repo.HoursRow{}, t.fail("dayOfWeek", "day %q outside 0..6", t.get(rec, "dayofweek"))
		}
		start, err := uptime.ParseTimeOfDay(t.get(rec, "start_time_local"))
		if err != nil {
			return repo.HoursRow{}, t.fail("start_time_local", "%v", err)
		}
		end, err := uptime.ParseTimeOfDay(t.get(rec, "end_time_local"))
		if err != nil {
			return repo.HoursRow{}, t.fail("end_time_local", "%v", err)
		}
		return repo.HoursRow{StoreID: id, Day: uptime.Weekday(d), Start: start, End: end}, nil
	}, sink)
}

// Statuses reads store_id,status,timestamp_utc rows
func Statuses(src io.Reader, size int, sink func([]repo.StatusRow) error) (int, error) {
	t, err := open(src, "store_id", "status", "timestamp_utc")
	if err != nil {
		return 0, err
	}
	return each(t, size, func(rec []string) (repo.StatusRow, error) {
		id := t.get(rec, "store_id")
		if id == "" {
			return repo.StatusRow{}, t.fail("store_id", "empty store id")
		}
		st, err := uptime.ParseStatus(t.get(rec, "status"))
		if err != nil {
			return repo.StatusRow{}, t.fail("status", "%v", err)
		}
		at, err := ParseTimestamp(t.get(rec, "timestamp_utc"))
		if err != nil {
			return repo.StatusRow{}, t.fail("timestamp_utc", "%v", err)
		}
		return repo.StatusRow{StoreID: id, At: at, Status: st}, nil
	}, sink)
}

// ParseTimestamp reads an export timestamp; values without a zone are UTC
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range tsLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, perr.Parsef("invalid timestamp %q", s)
}
