package repo

import (
	"context"
	"fmt"
	"time"

	"storeuptime/internal/core/uptime"
	"storeuptime/internal/modkit/repokit"
	perr "storeuptime/internal/platform/errors"

	"github.com/jackc/pgx/v5/pgtype"
)

// TimezoneRow assigns a timezone to a store
type TimezoneRow struct {
	StoreID string
	TZ      string
}

// HoursRow is one business interval
type HoursRow struct {
	StoreID string
	Day     uptime.Weekday
	Start   uptime.TimeOfDay
	End     uptime.TimeOfDay
}

// StatusRow is one observation of one store
type StatusRow struct {
	StoreID string
	At      time.Time
	Status  uptime.Status
}

// Loader bulk loads reference data and observations through COPY into staging tables.
// It must run inside a transaction since staging tables are dropped on commit
type Loader struct {
	q repokit.Queryer
	c repokit.Copier
}

// NewLoader binds a loader to q, which must support COPY
func NewLoader(q repokit.Queryer) (*Loader, error) {
	c, ok := repokit.CopierOf(q)
	if !ok {
		return nil, perr.Internalf("loader requires a querier that supports COPY")
	}
	return &Loader{q: q, c: c}, nil
}

func (l *Loader) stage(ctx context.Context, table, ddl string, cols []string, rows [][]any) error {
	if _, err := l.q.Exec(ctx, fmt.Sprintf("drop table if exists %s", table)); err != nil {
		return perr.FromPostgresf(err, "drop %s", table)
	}
	if _, err := l.q.Exec(ctx, fmt.Sprintf("create temporary table %s (%s) on commit drop", table, ddl)); err != nil {
		return perr.FromPostgresf(err, "create %s", table)
	}
	if _, err := l.c.CopyFrom(ctx, table, cols, rows); err != nil {
		return perr.FromPostgresf(err, "copy into %s", table)
	}
	return nil
}

// Timezones upserts timezone assignments; a later row for a store replaces the stored one
func (l *Loader) Timezones(ctx context.Context, rows []TimezoneRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	data := make([][]any, 0, len(rows))
	for _, r := range rows {
		data = append(data, []any{r.StoreID, r.TZ})
	}
	if err := l.stage(ctx, "stage_timezones", "store_id varchar(50), timezone_str varchar(100)",
		[]string{"store_id", "timezone_str"}, data); err != nil {
		return 0, err
	}
	const sql = `
insert into timezones (store_id, timezone_str)
select distinct on (store_id) store_id, timezone_str
from stage_timezones
order by store_id
on conflict (store_id) do update set timezone_str = excluded.timezone_str
`
	tag, err := l.q.Exec(ctx, sql)
	if err != nil {
		return 0, perr.FromPostgres(err, "upsert timezones")
	}
	return tag.RowsAffected(), nil
}

// BusinessHours inserts intervals, first assigning DefaultTimezone to unknown stores
func (l *Loader) BusinessHours(ctx context.Context, rows []HoursRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	data := make([][]any, 0, len(rows))
	for _, r := range rows {
		data = append(data, []any{r.StoreID, int16(r.Day), pgTime(r.Start), pgTime(r.End)})
	}
	if err := l.stage(ctx, "stage_business_hours",
		"store_id varchar(50), day_of_week smallint, start_time_local time, end_time_local time",
		[]string{"store_id", "day_of_week", "start_time_local", "end_time_local"}, data); err != nil {
		return 0, err
	}

	const missing = `
insert into timezones (store_id, timezone_str)
select distinct s.store_id, $1
from stage_business_hours s
where not exists (select 1 from timezones tz where tz.store_id = s.store_id)
`
	if _, err := l.q.Exec(ctx, missing, DefaultTimezone); err != nil {
		return 0, perr.FromPostgres(err, "assign default timezones")
	}

	const sql = `
insert into store_business_hours (store_id, day_of_week, start_time_local, end_time_local)
select store_id, day_of_week, start_time_local, end_time_local
from stage_business_hours
on conflict do nothing
`
	tag, err := l.q.Exec(ctx, sql)
	if err != nil {
		return 0, perr.FromPostgres(err, "insert business hours")
	}
	return tag.RowsAffected(), nil
}

// Statuses inserts observations; a repeated (store, timestamp) keeps the first value
func (l *Loader) Statuses(ctx context.Context, rows []StatusRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	data := make([][]any, 0, len(rows))
	for _, r := range rows {
		if r.Status != uptime.StatusActive && r.Status != uptime.StatusInactive {
			return 0, perr.Parsef("store %s at %s: status %s", r.StoreID, r.At.Format(time.RFC3339), r.Status)
		}
		data = append(data, []any{r.StoreID, r.At.UTC(), r.Status.String()})
	}
	if err := l.stage(ctx, "stage_store_status", "store_id varchar(50), timestamp_utc timestamptz, status text",
		[]string{"store_id", "timestamp_utc", "status"}, data); err != nil {
		return 0, err
	}
	const sql = `
insert into store_status (store_id, timestamp_utc, status)
select store_id, timestamp_utc, status::store_status_enum
from stage_store_status
on conflict do nothing
`
	tag, err := l.q.Exec(ctx, sql)
	if err != nil {
		return 0, perr.FromPostgres(err, "insert store status")
	}
	return tag.RowsAffected(), nil
}

func pgTime(t uptime.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: time.Duration(t).Microseconds(), Valid: true}
}
