// Package repo provides postgres and clickhouse access for report jobs
package repo

import (
	"context"
	"time"

	"storeuptime/internal/core/uptime"
	"storeuptime/internal/modkit/repokit"
	perr "storeuptime/internal/platform/errors"
	"storeuptime/internal/platform/store"
	"storeuptime/internal/services/reports/domain"
)

// Repo is the read surface a report job runs against
type Repo interface {
	domain.StoreReader
	domain.ObservationReader
}

type (
	// PG is a binder that can bind the repo to a Queryer or TxRunner
	PG struct{}
	// queries implements Repo over postgres
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder that can bind the repo to a Queryer or TxRunner
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind wires a Queryer to the repo
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

func (r *queries) Stores(ctx context.Context) ([]string, error) {
	const sql = `
select store_id
from timezones
order by store_id asc
`
	ids, err := store.Many(ctx, r.q, func(row store.Row) (string, error) {
		var id string
		return id, row.Scan(&id)
	}, sql)
	if err != nil {
		return nil, perr.FromPostgres(err, "list stores")
	}
	return ids, nil
}

func (r *queries) Timezone(ctx context.Context, id string) (string, bool, error) {
	const sql = `
select timezone_str
from timezones
where store_id = $1
`
	tz, err := store.One(ctx, r.q, func(row store.Row) (string, error) {
		var s string
		return s, row.Scan(&s)
	}, sql, id)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, perr.FromPostgresf(err, "timezone for store %s", id)
	}
	return tz, true, nil
}

func (r *queries) BusinessHours(ctx context.Context, id string, day uptime.Weekday) (uptime.DaySchedule, error) {
	// times come back as text so a bad value surfaces as a parse error, not a scan error
	const sql = `
select start_time_local::text, end_time_local::text
from store_business_hours
where store_id = $1 and day_of_week = $2
order by start_time_local asc
`
	type raw struct{ start, end string }
	rows, err := store.Many(ctx, r.q, func(row store.Row) (raw, error) {
		var x raw
		return x, row.Scan(&x.start, &x.end)
	}, sql, id, int16(day))
	if err != nil {
		return nil, perr.FromPostgresf(err, "business hours for store %s", id)
	}

	sched := make(uptime.DaySchedule, 0, len(rows))
	for _, x := range rows {
		start, err := uptime.ParseTimeOfDay(x.start)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeParse, "store %s %s start", id, day)
		}
		end, err := uptime.ParseTimeOfDay(x.end)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeParse, "store %s %s end", id, day)
		}
		sched = append(sched, uptime.Interval{Start: start, End: end})
	}
	return sched, nil
}

func (r *queries) MaxTimestamp(ctx context.Context) (time.Time, bool, error) {
	const sql = `select max(timestamp_utc) from store_status`
	var ts *time.Time
	if err := r.q.QueryRow(ctx, sql).Scan(&ts); err != nil {
		return time.Time{}, false, perr.FromPostgres(err, "max observation timestamp")
	}
	if ts == nil {
		return time.Time{}, false, nil
	}
	return ts.UTC(), true, nil
}

func (r *queries) Observations(ctx context.Context, id string, from, to time.Time) ([]uptime.Observation, error) {
	const sql = `
select timestamp_utc, status::text
from store_status
where store_id = $1 and timestamp_utc > $2 and timestamp_utc <= $3
order by timestamp_utc asc
`
	obs, err := store.Many(ctx, r.q, scanObservation, sql, id, from, to)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeParse) {
			return nil, err
		}
		return nil, perr.FromPostgresf(err, "observations for store %s", id)
	}
	return obs, nil
}

func scanObservation(row store.Row) (uptime.Observation, error) {
	var (
		at  time.Time
		raw string
	)
	if err := row.Scan(&at, &raw); err != nil {
		return uptime.Observation{}, err
	}
	st, err := uptime.ParseStatus(raw)
	if err != nil {
		return uptime.Observation{}, perr.Wrap(err, perr.ErrorCodeParse, "observation status")
	}
	return uptime.Observation{At: at.UTC(), Status: st}, nil
}
