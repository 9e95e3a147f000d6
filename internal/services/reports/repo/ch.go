package repo

import (
	"context"
	"time"

	"storeuptime/internal/core/uptime"
	perr "storeuptime/internal/platform/errors"
	"storeuptime/internal/platform/store"
	"storeuptime/internal/services/reports/domain"
)

// chSchema mirrors store_status in clickhouse; replacing on the primary key keeps reloads idempotent
const chSchema = `
create table if not exists store_status (
	store_id      String,
	timestamp_utc DateTime64(6, 'UTC'),
	status        Enum8('active' = 1, 'inactive' = 2)
)
engine = ReplacingMergeTree
order by (store_id, timestamp_utc)
`

// CH reads observations from the clickhouse mirror
type CH struct{ ch store.Clickhouse }

var _ domain.ObservationReader = (*CH)(nil)

// NewCH wraps a clickhouse seam; nil panics
func NewCH(ch store.Clickhouse) *CH {
	if ch == nil {
		panic("reports.CH requires a non nil Clickhouse")
	}
	return &CH{ch: ch}
}

// Migrate creates the mirror table
func (c *CH) Migrate(ctx context.Context) error {
	if err := c.ch.Exec(ctx, chSchema); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "migrate clickhouse store_status")
	}
	return nil
}

// Mirror appends observations to the mirror table
func (c *CH) Mirror(ctx context.Context, rows []StatusRow) error {
	data := make([][]any, 0, len(rows))
	for _, r := range rows {
		data = append(data, []any{r.StoreID, r.At.UTC(), r.Status.String()})
	}
	if err := c.ch.Insert(ctx, "store_status", []string{"store_id", "timestamp_utc", "status"}, data); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "mirror store status")
	}
	return nil
}

// MaxTimestamp returns the newest sample; an empty table reports ok false
func (c *CH) MaxTimestamp(ctx context.Context) (time.Time, bool, error) {
	rows, err := c.ch.Query(ctx, `select count(), max(timestamp_utc) from store_status final`)
	if err != nil {
		return time.Time{}, false, perr.Wrap(err, perr.ErrorCodeUnavailable, "clickhouse max timestamp")
	}
	defer rows.Close()

	var (
		n  uint64
		ts time.Time
	)
	if rows.Next() {
		if err := rows.Scan(&n, &ts); err != nil {
			return time.Time{}, false, perr.Wrap(err, perr.ErrorCodeDB, "clickhouse max timestamp")
		}
	}
	if err := rows.Err(); err != nil {
		return time.Time{}, false, perr.Wrap(err, perr.ErrorCodeDB, "clickhouse max timestamp")
	}
	if n == 0 {
		return time.Time{}, false, nil
	}
	return ts.UTC(), true, nil
}

// Observations returns samples for id in (from, to], ascending
func (c *CH) Observations(ctx context.Context, id string, from, to time.Time) ([]uptime.Observation, error) {
	const sql = `
select timestamp_utc, toString(status)
from store_status final
where store_id = ? and timestamp_utc > ? and timestamp_utc <= ?
order by timestamp_utc asc
`
	rows, err := c.ch.Query(ctx, sql, id, from.UTC(), to.UTC())
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "clickhouse observations for store %s", id)
	}
	defer rows.Close()

	var out []uptime.Observation
	for rows.Next() {
		o, err := scanObservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeDB, "clickhouse observations for store %s", id)
	}
	return out, nil
}
