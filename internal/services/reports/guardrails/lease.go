// Package guardrails holds cross replica safety helpers for scheduled reports
package guardrails

import (
	"context"
	"errors"
	"time"

	"storeuptime/internal/modkit/repokit"
	perr "storeuptime/internal/platform/errors"
)

// ErrLeaseHeld signals another replica already claimed the tick
var ErrLeaseHeld = errors.New("reports: tick lease already held")

// LeaseTTL is how long claimed ticks are kept before they are pruned
const LeaseTTL = 7 * 24 * time.Hour

// Lease claims tick once across every process sharing the database and runs do when it wins
type Lease func(ctx context.Context, tick time.Time, do func(context.Context) error) error

// MakeTickLease returns a Lease backed by the report_tick_leases table.
// A claim is never released; ticks older than LeaseTTL are pruned on the next claim
func MakeTickLease(db repokit.TxRunner) Lease {
	return func(ctx context.Context, tick time.Time, do func(context.Context) error) error {
		tick = tick.UTC().Truncate(time.Second)
		var claimed bool
		err := db.Tx(ctx, func(q repokit.Queryer) error {
			if _, err := q.Exec(ctx, `delete from report_tick_leases where tick_utc < $1`, tick.Add(-LeaseTTL)); err != nil {
				return err
			}
			rows, err := q.Query(ctx, `
				insert into report_tick_leases (tick_utc)
				values ($1)
				on conflict (tick_utc) do nothing
				returning true
			`, tick)
			if err != nil {
				return err
			}
			defer rows.Close()
			claimed = rows.Next()
			return rows.Err()
		})
		if err != nil {
			return perr.FromPostgres(err, "claim report tick")
		}
		if !claimed {
			return ErrLeaseHeld
		}
		return do(ctx)
	}
}
