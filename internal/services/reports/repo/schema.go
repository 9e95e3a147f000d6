package repo

import (
	"context"

	"storeuptime/internal/modkit/repokit"
	perr "storeuptime/internal/platform/errors"
)

// DefaultTimezone is assigned to stores that have business hours but no timezone row
const DefaultTimezone = "America/Chicago"

// schema is applied in order; every statement is idempotent
var schema = []string{
	`do $$
begin
	if not exists (select 1 from pg_type where typname = 'store_status_enum') then
		create type store_status_enum as enum ('active', 'inactive');
	end if;
end
$$`,
	`create table if not exists timezones (
	store_id     varchar(50)  primary key,
	timezone_str varchar(100) not null
)`,
	`create table if not exists store_status (
	store_id      varchar(50)       not null,
	timestamp_utc timestamptz       not null,
	status        store_status_enum not null,
	primary key (store_id, timestamp_utc)
)`,
	`create table if not exists store_business_hours (
	store_id         varchar(50) not null references timezones (store_id),
	day_of_week      smallint    not null check (day_of_week between 0 and 6),
	start_time_local time        not null,
	end_time_local   time        not null,
	primary key (store_id, day_of_week, start_time_local, end_time_local)
)`,
	`create index if not exists store_status_ts_idx on store_status (timestamp_utc desc)`,
	`create table if not exists report_tick_leases (
	tick_utc   timestamptz primary key,
	claimed_at timestamptz not null default now()
)`,
}

// Migrate creates the report tables when they are missing
func Migrate(ctx context.Context, q repokit.Queryer) error {
	for _, stmt := range schema {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return perr.FromPostgres(err, "migrate report schema")
		}
	}
	return nil
}
