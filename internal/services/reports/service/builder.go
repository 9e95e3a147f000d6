package service

import (
	"context"
	"time"

	"storeuptime/internal/core/uptime"
	perr "storeuptime/internal/platform/errors"
	"storeuptime/internal/services/reports/domain"
)

// Builder computes one report row per store against a fixed reference instant.
// Not safe for concurrent use; one Builder serves one job
type Builder struct {
	stores domain.StoreReader
	obs    domain.ObservationReader
	zones  map[string]*time.Location
}

// NewBuilder reads reference data from stores and samples from obs
func NewBuilder(stores domain.StoreReader, obs domain.ObservationReader) *Builder {
	return &Builder{stores: stores, obs: obs, zones: map[string]*time.Location{}}
}

func (b *Builder) location(ctx context.Context, id string) (*time.Location, error) {
	name, ok, err := b.stores.Timezone(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, perr.WithField(perr.Referencef("store %s has no timezone", id), "timezone_str")
	}
	if loc, ok := b.zones[name]; ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil || name == "" {
		return nil, perr.WithField(perr.Wrapf(err, perr.ErrorCodeParse, "store %s timezone %q", id, name), "timezone_str")
	}
	b.zones[name] = loc
	return loc, nil
}

// Build resolves the store's timezone, reads its last week of samples once and
// integrates the hour, day and week windows ending at now
func (b *Builder) Build(ctx context.Context, id string, now time.Time) (domain.StoreReportRow, error) {
	loc, err := b.location(ctx, id)
	if err != nil {
		return domain.StoreReportRow{}, err
	}
	obs, err := b.obs.Observations(ctx, id, now.Add(-uptime.LastWeek.Length), now)
	if err != nil {
		return domain.StoreReportRow{}, err
	}

	hours := make(map[uptime.Weekday]uptime.DaySchedule, 7)
	schedule := func(d uptime.Weekday) (uptime.DaySchedule, error) {
		if s, ok := hours[d]; ok {
			return s, nil
		}
		s, err := b.stores.BusinessHours(ctx, id, d)
		if err != nil {
			return nil, err
		}
		hours[d] = s
		return s, nil
	}

	var tot [3]uptime.Totals
	for i, w := range []uptime.Window{uptime.LastHour, uptime.LastDay, uptime.LastWeek} {
		if tot[i], err = uptime.Decompose(obs, now, w, loc, schedule); err != nil {
			return domain.StoreReportRow{}, err
		}
	}
	return domain.StoreReportRow{
		StoreID:          id,
		UptimeLastHour:   uptime.Minutes(tot[0].Active),
		DowntimeLastHour: uptime.Minutes(tot[0].Inactive),
		UptimeLastDay:    uptime.Hours(tot[1].Active),
		DowntimeLastDay:  uptime.Hours(tot[1].Inactive),
		UptimeLastWeek:   uptime.Hours(tot[2].Active),
		DowntimeLastWeek: uptime.Hours(tot[2].Inactive),
	}, nil
}
