package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"storeuptime/internal/core/uptime"
	"storeuptime/internal/modkit/repokit"
	"storeuptime/internal/platform/store"
	"storeuptime/internal/services/reports/repo"
)

// memRepo is an in-memory repo.Repo
type memRepo struct {
	mu    sync.Mutex
	tz    map[string]string
	hours map[string]map[uptime.Weekday]uptime.DaySchedule
	obs   map[string][]uptime.Observation

	hoursCalls int
	// obsErrs are returned by Observations, one per call, before data is served
	obsErrs []error
	panicOn string
}

var _ repo.Repo = (*memRepo)(nil)

func newMemRepo() *memRepo {
	return &memRepo{
		tz:    map[string]string{},
		hours: map[string]map[uptime.Weekday]uptime.DaySchedule{},
		obs:   map[string][]uptime.Observation{},
	}
}

func (m *memRepo) Stores(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.tz))
	for id := range m.tz {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memRepo) Timezone(_ context.Context, id string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tz, ok := m.tz[id]
	return tz, ok, nil
}

func (m *memRepo) BusinessHours(_ context.Context, id string, day uptime.Weekday) (uptime.DaySchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hoursCalls++
	return m.hours[id][day], nil
}

func (m *memRepo) MaxTimestamp(context.Context) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var (
		max time.Time
		ok  bool
	)
	for _, list := range m.obs {
		for _, o := range list {
			if !ok || o.At.After(max) {
				max, ok = o.At, true
			}
		}
	}
	return max, ok, nil
}

func (m *memRepo) Observations(_ context.Context, id string, from, to time.Time) ([]uptime.Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == m.panicOn {
		panic("corrupt page")
	}
	if len(m.obsErrs) > 0 {
		err := m.obsErrs[0]
		m.obsErrs = m.obsErrs[1:]
		return nil, err
	}
	var out []uptime.Observation
	for _, o := range m.obs[id] {
		if o.At.After(from) && !o.At.After(to) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memRepo) binder() repokit.Binder[repo.Repo] {
	return repokit.BindFunc[repo.Repo](func(repokit.Queryer) repo.Repo { return m })
}

// fakeTx runs fn directly and counts transactions
type fakeTx struct {
	mu  sync.Mutex
	txs int
}

func (f *fakeTx) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (f *fakeTx) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, nil }
func (f *fakeTx) QueryRow(context.Context, string, ...any) store.Row             { return nil }

func (f *fakeTx) Tx(ctx context.Context, fn func(q store.RowQuerier) error) error {
	f.mu.Lock()
	f.txs++
	f.mu.Unlock()
	return fn(f)
}
