package service

import (
	"context"
	"errors"
	"sync"
	"time"

	perr "storeuptime/internal/platform/errors"
	"storeuptime/internal/platform/logger"
	"storeuptime/internal/services/reports/domain"
	"storeuptime/internal/services/reports/guardrails"

	"github.com/robfig/cron/v3"
)

// cronParser accepts standard five field expressions and descriptors like @hourly
var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseSchedule validates a cron expression
func ParseSchedule(expr string) (cron.Schedule, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, perr.WithField(perr.Wrapf(err, perr.ErrorCodeValidation, "cron expression %q", expr), "cron")
	}
	return sched, nil
}

// Trigger submits a report on every tick of a schedule and skips a tick while
// the job it started last is still Running
type Trigger struct {
	port  domain.ServicePort
	c     *cron.Cron
	lease guardrails.Lease

	mu   sync.Mutex
	last string
}

// TriggerOption customises a Trigger
type TriggerOption func(*Trigger)

// WithLease makes replicas sharing a schedule fire each tick once
func WithLease(l guardrails.Lease) TriggerOption {
	return func(t *Trigger) { t.lease = l }
}

// NewTrigger schedules port.Submit on expr; call Start to begin ticking
func NewTrigger(port domain.ServicePort, expr string, opts ...TriggerOption) (*Trigger, error) {
	sched, err := ParseSchedule(expr)
	if err != nil {
		return nil, err
	}
	t := &Trigger{port: port, c: cron.New(cron.WithParser(cronParser), cron.WithLogger(cronLog{}))}
	for _, o := range opts {
		o(t)
	}
	t.c.Schedule(sched, cron.FuncJob(func() { t.Tick(context.Background(), time.Now()) }))
	return t, nil
}

// Start begins ticking in the background
func (t *Trigger) Start() { t.c.Start() }

// Stop halts ticking and waits for a running tick to return
func (t *Trigger) Stop(ctx context.Context) error {
	select {
	case <-t.c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Tick is one scheduled firing at time at; under a lease only the replica that claims
// the minute of at fires
func (t *Trigger) Tick(ctx context.Context, at time.Time) string {
	if t.lease == nil {
		return t.Fire(ctx)
	}
	var id string
	err := t.lease(ctx, at.Truncate(time.Minute), func(ctx context.Context) error {
		id = t.Fire(ctx)
		return nil
	})
	switch {
	case errors.Is(err, guardrails.ErrLeaseHeld):
		logger.Named("report-cron").Debug().Time("tick", at).Msg("tick claimed by another replica")
	case err != nil:
		logger.Named("report-cron").Error().Err(err).Time("tick", at).Msg("tick lease failed, skipping")
	}
	return id
}

// Fire runs one tick and returns the submitted id, or "" when the tick was skipped
func (t *Trigger) Fire(ctx context.Context) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	log := logger.Named("report-cron")
	if t.last != "" {
		job, err := t.port.Retrieve(ctx, t.last)
		if err == nil && job.Status == domain.StatusRunning {
			log.Info().Str("report_id", t.last).Msg("previous report still running, skipping tick")
			return ""
		}
	}
	id, err := t.port.Submit(ctx)
	if err != nil {
		log.Error().Err(err).Msg("scheduled report not submitted")
		return ""
	}
	t.last = id
	log.Info().Str("report_id", id).Msg("scheduled report submitted")
	return id
}

// cronLog routes cron's own messages through zerolog
type cronLog struct{}

func (cronLog) Info(msg string, kv ...any) {
	logger.Named("report-cron").Debug().Fields(kv).Msg(msg)
}

func (cronLog) Error(err error, msg string, kv ...any) {
	logger.Named("report-cron").Error().Err(err).Fields(kv).Msg(msg)
}
