// Package service runs batch report jobs and serves their results
package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"storeuptime/internal/modkit/repokit"
	perr "storeuptime/internal/platform/errors"
	"storeuptime/internal/platform/logger"
	"storeuptime/internal/platform/metrics"
	"storeuptime/internal/services/reports/domain"
	"storeuptime/internal/services/reports/repo"

	"github.com/google/uuid"
)

// Service defines the reports service contract
type Service interface {
	domain.ServicePort
}

// Config holds the job execution knobs
type Config struct {
	// Retries is the number of attempts per job; <=0 -> 1
	Retries int
	// RetryBase is the first backoff between attempts; <=0 -> 500ms
	RetryBase time.Duration
	// Timeout bounds one job across all attempts; 0 = unlimited
	Timeout time.Duration
}

// Svc implements the reports service
type Svc struct {
	db     repokit.TxRunner
	binder repokit.Binder[repo.Repo]
	reg    domain.Registry
	sink   domain.ArtifactSink
	cfg    Config

	// obs overrides the bound repo as the observation source when set
	obs     domain.ObservationReader
	metrics *metrics.Metrics
	newID   func() string
	now     func() time.Time

	// base outlives requests so background jobs keep running after Submit returns
	base context.Context
	wg   sync.WaitGroup
}

var _ Service = (*Svc)(nil)

// Option customises a Svc
type Option func(*Svc)

// WithObservations reads samples from obs instead of postgres
func WithObservations(obs domain.ObservationReader) Option {
	return func(s *Svc) { s.obs = obs }
}

// WithMetrics records job counters on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Svc) { s.metrics = m }
}

// WithBaseContext sets the parent context of background jobs
func WithBaseContext(ctx context.Context) Option {
	return func(s *Svc) { s.base = ctx }
}

// WithIDs replaces the uuid v4 job id source
func WithIDs(fn func() string) Option {
	return func(s *Svc) { s.newID = fn }
}

// New constructs a reports service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], reg domain.Registry, sink domain.ArtifactSink, cfg Config, opts ...Option) *Svc {
	if db == nil {
		panic("reports.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("reports.Service requires a non nil Repo binder")
	}
	if reg == nil || sink == nil {
		panic("reports.Service requires a registry and an artifact sink")
	}
	s := &Svc{
		db:     db,
		binder: binder,
		reg:    reg,
		sink:   sink,
		cfg:    cfg,
		newID:  func() string { return uuid.NewString() },
		now:    time.Now,
		base:   context.Background(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Submit registers a Running job, starts it in the background and returns its id at once
func (s *Svc) Submit(ctx context.Context) (string, error) {
	id, err := s.register(ctx)
	if err != nil {
		return "", err
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.execute(logger.WithReport(s.base, id), id)
	}()
	return id, nil
}

// RunNow registers a job and runs it on the caller's goroutine, returning its final state
func (s *Svc) RunNow(ctx context.Context) (domain.Job, error) {
	id, err := s.register(ctx)
	if err != nil {
		return domain.Job{}, err
	}
	s.execute(logger.WithReport(ctx, id), id)
	return s.reg.Get(context.WithoutCancel(ctx), id)
}

// Retrieve returns the job state; unknown ids are not found
func (s *Svc) Retrieve(ctx context.Context, id string) (domain.Job, error) {
	return s.reg.Get(ctx, id)
}

// Export renders the artifact of a complete job
func (s *Svc) Export(ctx context.Context, job domain.Job, format string) (domain.Download, error) {
	if !job.HasArtifact() {
		return domain.Download{}, perr.Conflictf("report %s has no file to download", job.ID)
	}
	return s.sink.Open(ctx, job.ArtifactPath, format)
}

// Wait blocks until every background job has finished or ctx ends
func (s *Svc) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Svc) register(ctx context.Context) (string, error) {
	id := s.newID()
	if err := s.reg.Create(ctx, domain.Job{ID: id, SubmittedAt: s.now().UTC()}); err != nil {
		return "", err
	}
	s.metrics.ReportSubmitted()
	return id, nil
}

// execute runs the job and always records a terminal state
func (s *Svc) execute(ctx context.Context, id string) {
	log := logger.C(ctx)
	done := s.metrics.ReportStarted()
	defer done()

	start := s.now()
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	path, stores, err := s.runWithRetry(ctx, id)
	job := domain.Job{ID: id, Status: domain.StatusComplete, ArtifactPath: path, Stores: stores, FinishedAt: s.now().UTC()}
	if err != nil {
		job.Status = domain.StatusFailed
		job.ArtifactPath = ""
		job.Error = err.Error()
	}

	// finish must land even when the job ran out of time
	if ferr := s.reg.Finish(context.WithoutCancel(ctx), job); ferr != nil {
		log.Error().Err(ferr).Msg("report finish not recorded")
	}
	elapsed := s.now().Sub(start)
	s.metrics.ReportFinished(string(job.Status), elapsed, stores)

	if err != nil {
		log.Error().Err(err).Str("code", perr.CodeOf(err).String()).Dur("elapsed", elapsed).Msg("report failed")
		return
	}
	log.Info().Int("stores", stores).Str("artifact", path).Dur("elapsed", elapsed).Msg("report complete")
}

func (s *Svc) runWithRetry(ctx context.Context, id string) (string, int, error) {
	attempts := max(s.cfg.Retries, 1)
	base := s.cfg.RetryBase
	if base <= 0 {
		base = 500 * time.Millisecond
	}

	var last error
	for i := range attempts {
		path, stores, err := s.runOnce(ctx, id)
		if err == nil {
			return path, stores, nil
		}
		last = err

		if !perr.Retryable(err) || i == attempts-1 {
			break
		}
		logger.C(ctx).Warn().Err(err).Int("attempt", i+1).Msg("report attempt failed, retrying")

		// exponential backoff with jitter, capped at 30s
		d := min(base<<i, 30*time.Second)
		j := d/2 + time.Duration(rand.Int63n(int64(d/2)+1))
		if se := sleepCtx(ctx, j); se != nil {
			return "", 0, perr.Wrap(se, perr.ErrorCodeTimeout, "report retry")
		}
	}
	return "", 0, last
}

// runOnce computes every row inside one transaction and writes the artifact
func (s *Svc) runOnce(ctx context.Context, id string) (path string, stores int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = perr.PanicErrf("report %s panicked: %v", id, r)
		}
	}()

	err = s.db.Tx(ctx, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		var obs domain.ObservationReader = r
		if s.obs != nil {
			obs = s.obs
		}

		now, ok, err := obs.MaxTimestamp(ctx)
		if err != nil {
			return err
		}
		if !ok {
			logger.C(ctx).Info().Msg("no observations, nothing to report")
			return nil
		}

		ids, err := r.Stores(ctx)
		if err != nil {
			return err
		}
		b := NewBuilder(r, obs)
		rows := make([]domain.StoreReportRow, 0, len(ids))
		for _, sid := range ids {
			if err := ctx.Err(); err != nil {
				return perr.Wrap(err, perr.ErrorCodeTimeout, "report cancelled")
			}
			row, err := b.Build(ctx, sid, now)
			if err != nil {
				return fmt.Errorf("store %s: %w", sid, err)
			}
			rows = append(rows, row)
		}
		stores = len(rows)
		if stores == 0 {
			return nil
		}
		path, err = s.sink.Write(ctx, id, rows)
		return err
	})
	if err != nil {
		return "", 0, err
	}
	return path, stores, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
