// Package registry tracks report jobs in process memory or in redis
package registry

import (
	"context"
	"sync"
	"time"

	perr "storeuptime/internal/platform/errors"
	"storeuptime/internal/services/reports/domain"
)

// Memory is a mutex guarded in-process registry
// finished jobs older than retention are forgotten; zero retention keeps them forever
type Memory struct {
	mu        sync.Mutex
	jobs      map[string]domain.Job
	retention time.Duration
	now       func() time.Time
}

var _ domain.Registry = (*Memory)(nil)

// NewMemory builds an empty registry
func NewMemory(retention time.Duration) *Memory {
	return &Memory{jobs: map[string]domain.Job{}, retention: retention, now: time.Now}
}

// Create registers job as Running
func (m *Memory) Create(_ context.Context, job domain.Job) error {
	if job.ID == "" {
		return perr.Validationf("report id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prune()
	if _, ok := m.jobs[job.ID]; ok {
		return perr.Conflictf("report %s already exists", job.ID)
	}
	job.Status = domain.StatusRunning
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = m.now().UTC()
	}
	m.jobs[job.ID] = job
	return nil
}

// Get returns a copy of the job
func (m *Memory) Get(_ context.Context, id string) (domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prune()
	job, ok := m.jobs[id]
	if !ok {
		return domain.Job{}, perr.NotFoundf("report %s not found", id)
	}
	return job, nil
}

// Finish records the terminal state of a Running job
func (m *Memory) Finish(_ context.Context, job domain.Job) error {
	if !job.Status.Terminal() {
		return perr.Validationf("report %s cannot finish as %s", job.ID, job.Status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.jobs[job.ID]
	if !ok {
		return perr.NotFoundf("report %s not found", job.ID)
	}
	if cur.Status != domain.StatusRunning {
		return perr.Conflictf("report %s already %s", job.ID, cur.Status)
	}
	cur.Status = job.Status
	cur.ArtifactPath = job.ArtifactPath
	cur.Error = job.Error
	cur.Stores = job.Stores
	cur.FinishedAt = job.FinishedAt
	if cur.FinishedAt.IsZero() {
		cur.FinishedAt = m.now().UTC()
	}
	m.jobs[job.ID] = cur
	return nil
}

// Len reports how many jobs are tracked
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

// prune drops expired finished jobs; callers hold mu
func (m *Memory) prune() {
	if m.retention <= 0 {
		return
	}
	cutoff := m.now().Add(-m.retention)
	for id, j := range m.jobs {
		if j.Status.Terminal() && j.FinishedAt.Before(cutoff) {
			delete(m.jobs, id)
		}
	}
}
