package domain

import (
	"context"
	"time"

	"storeuptime/internal/core/uptime"
)

// StoreReader resolves the reference data a report needs per store
type StoreReader interface {
	// Stores lists every store with a timezone assignment, ascending
	Stores(ctx context.Context) ([]string, error)
	// Timezone returns the IANA name for id; ok is false when none is assigned
	Timezone(ctx context.Context, id string) (tz string, ok bool, err error)
	// BusinessHours returns the configured intervals for id on day, possibly none
	BusinessHours(ctx context.Context, id string, day uptime.Weekday) (uptime.DaySchedule, error)
}

// ObservationReader reads status samples
type ObservationReader interface {
	// MaxTimestamp is the newest sample across all stores; ok is false when there are none
	MaxTimestamp(ctx context.Context) (ts time.Time, ok bool, err error)
	// Observations returns samples for id in (from, to], ascending
	Observations(ctx context.Context, id string, from, to time.Time) ([]uptime.Observation, error)
}

// Registry tracks jobs by id
type Registry interface {
	// Create registers a Running job; a duplicate id is a conflict
	Create(ctx context.Context, job Job) error
	// Get returns the job or a not found error
	Get(ctx context.Context, id string) (Job, error)
	// Finish moves a Running job to job.Status; any other transition is a conflict
	Finish(ctx context.Context, job Job) error
}

// ArtifactSink persists report rows and renders them for download
type ArtifactSink interface {
	// Write stores rows under id and returns the artifact path
	Write(ctx context.Context, id string, rows []StoreReportRow) (string, error)
	// Open renders the artifact at path in format
	Open(ctx context.Context, path, format string) (Download, error)
}

// ServicePort is consumed by handlers and the cron trigger
type ServicePort interface {
	Submit(ctx context.Context) (string, error)
	Retrieve(ctx context.Context, id string) (Job, error)
	Export(ctx context.Context, job Job, format string) (Download, error)
}
