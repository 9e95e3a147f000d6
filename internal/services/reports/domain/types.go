// Package domain holds report job types, ports and DTOs
package domain

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// JobStatus is the lifecycle state of a report job
type JobStatus string

// Job states; a job leaves Running exactly once
const (
	StatusRunning  JobStatus = "Running"
	StatusComplete JobStatus = "Complete"
	StatusFailed   JobStatus = "Failed"
)

// Terminal reports whether s is a final state
func (s JobStatus) Terminal() bool { return s == StatusComplete || s == StatusFailed }

// Job is one batch report run as tracked by the registry
type Job struct {
	ID           string    `json:"report_id"`
	Status       JobStatus `json:"status"`
	ArtifactPath string    `json:"artifact_path,omitempty"`
	Error        string    `json:"error,omitempty"`
	SubmittedAt  time.Time `json:"submitted_at"`
	FinishedAt   time.Time `json:"finished_at,omitzero"`
	Stores       int       `json:"stores"`
}

// HasArtifact reports whether a finished job produced a file
func (j Job) HasArtifact() bool { return j.Status == StatusComplete && j.ArtifactPath != "" }

// StoreReportRow is one output line; hour values are minutes, day and week values are hours
type StoreReportRow struct {
	StoreID          string
	UptimeLastHour   int64
	DowntimeLastHour int64
	UptimeLastDay    decimal.Decimal
	DowntimeLastDay  decimal.Decimal
	UptimeLastWeek   decimal.Decimal
	DowntimeLastWeek decimal.Decimal
}

// ReportColumns is the fixed artifact header
var ReportColumns = []string{
	"store_id",
	"uptime_last_hour",
	"downtime_last_hour",
	"uptime_last_day",
	"downtime_last_day",
	"uptime_last_week",
	"downtime_last_week",
}

// Record renders r in ReportColumns order
func (r StoreReportRow) Record() []string {
	return []string{
		r.StoreID,
		strconv.FormatInt(r.UptimeLastHour, 10),
		strconv.FormatInt(r.DowntimeLastHour, 10),
		r.UptimeLastDay.StringFixed(2),
		r.DowntimeLastDay.StringFixed(2),
		r.UptimeLastWeek.StringFixed(2),
		r.DowntimeLastWeek.StringFixed(2),
	}
}

// Download is a rendered artifact ready to be served
type Download struct {
	Name        string
	ContentType string
	Path        string
	Bytes       []byte
}
