// Package metrics owns the prometheus collectors exported at /metrics
// A nil *Metrics is valid and records nothing
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storeuptime"

// Metrics groups every collector the process exports
type Metrics struct {
	reg *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	reportsSubmitted prometheus.Counter
	reportJobs       *prometheus.CounterVec
	reportDuration   prometheus.Histogram
	reportStores     prometheus.Counter
	reportsRunning   prometheus.Gauge
}

// New builds and registers the collectors on a private registry
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		reportsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_submitted_total",
			Help:      "Report jobs accepted.",
		}),
		reportJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_jobs_total",
			Help:      "Report jobs finished by terminal status.",
		}, []string{"status"}),
		reportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_duration_seconds",
			Help:      "Wall time to build one report.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 14),
		}),
		reportStores: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_stores_total",
			Help:      "Store rows written across all reports.",
		}),
		reportsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reports_running",
			Help:      "Report jobs currently executing.",
		}),
	}
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.reportsSubmitted,
		m.reportJobs,
		m.reportDuration,
		m.reportStores,
		m.reportsRunning,
	)
	return m
}

// Handler serves the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Registry exposes the registry for tests and extra collectors
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// ObserveHTTP records one finished request
func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ReportSubmitted counts an accepted report job
func (m *Metrics) ReportSubmitted() {
	if m == nil {
		return
	}
	m.reportsSubmitted.Inc()
}

// ReportStarted marks a job as executing; call the returned func once it ends
func (m *Metrics) ReportStarted() (done func()) {
	if m == nil {
		return func() {}
	}
	m.reportsRunning.Inc()
	return m.reportsRunning.Dec
}

// ReportFinished records a terminal job with its status label, duration and store count
func (m *Metrics) ReportFinished(status string, elapsed time.Duration, stores int) {
	if m == nil {
		return
	}
	m.reportJobs.WithLabelValues(status).Inc()
	m.reportDuration.Observe(elapsed.Seconds())
	m.reportStores.Add(float64(stores))
}
