// Package http provides meta endpoints
package http

import (
	"net/http"
	"time"

	"storeuptime/internal/core/version"
	"storeuptime/internal/modkit/httpkit"
	"storeuptime/internal/modkit/repokit"
	perr "storeuptime/internal/platform/errors"
)

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	// Guard pings the backing stores; nil reports the readiness check as skipped
	Guard repokit.Guarder
	// ReadyTimeout bounds the guard; 0 -> 2s
	ReadyTimeout time.Duration
}

type handlers struct {
	deps Deps
	now  func() time.Time
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	if d.ReadyTimeout <= 0 {
		d.ReadyTimeout = 2 * time.Second
	}
	h := &handlers{deps: d, now: time.Now}

	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
}

// HealthResponse is the health payload
// swagger:model
type HealthResponse struct {
	OK      bool   `json:"ok"       example:"true"`
	Service string `json:"service"  example:"storeuptime-api"`
	Started string `json:"started"  example:"2025-09-03T13:00:00Z"`
	Now     string `json:"now"      example:"2025-09-03T13:05:00Z"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string `json:"status" example:"ok"` // ok skipped
	Now    string `json:"now"    example:"2025-09-03T13:05:00Z"`
}

// ServiceResponse describes service info
type ServiceResponse struct {
	Name    string `json:"name"    example:"storeuptime-api"`
	Started string `json:"started" example:"2025-09-03T13:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"`
}

// swagger:route GET /api/v1/meta/health Meta metaHealth
// @Summary Health check
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse "ok"
// @Router /api/v1/meta/health [get]
func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     h.now().UTC().Format(time.RFC3339),
	}, nil
}

// swagger:route GET /api/v1/meta/ready Meta metaReady
// @Summary Readiness probe; 503 when a store does not answer
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse "ok"
// @Failure 503 "a store is down"
// @Router /api/v1/meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	now := h.now().UTC().Format(time.RFC3339)
	if h.deps.Guard == nil {
		return ReadyResponse{Status: "skipped", Now: now}, nil
	}
	if err := repokit.Ready(r.Context(), h.deps.Guard, h.deps.ReadyTimeout); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "not ready")
	}
	return ReadyResponse{Status: "ok", Now: now}, nil
}

// swagger:route GET /api/v1/meta/version Meta metaVersion
// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo "ok"
// @Router /api/v1/meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Get(), nil
}

// swagger:route GET /api/v1/meta/service Meta metaService
// @Summary Service info and uptime
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse "ok"
// @Router /api/v1/meta/service [get]
func (h *handlers) service(_ *http.Request) (any, error) {
	return ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(h.now().Sub(h.deps.StartedAt) / time.Second),
	}, nil
}
