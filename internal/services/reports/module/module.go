// Package module wires the reports service into the API using modkit
package module

import (
	"context"
	"net/http"

	"storeuptime/internal/modkit"
	"storeuptime/internal/modkit/httpkit"
	"storeuptime/internal/platform/logger"
	str "storeuptime/internal/platform/strings"
	"storeuptime/internal/services/reports/artifact"
	"storeuptime/internal/services/reports/domain"
	"storeuptime/internal/services/reports/guardrails"
	reportshttp "storeuptime/internal/services/reports/http"
	"storeuptime/internal/services/reports/registry"
	"storeuptime/internal/services/reports/repo"
	"storeuptime/internal/services/reports/service"
)

// Module implements the reports module
type Module struct {
	deps   modkit.Deps
	opts   Options
	name   string
	prefix string

	mws      []func(http.Handler) http.Handler
	ports    Ports
	register func(httpkit.Router)

	svc     *service.Svc
	trigger *service.Trigger
}

var _ modkit.Module = (*Module)(nil)

// New constructs the reports module from deps and CORE_API_REPORT_* config
// postgres is required; redis and clickhouse only when selected
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("reports"), modkit.WithPrefix("/reports")}, opts...)...)
	o := FromConfig(deps.Cfg)
	log := logger.Named("reports")

	if deps.PG == nil {
		log.Panic().Msg("reports module requires postgres")
	}

	var reg domain.Registry
	switch o.Registry {
	case RegistryRedis:
		if deps.RDS == nil {
			log.Panic().Str("registry", o.Registry).Msg("redis registry selected but redis is not configured")
		}
		reg = registry.NewRedis(deps.RDS, o.Retention, o.RunningTTL)
	default:
		reg = registry.NewMemory(o.Retention)
	}

	svcOpts := []service.Option{service.WithMetrics(deps.Metrics)}
	if o.Observations == ObservationsClickhouse {
		if deps.CH == nil {
			log.Panic().Str("observations", o.Observations).Msg("clickhouse observations selected but clickhouse is not configured")
		}
		svcOpts = append(svcOpts, service.WithObservations(repo.NewCH(deps.CH)))
	}

	svc := service.New(
		deps.PG, repo.NewPG(), reg, artifact.NewFiles(o.Dir),
		service.Config{Retries: o.Retries, RetryBase: o.RetryBase, Timeout: o.Timeout},
		svcOpts...,
	)

	m := &Module{
		deps:   deps,
		opts:   o,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		svc:    svc,
	}
	m.ports = Ports{Reports: adaptReportsPort{svc: svc}}

	if o.Cron != "" {
		var topts []service.TriggerOption
		if o.CronLease {
			topts = append(topts, service.WithLease(guardrails.MakeTickLease(deps.PG)))
		}
		t, err := service.NewTrigger(m.ports.Reports, o.Cron, topts...)
		if err != nil {
			log.Panic().Err(err).Str("cron", o.Cron).Msg("invalid report schedule")
		}
		m.trigger = t
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		reportshttp.Register(r, m.ports.Reports)
		external(r)
	}
	log.Info().
		Str("registry", o.Registry).
		Str("observations", o.Observations).
		Str("dir", o.Dir).
		Bool("scheduled", m.trigger != nil).
		Msg("reports module ready")
	return m
}

// MountRoutes mounts the module routes under its prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.Prefix(), m.mws, m.register)
}

// MountLegacy mounts /trigger_report and /get_report at the level of r
func (m *Module) MountLegacy(r httpkit.Router) {
	reportshttp.RegisterLegacy(r, m.ports.Reports)
}

// Start begins scheduled reports when a cron expression is configured
func (m *Module) Start() {
	if m.trigger != nil {
		m.trigger.Start()
	}
}

// Close stops the schedule and waits for running jobs until ctx ends
func (m *Module) Close(ctx context.Context) error {
	if m.trigger != nil {
		if err := m.trigger.Stop(ctx); err != nil {
			return err
		}
	}
	return m.svc.Wait(ctx)
}

// Service exposes the concrete service for synchronous runs
func (m *Module) Service() *service.Svc { return m.svc }

// Options returns the resolved configuration
func (m *Module) Options() Options { return m.opts }

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }
