// Package module wires meta endpoints into the API
package module

import (
	"net/http"
	"time"

	"storeuptime/internal/modkit"
	"storeuptime/internal/modkit/httpkit"
	"storeuptime/internal/modkit/repokit"
	str "storeuptime/internal/platform/strings"
	metahttp "storeuptime/internal/services/api/meta/http"
)

// Module implements the modkit.Module interface
type Module struct {
	name     string
	prefix   string
	mws      []func(http.Handler) http.Handler
	register func(httpkit.Router)

	startedAt time.Time
}

var _ modkit.Module = (*Module)(nil)

// New constructs a meta module; guard answers the readiness probe and may be nil
func New(deps modkit.Deps, guard repokit.Guarder, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	m := &Module{
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		startedAt: time.Now(),
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		metahttp.Register(r, metahttp.Deps{
			ServiceName:  "storeuptime-api",
			StartedAt:    m.startedAt,
			Guard:        guard,
			ReadyTimeout: deps.Cfg.Prefix("CORE_API_").MayDuration("READY_TIMEOUT", 2*time.Second),
		})
		external(r)
	}
	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.Prefix(), m.mws, m.register)
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.name }

// Prefix returns the mount path
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
