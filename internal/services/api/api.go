// Package api composes the HTTP API from its modules
package api

import (
	"net/http"

	"storeuptime/internal/modkit"
	"storeuptime/internal/modkit/httpkit"
	"storeuptime/internal/modkit/module"
	"storeuptime/internal/modkit/swaggerkit"
	"storeuptime/internal/platform/config"
	"storeuptime/internal/platform/metrics"
	phttp "storeuptime/internal/platform/net/http"
	"storeuptime/internal/platform/store"

	metamod "storeuptime/internal/services/api/meta/module"
	reportsmod "storeuptime/internal/services/reports/module"
)

// Options are the API options
type Options struct {
	// Config is the root view; the API reads CORE_API_* below it
	Config         config.Conf
	Store          *store.Store
	Metrics        *metrics.Metrics
	EnableSwagger  bool
	EnableProfiler bool
}

// API is the mounted application; Reports owns background jobs that must be drained on shutdown
type API struct {
	Reports *reportsmod.Module
}

// Mount builds every module and mounts it onto r
// versioned routes live under /api/v1; the legacy report routes stay at the root
func Mount(r phttp.Router, opt Options) *API {
	deps := modkit.DepsFrom(opt.Store, opt.Config, opt.Metrics)

	reports := reportsmod.New(deps)
	mods := []module.Module{
		metamod.New(deps, opt.Store),
		reports,
	}

	stack := httpkit.CommonStack(opt.Config.Prefix("CORE_API_"), opt.Metrics)
	httpkit.MountUnder(r, "/api/v1", stack, func(v1 httpkit.Router) {
		for _, m := range mods {
			// cross module lookups go through the registry
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(v1)
		}
	})
	httpkit.MountUnder(r, "", stack, func(root httpkit.Router) {
		reports.MountLegacy(root)
		// answered by the heartbeat in stack; the route makes the group match
		root.Get("/health", func(http.ResponseWriter, *http.Request) {})
	})

	if opt.Metrics != nil {
		r.Handle("/metrics", opt.Metrics.Handler())
	}
	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	return &API{Reports: reports}
}
