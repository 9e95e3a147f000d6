// @title         Store Uptime API
// @version       0.1.0
// @description   Batch uptime and downtime reports over store status observations

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "time/tzdata"

	"storeuptime/internal/modkit/repokit"
	"storeuptime/internal/platform/config"
	"storeuptime/internal/platform/logger"
	"storeuptime/internal/platform/metrics"
	phttp "storeuptime/internal/platform/net/http"
	"storeuptime/internal/platform/store"
	"storeuptime/internal/services/api"
	"storeuptime/internal/services/reports/repo"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	l := logger.Get()

	st, err := store.Open(ctx, store.FromConf(root, "storeuptime-api", "api"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	if apiCfg.MayBool("MIGRATE", true) {
		if err := repo.Migrate(ctx, st.PG); err != nil {
			l.Panic().Err(err).Msg("schema migration failed")
		}
	}
	if st.CH != nil {
		if err := repo.NewCH(st.CH).Migrate(ctx); err != nil {
			l.Panic().Err(err).Msg("clickhouse migration failed")
		}
	}

	// http server (reads CORE_API_API_PORT)
	srv := phttp.NewServer(apiCfg)
	a := api.Mount(srv.Router(), api.Options{
		Config:         root,
		Store:          st,
		Metrics:        metrics.New(),
		EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
		EnableProfiler: apiCfg.MayBool("PROFILER", false),
	})
	a.Reports.Start()

	if err := srv.Run(ctx); err != nil {
		l.Error().Err(err).Msg("http server stopped")
	}

	// drain background reports so none is left Running in a shared registry
	dctx, cancel := context.WithTimeout(context.Background(), apiCfg.MayDuration("DRAIN_TIMEOUT", time.Minute))
	defer cancel()
	if err := a.Reports.Close(dctx); err != nil {
		l.Warn().Err(err).Msg("reports still running at exit")
	}
}
