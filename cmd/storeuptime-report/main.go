package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "time/tzdata"

	"storeuptime/internal/modkit"
	"storeuptime/internal/platform/config"
	"storeuptime/internal/platform/logger"
	"storeuptime/internal/platform/store"
	"storeuptime/internal/services/reports/domain"
	reportsmod "storeuptime/internal/services/reports/module"
)

func main() {
	fXLSX := flag.Bool("xlsx", false, "also write an xlsx copy next to the csv")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := config.New()
	l := logger.Get()

	st, err := store.Open(ctx, store.FromConf(root, "storeuptime-report", "report"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	m := reportsmod.New(modkit.DepsFrom(st, root, nil))
	job, err := m.Service().RunNow(ctx)
	if err != nil {
		l.Fatal().Err(err).Msg("report could not be registered")
	}

	switch {
	case job.Status == domain.StatusFailed:
		l.Fatal().Str("report_id", job.ID).Str("error", job.Error).Msg("report failed")
	case !job.HasArtifact():
		l.Info().Str("report_id", job.ID).Msg("report complete with no rows")
		return
	}

	if *fXLSX {
		d, err := m.Service().Export(ctx, job, domain.FormatXLSX)
		if err != nil {
			l.Fatal().Err(err).Msg("xlsx export failed")
		}
		out := strings.TrimSuffix(job.ArtifactPath, ".csv") + ".xlsx"
		if err := os.WriteFile(out, d.Bytes, 0o644); err != nil {
			l.Fatal().Err(err).Str("path", out).Msg("write xlsx")
		}
		l.Info().Str("path", out).Msg("xlsx written")
	}
	fmt.Println(job.ArtifactPath)
}
