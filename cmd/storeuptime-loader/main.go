package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "time/tzdata"

	"storeuptime/internal/platform/config"
	"storeuptime/internal/platform/logger"
	"storeuptime/internal/platform/store"
	"storeuptime/internal/services/reports/ingest"
	"storeuptime/internal/services/reports/repo"
)

func main() {
	var (
		fTZ     = flag.String("timezones", "", "csv with store_id,timezone_str")
		fHours  = flag.String("hours", "", "csv with store_id,dayOfWeek,start_time_local,end_time_local")
		fStatus = flag.String("statuses", "", "csv with store_id,status,timestamp_utc")
		fBatch  = flag.Int("batch", ingest.DefaultBatch, "rows per COPY batch")
		fMirror = flag.Bool("mirror", false, "also write statuses to clickhouse")
	)
	flag.Parse()

	l := logger.Get()
	if *fTZ == "" && *fHours == "" && *fStatus == "" {
		l.Fatal().Msg("nothing to load: pass -timezones, -hours or -statuses")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := config.New()
	st, err := store.Open(ctx, store.FromConf(root, "storeuptime-loader", "loader"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	if err := repo.Migrate(ctx, st.PG); err != nil {
		l.Panic().Err(err).Msg("schema migration failed")
	}

	var mirror *repo.CH
	if *fMirror {
		if st.CH == nil {
			l.Fatal().Msg("-mirror needs SERVICE_CLICKHOUSE_DBURL")
		}
		mirror = repo.NewCH(st.CH)
		if err := mirror.Migrate(ctx); err != nil {
			l.Panic().Err(err).Msg("clickhouse migration failed")
		}
	}

	started := time.Now()
	// reference data first so hours never invent a timezone that the file provides
	err = st.PG.Tx(ctx, func(q store.RowQuerier) error {
		ld, err := repo.NewLoader(q)
		if err != nil {
			return err
		}
		if err := load(*fTZ, "timezones", func(src io.Reader) (int, error) {
			return ingest.Timezones(src, *fBatch, func(rows []repo.TimezoneRow) error {
				_, err := ld.Timezones(ctx, rows)
				return err
			})
		}); err != nil {
			return err
		}
		if err := load(*fHours, "business hours", func(src io.Reader) (int, error) {
			return ingest.BusinessHours(src, *fBatch, func(rows []repo.HoursRow) error {
				_, err := ld.BusinessHours(ctx, rows)
				return err
			})
		}); err != nil {
			return err
		}
		return load(*fStatus, "statuses", func(src io.Reader) (int, error) {
			return ingest.Statuses(src, *fBatch, func(rows []repo.StatusRow) error {
				if _, err := ld.Statuses(ctx, rows); err != nil {
					return err
				}
				if mirror != nil {
					return mirror.Mirror(ctx, rows)
				}
				return nil
			})
		})
	})
	if err != nil {
		l.Fatal().Err(err).Msg("load failed, nothing committed")
	}
	l.Info().Dur("took", time.Since(started)).Msg("load complete")
}

// load opens path and hands it to fn; an empty path is skipped
func load(path, what string, fn func(io.Reader) (int, error)) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := fn(f)
	if err != nil {
		return err
	}
	logger.Get().Info().Str("file", path).Int("rows", n).Msgf("%s loaded", what)
	return nil
}
