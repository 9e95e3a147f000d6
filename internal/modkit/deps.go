package modkit

import (
	"storeuptime/internal/modkit/repokit"
	"storeuptime/internal/platform/config"
	"storeuptime/internal/platform/logger"
	"storeuptime/internal/platform/metrics"
	"storeuptime/internal/platform/store"

	goredis "github.com/redis/go-redis/v9"
)

// Deps holds the process wide dependencies handed to every module
// optional backends are nil when not configured
type Deps struct {
	Log     logger.Logger
	Cfg     config.Conf
	PG      repokit.TxRunner
	CH      store.Clickhouse
	RDS     *goredis.Client
	Metrics *metrics.Metrics
}

// DepsFrom lifts the opened store backends into Deps
func DepsFrom(st *store.Store, cfg config.Conf, m *metrics.Metrics) Deps {
	d := Deps{Log: *logger.Get(), Cfg: cfg, Metrics: m}
	if st != nil {
		d.PG, d.CH, d.RDS = st.PG, st.CH, st.RDS
	}
	return d
}
