package store

import (
	"time"

	"storeuptime/internal/platform/config"
)

// Config selects and configures backends
type Config struct {
	// AppName is reported to postgres as application_name and to clickhouse as client info
	AppName string

	PG  PGConfig
	CH  CHConfig
	RDS RedisConfig
}

// PGConfig configures the postgres pool and its tracer
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// CHConfig configures clickhouse
type CHConfig struct {
	Enabled bool
	URL     string
	Role    string
}

// RedisConfig configures redis
type RedisConfig struct {
	Enabled  bool
	Addr     string
	DB       int
	Password string
}

// FromConf reads SERVICE_PGSQL_*, SERVICE_CLICKHOUSE_* and SERVICE_REDIS_* from root
// Postgres is always required; clickhouse and redis are enabled by their address being set
func FromConf(root config.Conf, app, role string) Config {
	pg := root.Prefix("SERVICE_PGSQL_")
	ch := root.Prefix("SERVICE_CLICKHOUSE_")
	rd := root.Prefix("SERVICE_REDIS_")

	cfg := Config{
		AppName: app,
		PG: PGConfig{
			Enabled:     true,
			URL:         pg.MustString("DBURL"),
			MaxConns:    int32(pg.MayInt("MAX_CONNS", 8)),
			SlowQueryMs: pg.MayInt("SLOW_MS", 500),
			LogSQL:      pg.MayBool("LOG_SQL", false),
		},
		CH: CHConfig{
			URL:  ch.MayString("DBURL", ""),
			Role: role,
		},
		RDS: RedisConfig{
			Addr:     rd.MayString("ADDR", ""),
			DB:       rd.MayInt("DB", 0),
			Password: rd.MayString("PASSWORD", ""),
		},
	}
	cfg.CH.Enabled = cfg.CH.URL != ""
	cfg.RDS.Enabled = cfg.RDS.Addr != ""
	return cfg
}
