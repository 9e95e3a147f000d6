package module

import (
	"time"

	"storeuptime/internal/platform/config"
)

// Registry and observation backends
const (
	RegistryMemory = "memory"
	RegistryRedis  = "redis"

	ObservationsPG         = "pg"
	ObservationsClickhouse = "clickhouse"
)

// Options holds configuration for the reports module
type Options struct {
	Dir          string
	Registry     string
	Observations string
	Cron         string
	// CronLease claims each tick in postgres so only one replica fires it
	CronLease bool

	Retries   int
	RetryBase time.Duration
	Timeout   time.Duration

	// Retention keeps finished jobs this long; 0 keeps them for the process lifetime
	Retention time.Duration
	// RunningTTL expires a Running job in redis if its process dies before finishing
	RunningTTL time.Duration
}

// FromConfig reads the reports options from config with CORE_API_REPORT_ prefix
func FromConfig(cfg config.Conf) Options {
	rc := cfg.Prefix("CORE_API_REPORT_")
	return Options{
		Dir:          rc.MayString("DIR", "./reports"),
		Registry:     rc.MayEnum("REGISTRY", RegistryMemory, RegistryMemory, RegistryRedis),
		Observations: rc.MayEnum("OBSERVATIONS", ObservationsPG, ObservationsPG, ObservationsClickhouse),
		Cron:         rc.MayString("CRON", ""),
		CronLease:    rc.MayBool("CRON_LEASE", true),
		Retries:      rc.MayInt("RETRIES", 3),
		RetryBase:    rc.MayDuration("RETRY_BASE", 500*time.Millisecond),
		Timeout:      rc.MayDuration("TIMEOUT", 30*time.Minute),
		Retention:    rc.MayDuration("RETENTION", 0),
		RunningTTL:   rc.MayDuration("RUNNING_TTL", 2*time.Hour),
	}
}
