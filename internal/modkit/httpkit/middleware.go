package httpkit

import (
	"net/http"
	"time"

	"storeuptime/internal/platform/config"
	"storeuptime/internal/platform/metrics"
	"storeuptime/internal/platform/net/middleware"
)

// CommonStack is the root middleware for the API process
// cfg is the CORE_API_ view; m may be nil
func CommonStack(cfg config.Conf, m *metrics.Metrics) []func(http.Handler) http.Handler {
	stack := []func(http.Handler) http.Handler{
		middleware.Heartbeat("/health"),
	}
	stack = append(stack, middleware.Defaults(cfg.MayDuration("REQUEST_TIMEOUT", 30*time.Second))...)
	return append(stack,
		middleware.AccessLogZerolog(middleware.AccessLogOptions{
			Slow: cfg.MayDuration("SLOW_REQUEST", time.Second),
			Skip: []string{"/metrics"},
		}),
		middleware.Metrics(m),
		middleware.CORS(middleware.CORSOptions{
			AllowedOrigins: cfg.MayCSV("CORS_ORIGINS", nil),
		}),
	)
}
