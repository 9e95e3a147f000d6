// Package middleware adapts chi middleware and adds the in house request middleware
package middleware

import (
	"compress/flate"
	"net/http"
	"time"

	"storeuptime/internal/platform/logger"
	pnet "storeuptime/internal/platform/net"
	pstrings "storeuptime/internal/platform/strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

// Middleware is the stdlib middleware shape used across the http layers
type Middleware = func(http.Handler) http.Handler

// RequestID attaches or propagates X-Request-ID and stores it on context
func RequestID() Middleware { return chimw.RequestID }

// RealIP sets RemoteAddr to the upstream IP based on X-Forwarded-For headers
func RealIP() Middleware { return chimw.RealIP }

// Timeout cancels the request context after d
func Timeout(d time.Duration) Middleware { return chimw.Timeout(d) }

// NoCache sets headers to disable client and proxy caching
func NoCache() Middleware { return chimw.NoCache }

// CompressTypes are the content types the api serves compressed
var CompressTypes = []string{"text/csv", "application/json", "text/plain"}

// Compress wraps chi's compressor, level is a compress/flate level
func Compress(level int) Middleware {
	c := chimw.NewCompressor(level, CompressTypes...)
	return c.Handler
}

// Heartbeat replies 200 to GET path before routing, for load balancer checks
func Heartbeat(path string) Middleware { return chimw.Heartbeat(path) }

// LogContext copies the chi request id onto the logger context so logger.C picks it up
func LogContext() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := pnet.RequestID(r.Context()); id != "" {
				r = r.WithContext(logger.WithRequest(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORSOptions is a narrow surface over go-chi/cors
type CORSOptions struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// CORS wraps go-chi/cors, filling empty lists with what the report API needs
func CORS(o CORSOptions) Middleware {
	return chicors.Handler(chicors.Options{
		AllowedOrigins:   pstrings.IfEmpty(o.AllowedOrigins, []string{"*"}),
		AllowedMethods:   pstrings.IfEmpty(o.AllowedMethods, []string{"GET", "POST", "HEAD", "OPTIONS"}),
		AllowedHeaders:   pstrings.IfEmpty(o.AllowedHeaders, []string{"Accept", "Content-Type", "X-Request-ID"}),
		ExposedHeaders:   pstrings.IfEmpty(o.ExposedHeaders, []string{"Content-Disposition", "X-Report-Status", "X-Request-ID"}),
		AllowCredentials: o.AllowCredentials,
		MaxAge:           o.MaxAge,
	})
}

// Defaults is the base stack for the API: ids, panic recovery, timeout, compression and no-cache
func Defaults(timeout time.Duration) []Middleware {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return []Middleware{
		RealIP(),
		RequestID(),
		LogContext(),
		RecoverJSON,
		Timeout(timeout),
		Compress(flate.DefaultCompression),
		NoCache(),
	}
}
