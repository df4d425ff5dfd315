package httpkit

import (
	"net/http"
	"time"

	"sentinel/internal/platform/net/middleware"
)

// SlowRequest is where buffered requests start logging at warn
const SlowRequest = 2 * time.Second

// CommonStack returns the baseline middleware of the versioned api.
// It carries no request timeout so event streams can outlive it, see Bounded.
// No origins means any origin may call the api
func CommonStack(origins ...string) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.AccessLog(SlowRequest),
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: origins}),
		middleware.Compress(),
		middleware.Heartbeat("/health"),
		middleware.StripSlashes(),
	}
}

// DefaultTimeout bounds buffered (non streaming) requests
const DefaultTimeout = 30 * time.Second

// Bounded returns a timeout middleware for buffered routes, d <= 0 uses DefaultTimeout
func Bounded(d time.Duration) func(http.Handler) http.Handler {
	if d <= 0 {
		d = DefaultTimeout
	}
	return middleware.Timeout(d)
}
