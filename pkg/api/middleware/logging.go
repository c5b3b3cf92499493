package middleware

import (
	"net/http"
	"time"

	"github.com/dd0wney/cluso-pathfinder/pkg/logging"
)

// Logging writes one structured entry per request. Server errors log at
// ERROR, client errors at WARN and everything else at INFO.
func Logging(logger logging.Logger) Middleware {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := wrapWriter(w)
			next.ServeHTTP(sw, r)

			log := logging.FromContext(r.Context(), logger)
			fields := []logging.Field{
				logging.String("method", r.Method),
				logging.Path(r.URL.Path),
				logging.Int("status", sw.status),
				logging.Int("bytes", sw.bytes),
				logging.Latency(time.Since(start)),
			}
			switch {
			case sw.status >= 500:
				log.Error("HTTP request", fields...)
			case sw.status >= 400:
				log.Warn("HTTP request", fields...)
			default:
				log.Info("HTTP request", fields...)
			}
		})
	}
}
