package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// MetricsRecorder is an interface for recording HTTP metrics.
// *metrics.Registry implements it.
type MetricsRecorder interface {
	RecordHTTPRequest(method, path, status string, duration time.Duration)
	RecordHTTPResponseSize(method, path string, size int)
	IncInFlight()
	DecInFlight()
}

// statusWriter captures the status code and bytes written.
type statusWriter struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func wrapWriter(w http.ResponseWriter) *statusWriter {
	if sw, ok := w.(*statusWriter); ok {
		return sw
	}
	return &statusWriter{ResponseWriter: w, status: http.StatusOK}
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// RouteLabel collapses a request path to its route so that ids in the URL
// do not become label values: "/path/A/B" is reported as "/path".
func RouteLabel(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}
	switch trimmed {
	case "nodes", "edges", "path", "find-path", "nearest", "graph", "graphql", "health", "metrics":
		return "/" + trimmed
	case "":
		return "/"
	default:
		return "other"
	}
}

// Metrics records request count, latency, response size and in-flight
// requests.
func Metrics(recorder MetricsRecorder) Middleware {
	return func(next http.Handler) http.Handler {
		if recorder == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder.IncInFlight()
			defer recorder.DecInFlight()

			sw := wrapWriter(w)
			next.ServeHTTP(sw, r)

			route := RouteLabel(r.URL.Path)
			recorder.RecordHTTPRequest(r.Method, route, strconv.Itoa(sw.status), time.Since(start))
			recorder.RecordHTTPResponseSize(r.Method, route, sw.bytes)
		})
	}
}
