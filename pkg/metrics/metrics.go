package metrics

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordHTTPResponseSize records the bytes written for a response.
func (r *Registry) RecordHTTPResponseSize(method, path string, size int) {
	r.HTTPResponseSizeBytes.WithLabelValues(method, path).Observe(float64(size))
}

// IncInFlight and DecInFlight bracket request handling.
func (r *Registry) IncInFlight() { r.HTTPRequestsInFlight.Inc() }
func (r *Registry) DecInFlight() { r.HTTPRequestsInFlight.Dec() }

// RecordMutation counts an AddNode/AddEdge/Reset call.
func (r *Registry) RecordMutation(operation, status string) {
	r.GraphMutationsTotal.WithLabelValues(operation, status).Inc()
}

// SetGraphSize publishes the current node and edge counts.
func (r *Registry) SetGraphSize(nodes, edges int) {
	r.GraphNodesTotal.Set(float64(nodes))
	r.GraphEdgesTotal.Set(float64(edges))
}

// RecordSearch records one A* search. expanded and pathLen are only
// observed for searches that ran to completion.
func (r *Registry) RecordSearch(kind, outcome string, duration time.Duration, expanded, pathLen int) {
	r.SearchesTotal.WithLabelValues(kind, outcome).Inc()
	r.SearchDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if outcome == OutcomeError {
		return
	}
	r.SearchExpanded.WithLabelValues(kind).Observe(float64(expanded))
	if outcome == OutcomeFound {
		r.SearchPathLength.WithLabelValues(kind).Observe(float64(pathLen))
	}
}

// RecordMessage counts one NNG request and its payload sizes.
func (r *Registry) RecordMessage(op, status string, in, out int) {
	r.TransportMessagesTotal.WithLabelValues(op, status).Inc()
	r.TransportBytesTotal.WithLabelValues("in").Add(float64(in))
	r.TransportBytesTotal.WithLabelValues("out").Add(float64(out))
}

// UpdateSystemMetrics refreshes uptime, goroutine and heap gauges.
func (r *Registry) UpdateSystemMetrics() {
	r.mu.Lock()
	defer r.mu.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	r.UptimeSeconds.Set(time.Since(r.startTime).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
}

// Handler serves the registry in the Prometheus exposition format,
// refreshing system gauges on each scrape.
func (r *Registry) Handler() http.Handler {
	inner := promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.UpdateSystemMetrics()
		inner.ServeHTTP(w, req)
	})
}
