package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "pathfinder"

// Search outcomes used as the "outcome" label.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Search kinds used as the "kind" label.
const (
	KindGraph = "graph"
	KindGrid  = "grid"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestsInFlight  prometheus.Gauge
	HTTPResponseSizeBytes *prometheus.HistogramVec

	// Graph store metrics
	GraphNodesTotal     prometheus.Gauge
	GraphEdgesTotal     prometheus.Gauge
	GraphMutationsTotal *prometheus.CounterVec

	// Search metrics
	SearchesTotal    *prometheus.CounterVec
	SearchDuration   *prometheus.HistogramVec
	SearchExpanded   *prometheus.HistogramVec
	SearchPathLength *prometheus.HistogramVec

	// NNG transport metrics
	TransportMessagesTotal *prometheus.CounterVec
	TransportBytesTotal    *prometheus.CounterVec

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge

	registry  *prometheus.Registry
	startTime time.Time
	mu        sync.Mutex
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry:  prometheus.NewRegistry(),
		startTime: time.Now(),
	}

	r.initHTTPMetrics()
	r.initGraphMetrics()
	r.initSearchMetrics()
	r.initTransportMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
