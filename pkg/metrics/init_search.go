package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSearchMetrics() {
	r.SearchesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "searches_total",
			Help:      "A* searches by kind (graph, grid) and outcome",
		},
		[]string{"kind", "outcome"},
	)

	r.SearchDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_duration_seconds",
			Help:      "A* search latency in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"kind"},
	)

	r.SearchExpanded = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_expanded_nodes",
			Help:      "Frontier pops per search",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		},
		[]string{"kind"},
	)

	r.SearchPathLength = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_path_length",
			Help:      "Number of nodes on returned paths",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"kind"},
	)
}
