package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.GraphNodesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "graph_nodes",
			Help:      "Number of nodes registered in the spatial graph",
		},
	)

	r.GraphEdgesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "graph_edges",
			Help:      "Number of undirected edges in the spatial graph",
		},
	)

	r.GraphMutationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "graph_mutations_total",
			Help:      "Graph mutations by operation and status",
		},
		[]string{"operation", "status"},
	)
}
