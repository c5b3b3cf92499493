package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initTransportMetrics() {
	r.TransportMessagesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "transport_messages_total",
			Help:      "NNG request/reply messages by operation and status",
		},
		[]string{"op", "status"},
	)

	r.TransportBytesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "transport_bytes_total",
			Help:      "NNG payload bytes on the wire by direction",
		},
		[]string{"direction"},
	)
}
