// internal/realtime/metrics.go

package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "realtime_active_connections",
			Help: "Number of live websocket connections",
		},
	)

	pushesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_pushes_total",
			Help: "Payload pushes to individual connections, by result",
		},
		[]string{"result"},
	)

	evictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "realtime_heartbeat_evictions_total",
			Help: "Connections evicted by the liveness monitor",
		},
	)
)
