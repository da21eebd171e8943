// internal/announcements/metrics.go

package announcements

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	publishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "announcements_published_total",
			Help: "Total number of announcements persisted, by kind",
		},
		[]string{"kind"},
	)

	deliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "announcement_deliveries_total",
			Help: "Total number of live connection deliveries, by audience",
		},
		[]string{"audience"},
	)
)
