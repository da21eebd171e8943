// internal/matching/metrics.go

package matching

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_requests_total",
			Help: "Total matching request lifecycle events, by outcome",
		},
		[]string{"outcome"},
	)

	matchScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_score_distribution",
			Help:    "Distribution of compatibility scores frozen at request creation",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)
)
