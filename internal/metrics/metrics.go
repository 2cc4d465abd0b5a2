package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Search outcomes
const (
	OutcomeSuccess     = "success"
	OutcomeDegraded    = "degraded"
	OutcomeUpstream    = "upstream_failure"
	OutcomeCancelled   = "cancelled"
	OutcomeInvalidTurn = "invalid"
)

var (
	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rentpe_search_requests_total",
			Help: "Total number of conversational search turns by outcome",
		},
		[]string{"outcome"},
	)

	ExtractionFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rentpe_extraction_fallbacks_total",
			Help: "Total number of extraction payloads replaced by the fallback filters",
		},
	)

	UpstreamFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rentpe_upstream_failures_total",
			Help: "Total number of language-understanding backend failures by kind",
		},
		[]string{"kind"},
	)

	StoreFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rentpe_store_failures_total",
			Help: "Total number of failed property store queries",
		},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rentpe_search_duration_seconds",
			Help:    "Duration of a conversational search turn in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rentpe_active_sessions",
			Help: "Number of search sessions held in memory",
		},
	)
)
