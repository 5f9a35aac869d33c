// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_queries_total",
			Help: "Total number of searches processed",
		},
		[]string{"status"},
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "search_duration_seconds",
			Help: "Duration of the full search pipeline in seconds",
		},
		[]string{"status"},
	)

	ClassifierRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifier_requests_total",
			Help: "Total classifier invocations by outcome",
		},
		[]string{"outcome"},
	)

	ClassifierRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "classifier_retries_total",
			Help: "Total classifier retry attempts",
		},
	)

	ParseCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parse_cache_hits_total",
			Help: "Parsed-query cache hits",
		},
	)

	FallbackParses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fallback_parses_total",
			Help: "Queries parsed by the deterministic fallback extractor",
		},
	)

	ParseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "parse_duration_seconds",
			Help: "Duration of query parsing in seconds",
		},
	)

	CandidatesScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "candidates_scored_total",
			Help: "Total candidate records scored",
		},
	)
)
