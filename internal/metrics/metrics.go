// Package metrics provides Prometheus metrics for datinsight.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProviderRequests counts outbound upstream calls by outcome.
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "datinsight",
			Name:      "provider_requests_total",
			Help:      "Total number of upstream provider requests",
		},
		[]string{"provider", "status"},
	)

	// ProviderDuration measures upstream call latency.
	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "datinsight",
			Name:      "provider_request_duration_seconds",
			Help:      "Duration of upstream provider requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// FeedItems observes the merged feed size before truncation.
	FeedItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "datinsight",
			Name:      "feed_items",
			Help:      "Number of merged feed items before truncation",
			Buckets:   []float64{0, 5, 10, 15, 20, 30, 40, 50},
		},
	)

	// FeedFallbacks counts aggregations served from fallback data.
	FeedFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "datinsight",
			Name:      "feed_fallbacks_total",
			Help:      "Total number of feeds served from fallback data after every provider failed",
		},
	)

	// AnalysisRequests counts analysis calls by outcome.
	AnalysisRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "datinsight",
			Name:      "analysis_requests_total",
			Help:      "Total number of content analysis requests",
		},
		[]string{"status"},
	)
)

// RecordProviderRequest records one upstream call.
func RecordProviderRequest(provider, status string, seconds float64) {
	ProviderRequests.WithLabelValues(provider, status).Inc()
	ProviderDuration.WithLabelValues(provider).Observe(seconds)
}

// RecordAnalysis records one analysis outcome ("ok" or "error").
func RecordAnalysis(status string) {
	AnalysisRequests.WithLabelValues(status).Inc()
}
