// Package metrics exposes Prometheus collectors for the delivery path.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StreamRequestsTotal tracks stream requests by outcome.
	StreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tubelet_stream_requests_total",
		Help: "Total number of stream requests by outcome",
	}, []string{"outcome"})

	// StreamBytesTotal counts payload bytes served to clients.
	StreamBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tubelet_stream_bytes_total",
		Help: "Total number of asset bytes served",
	})

	// PersistDuration tracks metadata document swap latency.
	PersistDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tubelet_store_persist_duration_seconds",
		Help:    "Time taken to atomically persist the metadata document",
		Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})

	// ViewsRecordedTotal counts successful view increments.
	ViewsRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tubelet_views_recorded_total",
		Help: "Total number of persisted view increments",
	})

	// RecommendDuration tracks recommendation scoring latency.
	RecommendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tubelet_recommend_duration_seconds",
		Help:    "Time taken to score and rank recommendations",
		Buckets: prometheus.DefBuckets,
	})
)

// Stream outcome label values.
const (
	StreamOutcomeFull         = "full"
	StreamOutcomePartial      = "partial"
	StreamOutcomeNotFound     = "not_found"
	StreamOutcomeBadRange     = "range_not_satisfiable"
	StreamOutcomeUpstreamFail = "upstream_failure"
	StreamOutcomeRedirect     = "redirect"
)

// IncStreamRequest records a stream request outcome.
func IncStreamRequest(outcome string) {
	StreamRequestsTotal.WithLabelValues(outcome).Inc()
}

// AddStreamBytes records payload bytes served.
func AddStreamBytes(n int64) {
	if n > 0 {
		StreamBytesTotal.Add(float64(n))
	}
}

// ObservePersistDuration records one metadata persist.
func ObservePersistDuration(d time.Duration) {
	PersistDuration.Observe(d.Seconds())
}

// IncViewRecorded records one persisted view increment.
func IncViewRecorded() {
	ViewsRecordedTotal.Inc()
}

// ObserveRecommendDuration records one recommendation computation.
func ObserveRecommendDuration(d time.Duration) {
	RecommendDuration.Observe(d.Seconds())
}
