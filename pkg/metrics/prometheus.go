package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	sourceFetches *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	retriesTotal  prometheus.Counter
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		sourceFetches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsight_source_fetches_total",
				Help: "Total source fetches by outcome",
			},
			[]string{"source", "outcome"},
		),
		cacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsight_cache_lookups_total",
				Help: "Total cache lookups by source and result",
			},
			[]string{"source", "result"},
		),
		retriesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "finsight_retrieval_retries_total",
				Help: "Total self-evaluation retry passes",
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finsight_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordSourceFetch records one adapter invocation and its outcome
// (ok, network, parse, rate_limited, timeout).
func (r *Recorder) RecordSourceFetch(source, outcome string) {
	r.sourceFetches.WithLabelValues(source, outcome).Inc()
}

// RecordCache records a cache lookup result for a source.
func (r *Recorder) RecordCache(source string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(source, result).Inc()
}

// RecordRetry records one retry pass of the evaluation loop.
func (r *Recorder) RecordRetry() {
	r.retriesTotal.Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
