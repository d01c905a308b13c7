package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	coalescedWaits   *prometheus.CounterVec
	upstreamRequests *prometheus.CounterVec
	lastPrice        *prometheus.GaugeVec
	latency          *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chartpulse_cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"category"},
		),
		cacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chartpulse_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"category"},
		),
		coalescedWaits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chartpulse_coalesced_requests_total",
				Help: "Total number of requests joined onto an in-flight fetch",
			},
			[]string{"category"},
		),
		upstreamRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chartpulse_upstream_requests_total",
				Help: "Total number of upstream provider requests",
			},
			[]string{"endpoint", "outcome"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "chartpulse_last_price",
				Help: "Last observed price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chartpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordCacheHit records a cache hit for a category.
func (r *Recorder) RecordCacheHit(category string) {
	r.cacheHits.WithLabelValues(category).Inc()
}

// RecordCacheMiss records a cache miss for a category.
func (r *Recorder) RecordCacheMiss(category string) {
	r.cacheMisses.WithLabelValues(category).Inc()
}

// RecordCoalesced records a caller attached to an in-flight fetch.
func (r *Recorder) RecordCoalesced(category string) {
	r.coalescedWaits.WithLabelValues(category).Inc()
}

// RecordUpstreamRequest records one provider call and its outcome.
func (r *Recorder) RecordUpstreamRequest(endpoint, outcome string) {
	r.upstreamRequests.WithLabelValues(endpoint, outcome).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
