package ipinfolib

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ipinfo_cache_hits_total",
		Help: "Addresses resolved from cache.",
	})
	metricCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ipinfo_cache_misses_total",
		Help: "Addresses which had to be fetched.",
	})
	metricCacheEvictions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ipinfo_cache_evictions_total",
		Help: "Cache entries evicted by capacity pressure.",
	})
	metricChunkRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ipinfo_chunk_requests_total",
		Help: "Remote batch requests.",
	})
	metricChunkFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ipinfo_chunk_failures_total",
		Help: "Failed remote batch requests.",
	}, []string{"reason"})
	metricChunkDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ipinfo_chunk_duration_seconds",
		Help:    "Duration of remote batch requests.",
		Buckets: prometheus.DefBuckets,
	})
	metricCircuitBreakerState = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ipinfo_circuit_breaker_state",
		Help: "State of the last switched circuit breaker: 0 is closed, 1 is half-open, 2 is open.",
	})
	metricAddressErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ipinfo_address_errors_total",
		Help: "Per-address errors of batch lookups.",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(metricCacheHits)
	prometheus.MustRegister(metricCacheMisses)
	prometheus.MustRegister(metricCacheEvictions)
	prometheus.MustRegister(metricChunkRequests)
	prometheus.MustRegister(metricChunkFailures)
	prometheus.MustRegister(metricChunkDuration)
	prometheus.MustRegister(metricCircuitBreakerState)
	prometheus.MustRegister(metricAddressErrors)
}

// MetricsHandler exposes metrics in Prometheus format.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
