package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Boundary calls into the native engine, by op and outcome
	// (ok, status_error, null_message, invalid_text, closed).
	NativeCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "osrm",
		Subsystem: "native",
		Name:      "calls_total",
		Help:      "Total calls across the native engine boundary",
	}, []string{"op", "outcome"})

	NativeBuffersFreed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "osrm",
		Subsystem: "native",
		Name:      "buffers_freed_total",
		Help:      "Native response buffers released back to the engine",
	})

	NativeHandles = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "osrm",
		Subsystem: "native",
		Name:      "live_handles",
		Help:      "Engine handles currently alive",
	})

	OpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "osrm",
		Name:      "op_duration_seconds",
		Help:      "Duration of engine, provider and cache operations",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10},
	}, []string{"op", "outcome"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "osrm",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "osrm",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total distance cache hits",
	}, []string{"backend"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "osrm",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total distance cache misses",
	}, []string{"backend"})
)

// Handler serves the Prometheus /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
