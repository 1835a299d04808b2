package bulb

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// fieldRequests counts field requests by where the result came from.
	fieldRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gobulb_field_requests_total",
		Help: "Stress field requests by result source",
	}, []string{"source"})

	cacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gobulb_cache_evictions_total",
		Help: "Stress fields evicted from the in-memory cache",
	})

	computeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gobulb_compute_duration_seconds",
		Help:    "Stress field computation time in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4min
	}, []string{"method"})

	gridPoints = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gobulb_grid_points",
		Help:    "Number of points per computed stress field",
		Buckets: prometheus.ExponentialBuckets(8, 8, 8),
	})

	integrationFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gobulb_integration_fallbacks_total",
		Help: "Grid points where numerical integration fell back to Newmark",
	})

	limitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gobulb_limit_rejections_total",
		Help: "Requests rejected by resource limits, by parameter",
	}, []string{"param"})

	computeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gobulb_compute_errors_total",
		Help: "Stress field computations that failed or were cancelled",
	})
)
