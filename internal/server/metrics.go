package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gobulb_http_requests_total",
		Help: "HTTP API requests by route and status code.",
	}, []string{"route", "code"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gobulb_http_request_duration_seconds",
		Help:    "HTTP API latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gobulb_http_rate_limited_total",
		Help: "Requests rejected by the per-client rate limiter.",
	})
)
