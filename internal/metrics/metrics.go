// Package metrics holds Prometheus instruments used across the job board.
// All collectors are registered with the global registry, so importing this
// package is enough to expose them on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobboard_operations_total",
			Help: "Job board operations by name and outcome.",
		}, []string{"op", "outcome"})

	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobboard_operation_duration_seconds",
			Help:    "Latency of job board operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"})

	SlugCollisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobboard_slug_collisions_total",
			Help: "Slug candidates rejected because they were already taken.",
		}, []string{"kind"})

	ListingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobboard_listing_cache_total",
			Help: "Listing cache lookups by result.",
		}, []string{"result"})

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobboard_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobboard_http_request_duration_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"})

	RateLimitedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobboard_rate_limited_total",
			Help: "Requests rejected by the rate limiter, by route tier.",
		}, []string{"tier"})
)

func init() {
	prometheus.MustRegister(
		OperationsTotal,
		OperationDuration,
		SlugCollisionsTotal,
		ListingCacheTotal,
		HTTPRequestsTotal,
		HTTPRequestDuration,
		RateLimitedTotal,
	)
}

// ObserveOperation records the outcome and latency of one operation started
// at start. outcome is "ok" or an error kind.
func ObserveOperation(op, outcome string, start time.Time) {
	OperationsTotal.WithLabelValues(op, outcome).Inc()
	OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
