// Package metrics declares the Prometheus collectors exported at /metrics.
// Collectors register with the default registry at init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Geocode outcome label values.
const (
	GeocodeOK          = "ok"
	GeocodeShortQuery  = "short_query"
	GeocodeRateLimited = "rate_limited"
	GeocodeUpstreamErr = "upstream_error"
)

var (
	// HTTPRequests counts finished requests by method, chi route pattern and status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "couplemap",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPDuration observes request latency by method and chi route pattern.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "couplemap",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// GeocodeRequests counts proxy searches by outcome.
	GeocodeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "couplemap",
			Name:      "geocode_requests_total",
			Help:      "Total number of geocode proxy searches by outcome",
		},
		[]string{"outcome"},
	)

	// InviteCodeCollisions counts invite codes that were generated but already taken.
	InviteCodeCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "couplemap",
			Name:      "invite_code_collisions_total",
			Help:      "Total number of invite code collisions during create or rotate",
		},
	)
)

// GeocodeBreakerOpen is 1 while the geocoder circuit breaker is open.
var GeocodeBreakerOpen = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "couplemap",
		Name:      "geocode_breaker_open",
		Help:      "Whether the geocoder circuit breaker is open (1) or not (0)",
	},
)
