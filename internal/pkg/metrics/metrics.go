// Package metrics provides Prometheus metrics for the Eduvance backend (RED +
// policy layer). Scrapeable at /metrics; dashboards and alerts rely on these names.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eduvance"

var (
	// HTTPRequestTotal counts requests by method, path, status (RED: rate).
	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method, path, and status.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDurationSeconds is request latency histogram (RED: duration).
	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2.5, 10), // 1ms to ~9.3s
		},
		[]string{"method", "path"},
	)

	// RateLimitDeniedTotal counts 429s by route prefix.
	RateLimitDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_denied_total",
			Help:      "Requests denied by the rate limiter, by route prefix.",
		},
		[]string{"route"},
	)

	// AuthResolutionsTotal counts session resolution outcomes. The client sees
	// no_session and upstream_error identically (fail closed); this counter is
	// where the difference stays observable.
	AuthResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_resolutions_total",
			Help:      "Session resolution outcomes: ok, no_session, upstream_error.",
		},
		[]string{"outcome"},
	)

	// AuthzDeniedTotal counts authorization denials by reason category.
	AuthzDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authz_denied_total",
			Help:      "Authorization denials: authentication_required, insufficient_permissions.",
		},
		[]string{"reason"},
	)

	// UpstreamRequestTotal counts calls to external services (gotrue, discord).
	UpstreamRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Outbound calls to external services by service and outcome.",
		},
		[]string{"service", "outcome"},
	)
)
