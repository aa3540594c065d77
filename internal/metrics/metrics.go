// Package metrics defines the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "userdesk",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "userdesk",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path"})

	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "userdesk",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being served.",
	})
)

// Access-control metrics.
var (
	AssignmentsGrantedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "userdesk",
		Subsystem: "rbac",
		Name:      "assignments_granted_total",
		Help:      "Total number of role assignments granted.",
	})

	AssignmentsRevokedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "userdesk",
		Subsystem: "rbac",
		Name:      "assignments_revoked_total",
		Help:      "Total number of role assignments revoked, by reason.",
	}, []string{"reason"})

	PermissionChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "userdesk",
		Subsystem: "rbac",
		Name:      "permission_checks_total",
		Help:      "Total number of permission checks, by outcome.",
	}, []string{"result"})

	PermissionCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "userdesk",
		Subsystem: "rbac",
		Name:      "permission_cache_total",
		Help:      "Permission snapshot cache lookups, by outcome.",
	}, []string{"result"})
)
