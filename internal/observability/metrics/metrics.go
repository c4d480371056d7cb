// Package metrics provides Prometheus instrumentation for connectx.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	enabled     bool
	serviceName string

	// HTTP metrics
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec

	// Bounty domain metrics
	bountyOperationsTotal *prometheus.CounterVec
	payoutMicrosTotal     *prometheus.CounterVec

	// Collaborator adapter metrics
	collaboratorCallsTotal *prometheus.CounterVec
)

// Init initializes the metrics system.
func Init(enabledFlag bool, svcName string) {
	enabled = enabledFlag
	serviceName = svcName

	if !enabled {
		return
	}

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	bountyOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bounty_operations_total",
			Help: "Total number of bounty lifecycle operations",
		},
		[]string{"operation", "status"},
	)

	payoutMicrosTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payout_micros_total",
			Help: "Total value paid out, in micro-units, by recipient kind",
		},
		[]string{"kind"},
	)

	collaboratorCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collaborator_calls_total",
			Help: "Total number of collaborator service calls",
		},
		[]string{"service", "status"},
	)

	// Go runtime metrics (goroutines, memory, GC) come along automatically
	// with the default registry.
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	if !enabled {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
	}
	return promhttp.Handler()
}

// Enabled returns whether metrics are enabled.
func Enabled() bool {
	return enabled
}

// ServiceName returns the configured service name for metric labels.
func ServiceName() string {
	return serviceName
}
