// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestSize measures HTTP request body size in bytes
	HTTPRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// ActiveConnections tracks the number of active HTTP connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)
)

// Business metrics track application-specific operations
var (
	// ItemsTotal tracks total number of items across the node tree
	ItemsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "items_total",
			Help: "Total number of items across all subscriptions",
		},
	)

	// SubscriptionsTotal tracks total number of subscriptions
	SubscriptionsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "subscriptions_total",
			Help: "Total number of subscriptions",
		},
	)

	// JobQueueDepth tracks the number of pending jobs per queue (spec §4.B's
	// two-priority FIFO: "priority" or "normal")
	JobQueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "job_queue_depth",
			Help: "Number of jobs waiting in the runner's queue",
		},
		[]string{"queue"},
	)

	// JobDuration measures time to execute one update request end to end
	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "job_duration_seconds",
			Help:    "Time taken to execute an update request",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"kind"}, // kind: http, gopher, file, command
	)

	// JobsSubmittedTotal counts update requests submitted to the runner
	JobsSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_submitted_total",
			Help: "Total number of update requests submitted to the runner",
		},
		[]string{"kind"},
	)

	// JobsFailedTotal counts job executions that returned an error
	JobsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_failed_total",
			Help: "Total number of failed update requests",
		},
		[]string{"kind"},
	)

	// MergeItemsTotal counts merge decisions by outcome (new/updated/unchanged)
	MergeItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "merge_items_total",
			Help: "Total number of items processed by the merge engine, by outcome",
		},
		[]string{"outcome"},
	)

	// MergeDuration measures time to reconcile one parsed feed against the
	// existing item store
	MergeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "merge_duration_seconds",
			Help:    "Time taken to merge a parsed feed into the item store",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		},
	)

	// ActionQueueDepth tracks the total number of pending remote edit actions
	// across all subscriptions (spec §4.G/H's FIFO actionQueue)
	ActionQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "remote_action_queue_depth",
			Help: "Total number of pending remote edit actions",
		},
	)

	// CircuitBreakerState reports each named circuit breaker's gobreaker
	// state as a gauge (0=closed, 1=half-open, 2=open — gobreaker.State's
	// own ordinal, so no translation table is needed at the call site)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, requestSize, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if requestSize > 0 {
		HTTPRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	}
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordOperationDuration records the duration of a named operation
func RecordOperationDuration(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
