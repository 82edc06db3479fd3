// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - HTTP request metrics (duration, count, size)
//   - Business metrics (items, subscriptions, jobs, merge outcomes)
//   - Database query metrics
//   - Application performance metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "feedcore/internal/observability/metrics"
//
//	func runJob(kind string) {
//	    start := time.Now()
//	    // ... execute update request ...
//
//	    metrics.RecordJobDuration(kind, time.Since(start), false)
//	    metrics.RecordOperationDuration("run_job", time.Since(start))
//	}
package metrics
