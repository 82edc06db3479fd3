package metrics

import (
	"time"

	"github.com/sony/gobreaker"
)

// UpdateJobQueueDepth reports the runner's current queue depth for one of
// the two priority lanes ("priority" or "normal").
func UpdateJobQueueDepth(queue string, depth int) {
	JobQueueDepth.WithLabelValues(queue).Set(float64(depth))
}

// RecordJobSubmitted records an update request submitted to the runner, by
// source kind (http, gopher, file, command).
func RecordJobSubmitted(kind string) {
	JobsSubmittedTotal.WithLabelValues(kind).Inc()
}

// RecordJobDuration records the time taken to execute one update request end
// to end, and whether it failed.
func RecordJobDuration(kind string, duration time.Duration, failed bool) {
	JobDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if failed {
		JobsFailedTotal.WithLabelValues(kind).Inc()
	}
}

// RecordMergeResult records one merge.Engine.Merge call's outcome breakdown
// (new/updated/unchanged item counts) and how long the merge took. Takes
// plain counts rather than merge.Result to avoid an import cycle (the merge
// package itself calls this function).
func RecordMergeResult(newCount, updatedCount, unchangedCount int, duration time.Duration) {
	MergeDuration.Observe(duration.Seconds())
	MergeItemsTotal.WithLabelValues("new").Add(float64(newCount))
	MergeItemsTotal.WithLabelValues("updated").Add(float64(updatedCount))
	MergeItemsTotal.WithLabelValues("unchanged").Add(float64(unchangedCount))
}

// UpdateItemsTotal updates the total count of items across all subscriptions.
// This gauge should be updated periodically to reflect the current state.
func UpdateItemsTotal(count int) {
	ItemsTotal.Set(float64(count))
}

// UpdateSubscriptionsTotal updates the total count of subscriptions.
// This gauge should be updated periodically to reflect the current state.
func UpdateSubscriptionsTotal(count int) {
	SubscriptionsTotal.Set(float64(count))
}

// UpdateActionQueueDepth updates the total count of pending remote edit
// actions across all subscriptions.
func UpdateActionQueueDepth(count int) {
	ActionQueueDepth.Set(float64(count))
}

// RecordCircuitBreakerState reports a named circuit breaker's current
// gobreaker state.
func RecordCircuitBreakerState(name string, state gobreaker.State) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "select_items", "insert_item").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
