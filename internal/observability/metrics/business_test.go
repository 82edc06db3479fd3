package metrics

import (
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
)

func TestUpdateJobQueueDepth(t *testing.T) {
	tests := []struct {
		name  string
		queue string
		depth int
	}{
		{name: "priority queue empty", queue: "priority", depth: 0},
		{name: "priority queue backed up", queue: "priority", depth: 5},
		{name: "normal queue backed up", queue: "normal", depth: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				UpdateJobQueueDepth(tt.queue, tt.depth)
			})
		})
	}
}

func TestRecordJobDuration(t *testing.T) {
	tests := []struct {
		name     string
		kind     string
		duration time.Duration
		failed   bool
	}{
		{name: "successful http job", kind: "http", duration: 2 * time.Second, failed: false},
		{name: "failed command job", kind: "command", duration: 500 * time.Millisecond, failed: true},
		{name: "gopher job", kind: "gopher", duration: 1 * time.Second, failed: false},
		{name: "zero duration", kind: "file", duration: 0, failed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordJobDuration(tt.kind, tt.duration, tt.failed)
			})
		})
	}
}

func TestRecordMergeResult(t *testing.T) {
	tests := []struct {
		name                                   string
		newCount, updatedCount, unchangedCount int
		duration                               time.Duration
	}{
		{name: "all new items", newCount: 10, updatedCount: 0, unchangedCount: 0, duration: 2 * time.Second},
		{name: "mixed outcome", newCount: 2, updatedCount: 1, unchangedCount: 7, duration: 500 * time.Millisecond},
		{name: "nothing changed", newCount: 0, updatedCount: 0, unchangedCount: 5, duration: 1 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordMergeResult(tt.newCount, tt.updatedCount, tt.unchangedCount, tt.duration)
			})
		})
	}
}

func TestUpdateItemsTotal(t *testing.T) {
	tests := []struct {
		name  string
		count int
	}{
		{name: "zero items", count: 0},
		{name: "some items", count: 100},
		{name: "many items", count: 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				UpdateItemsTotal(tt.count)
			})
		})
	}
}

func TestUpdateSubscriptionsTotal(t *testing.T) {
	tests := []struct {
		name  string
		count int
	}{
		{name: "zero subscriptions", count: 0},
		{name: "some subscriptions", count: 10},
		{name: "many subscriptions", count: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				UpdateSubscriptionsTotal(tt.count)
			})
		})
	}
}

func TestUpdateActionQueueDepth(t *testing.T) {
	tests := []struct {
		name  string
		count int
	}{
		{name: "empty queue", count: 0},
		{name: "pending actions", count: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				UpdateActionQueueDepth(tt.count)
			})
		})
	}
}

func TestRecordCircuitBreakerState(t *testing.T) {
	tests := []struct {
		name  string
		cbTag string
		state gobreaker.State
	}{
		{name: "closed", cbTag: "remote-source", state: gobreaker.StateClosed},
		{name: "half-open", cbTag: "remote-source", state: gobreaker.StateHalfOpen},
		{name: "open", cbTag: "remote-source", state: gobreaker.StateOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordCircuitBreakerState(tt.cbTag, tt.state)
			})
		})
	}
}

func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		duration  time.Duration
	}{
		{name: "select query", operation: "select_items", duration: 10 * time.Millisecond},
		{name: "insert query", operation: "insert_item", duration: 5 * time.Millisecond},
		{name: "slow query", operation: "complex_join", duration: 500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordDBQuery(tt.operation, tt.duration)
			})
		})
	}
}

func TestUpdateDBConnectionStats(t *testing.T) {
	tests := []struct {
		name   string
		active int
		idle   int
	}{
		{name: "no connections", active: 0, idle: 0},
		{name: "some active", active: 5, idle: 10},
		{name: "all active", active: 25, idle: 0},
		{name: "all idle", active: 0, idle: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				UpdateDBConnectionStats(tt.active, tt.idle)
			})
		})
	}
}

func TestMetricsFunctions_AllCallable(t *testing.T) {
	assert.NotPanics(t, func() {
		UpdateJobQueueDepth("priority", 1)
		RecordJobDuration("http", 2*time.Second, false)
		RecordMergeResult(1, 1, 1, 1*time.Second)
		UpdateItemsTotal(100)
		UpdateSubscriptionsTotal(10)
		UpdateActionQueueDepth(3)
		RecordCircuitBreakerState("remote-source", gobreaker.StateClosed)
		RecordDBQuery("test_operation", 10*time.Millisecond)
		UpdateDBConnectionStats(5, 10)
	})
}
