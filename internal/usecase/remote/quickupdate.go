package remote

import "time"

// Default quick-update/full-refresh cadence (spec §4.G: "default 24 h"
// full refresh, "default 10 min" quick update).
const (
	DefaultFullRefreshInterval  = 24 * time.Hour
	DefaultQuickUpdateInterval = 10 * time.Minute
)

// QuickUpdateDue reports whether a cheap unread-counts poll is due, given
// the last quick-update timestamp and the configured interval (0 means
// use DefaultQuickUpdateInterval).
func QuickUpdateDue(now, lastQuickUpdate time.Time, interval time.Duration) bool {
	if interval <= 0 {
		interval = DefaultQuickUpdateInterval
	}
	return now.Sub(lastQuickUpdate) >= interval
}

// FullRefreshDue reports whether a full subscription-list refresh is due.
func FullRefreshDue(now, lastFullRefresh time.Time, interval time.Duration) bool {
	if interval <= 0 {
		interval = DefaultFullRefreshInterval
	}
	return now.Sub(lastFullRefresh) >= interval
}
