package merge

import (
	"context"

	"feedcore/internal/domain/entity"
)

// TrimCache enforces spec §4.C's cache-limit policy after a merge:
//   - CacheUnlimited: no-op.
//   - CacheDisable: trim to zero (the UI has already seen the update by the
//     time TrimCache runs, per spec).
//   - CacheDefault: caller resolves to a positive count via the global
//     DEFAULT_MAX_ITEMS setting before calling; TrimCache itself only knows
//     positive-vs-sentinel, not where the default comes from.
//   - positive N: remove the oldest read-and-unflagged items until the
//     subscription's total count is <= N (I3).
//
// Per spec §9's other open question, trimming only ever consults this
// subscription's own items — a search folder's materialised view plays no
// part in what gets deleted.
func (e *Engine) TrimCache(ctx context.Context, subID entity.SubscriptionID, limit entity.CacheLimit) (int, error) {
	switch limit {
	case entity.CacheUnlimited:
		return 0, nil
	case entity.CacheDisable:
		total, _, err := e.items.CountBySubscription(ctx, subID)
		if err != nil {
			return 0, err
		}
		return e.items.DeleteOldestReadUnflagged(ctx, subID, total)
	case entity.CacheDefault:
		return 0, nil
	default:
		if limit <= 0 {
			return 0, nil
		}
		total, _, err := e.items.CountBySubscription(ctx, subID)
		if err != nil {
			return 0, err
		}
		excess := total - int(limit)
		if excess <= 0 {
			return 0, nil
		}
		return e.items.DeleteOldestReadUnflagged(ctx, subID, excess)
	}
}
