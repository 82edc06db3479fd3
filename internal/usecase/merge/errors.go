package merge

import "errors"

var (
	// ErrNoSubscription is returned when Merge is called for a subscription
	// id the item repository has no rows for yet (not an error condition on
	// a fresh subscription — callers treat an empty existing set as normal).
	ErrNoSubscription = errors.New("merge: subscription not found")
)
