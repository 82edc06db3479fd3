package entity

import (
	"fmt"
	"time"
)

// SubscriptionID identifies the fetch contract attached to a feed or
// source-root node.
type SubscriptionID string

// Update-interval sentinels (spec §3). Any value > 0 is a fixed interval in
// minutes.
const (
	UpdateIntervalNever   = -2
	UpdateIntervalDefault = -1
)

// CacheLimit controls per-subscription item retention. A positive value is
// a fixed item count; the named sentinels below cover the remaining cases.
type CacheLimit int

const (
	// CacheDefault defers to the global default item cap.
	CacheDefault CacheLimit = 0
	// CacheDisable trims to zero items after the UI has observed an update.
	CacheDisable CacheLimit = -1
	// CacheUnlimited skips trimming entirely.
	CacheUnlimited CacheLimit = -2
)

// LastErrorKind classifies the most recent fetch/process failure, mirroring
// the severities in spec §7.
type LastErrorKind int

const (
	LastErrorNone LastErrorKind = iota
	LastErrorTransientNetwork
	LastErrorAuthRequired
	LastErrorNotFound
	LastErrorGone
	LastErrorParse
	LastErrorFilter
	LastErrorPolicyDenial
)

// SubscriptionFlags are independent boolean behaviours toggled per
// subscription (spec §3).
type SubscriptionFlags struct {
	AutoEnclosureDownload bool
	MarkAsRead            bool
	IgnoreComments        bool
	LoadItemLink          bool
	HTML5Extract          bool
}

// AuthCredentials is the auth material attached to a subscription's fetch
// requests: either a basic-auth username/password pair or an opaque bearer
// token (e.g. a remote-source session), never both populated meaningfully.
type AuthCredentials struct {
	Username    string
	Password    string
	BearerToken string
}

// UpdateState is per-subscription bandwidth-saving state (spec §3).
type UpdateState struct {
	LastModified    string
	ETag            string
	Cookies         string
	LastPoll        time.Time
	LastFaviconPoll time.Time
	MaxAgeMinutes   int

	// Parsed feed hints, set from parser metadata when available.
	SynFrequency int
	SynPeriod    int
	TTLMinutes   int

	// HomepageURL and IconHint are copied from the feed parser's metadata
	// (spec §6 "homepage URL, ... icon hint") and feed the favicon
	// discovery pipeline's candidate list (spec §4.J).
	HomepageURL string
	IconHint    string
}

// Clone returns an independent copy so a job's UpdateRequest can carry a
// snapshot without racing the scheduler's read of the live state (spec §4.A).
func (s UpdateState) Clone() UpdateState {
	return s
}

// ResetForTitleRefresh clears the conditional-request cache, forcing the
// next fetch to be unconditional (spec §3: "cleared etag/lastModified on
// explicit 'reset title' refresh").
func (s *UpdateState) ResetForTitleRefresh() {
	s.LastModified = ""
	s.ETag = ""
}

// AdvancePoll moves LastPoll forward, never backward (spec §3 invariant).
func (s *UpdateState) AdvancePoll(t time.Time) {
	if t.After(s.LastPoll) {
		s.LastPoll = t
	}
}

// Subscription is the fetch contract attached to a feed or source-root node
// (spec §3).
type Subscription struct {
	ID SubscriptionID

	// Source is the current URL/command/path string; OriginalSource is
	// preserved across redirect rewrites so the user can see what they
	// originally typed.
	Source         string
	OriginalSource string

	// FilterCmd is either a shell command or a path ending in .xsl.
	FilterCmd string

	UpdateIntervalMinutes int
	DefaultIntervalHint   int
	CacheLimit            CacheLimit

	Auth AuthCredentials

	LastError     LastErrorKind
	LastErrorText string
	Discontinued  bool

	Flags SubscriptionFlags

	State UpdateState
}

// Validate checks the invariants spec §3 assigns to Subscription.
func (s *Subscription) Validate() error {
	switch s.UpdateIntervalMinutes {
	case UpdateIntervalNever, UpdateIntervalDefault:
	default:
		if s.UpdateIntervalMinutes <= 0 {
			return fmt.Errorf("subscription %q: %w", s.ID, ErrInvalidUpdateInterval)
		}
	}
	return nil
}

// EffectiveInterval resolves spec §4.I's three-way rule given the global
// default interval (minutes).
func (s *Subscription) EffectiveInterval(globalDefault int) int {
	switch s.UpdateIntervalMinutes {
	case UpdateIntervalNever:
		return UpdateIntervalNever
	case UpdateIntervalDefault:
		return globalDefault
	default:
		return s.UpdateIntervalMinutes
	}
}

// IsDueAt reports whether the subscription should be enqueued at time now,
// given the resolved effective interval in minutes (spec §4.I).
func (s *Subscription) IsDueAt(now time.Time, effectiveIntervalMinutes int) bool {
	if effectiveIntervalMinutes <= 0 {
		return false
	}
	if s.Discontinued {
		return false
	}
	return !now.Before(s.State.LastPoll.Add(time.Duration(effectiveIntervalMinutes) * time.Minute))
}

// FaviconDueAt reports whether a favicon refetch is due (spec §4.I: 30 days).
func (s *Subscription) FaviconDueAt(now time.Time) bool {
	return !now.Before(s.State.LastFaviconPoll.Add(30 * 24 * time.Hour))
}

// UpdateRequest is what the runner consumes (spec §3, ephemeral).
type UpdateRequest struct {
	Source          string
	PostData        string
	AuthHeaderValue string
	State           UpdateState
	FilterCmd       string

	// AllowCommands is set only by the subscription path; suppressed on
	// enclosure/favicon/HTML downloads to deny shell execution via
	// untrusted redirects (spec §4.B.1).
	AllowCommands bool

	// Owner is the cancellation handle; cancelByOwner(owner) detaches the
	// callback for every pending/running request sharing this value.
	Owner string
}

// HTTP status sentinels used by UpdateResult for non-network outcomes
// (spec §4.B).
const (
	StatusLocalFileOK     = 200
	StatusUnknown         = 0
	StatusCommandDisallowed = 403
	StatusCommandFailure  = 500
	StatusCommandTimeout  = 504
)

// UpdateResult is what the callback consumes (spec §3, ephemeral).
type UpdateResult struct {
	Source        string // post-redirect effective URL
	HTTPStatus    int
	Data          []byte
	Size          int
	ContentType   string
	FilterErrors  string
	UpdatedState  UpdateState
}

// Success reports whether this result represents a usable fetch: either a
// 2xx-family status, or 304 Not Modified (which carries no body but is not
// an error, per spec §6).
func (r *UpdateResult) Success() bool {
	return (r.HTTPStatus >= 200 && r.HTTPStatus < 300) || r.HTTPStatus == 304
}
