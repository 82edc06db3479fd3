// Package update implements the per-subscription update contract (spec
// §4.D): prepareRequest builds the job handed to the runner; processResult
// takes the runner's callback result and drives parsing, merging, and
// UpdateState bookkeeping.
package update

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"feedcore/internal/domain/entity"
	"feedcore/internal/infra/parser"
	"feedcore/internal/repository"
	"feedcore/internal/usecase/merge"
	"feedcore/internal/usecase/signal"
)

// Updater wires the parser and merge engine behind the subscription update
// contract. It owns no job-queue or transport concerns; those belong to
// internal/infra/runner and internal/infra/transport respectively.
type Updater struct {
	parser *parser.Parser
	merger *merge.Engine
	subs   repository.SubscriptionRepository

	// defaultCacheLimit resolves entity.CacheDefault when trimming
	// (spec §4.C: "caller resolves to a positive count via the global
	// DEFAULT_MAX_ITEMS setting").
	defaultCacheLimit int

	// emitter is optional; a nil emitter simply skips lifecycle-signal
	// dispatch (e.g. in tests that don't care about it).
	emitter *signal.Emitter
}

// New returns an Updater.
func New(p *parser.Parser, merger *merge.Engine, subs repository.SubscriptionRepository, defaultCacheLimit int) *Updater {
	return &Updater{parser: p, merger: merger, subs: subs, defaultCacheLimit: defaultCacheLimit}
}

// SetSignalEmitter wires the lifecycle-signal emitter in once it exists;
// called separately from New so tests that don't exercise signals can
// construct an Updater without one.
func (u *Updater) SetSignalEmitter(e *signal.Emitter) {
	u.emitter = e
}

// subscriptionNodeID recovers the owning feed node's id from a
// subscription id. feedlist's OPML importer and the node-creation path
// both mint a feed subscription's id as entity.SubscriptionID(node.ID), so
// the conversion back is exact, not a guess.
func subscriptionNodeID(id entity.SubscriptionID) entity.NodeID {
	return entity.NodeID(id)
}

// PrepareRequest builds the UpdateRequest the runner will execute (spec
// §4.D step 1). AllowCommands is set because this is the subscription's own
// fetch, not a derived download (enclosure/favicon forbid commands per
// §4.B.1).
func (u *Updater) PrepareRequest(sub *entity.Subscription) (*entity.UpdateRequest, error) {
	if sub.Discontinued {
		return nil, fmt.Errorf("subscription %q: %w", sub.ID, entity.ErrDiscontinued)
	}
	return &entity.UpdateRequest{
		Source:          sub.Source,
		AuthHeaderValue: authHeaderValue(sub.Auth),
		State:           sub.State.Clone(),
		FilterCmd:       sub.FilterCmd,
		AllowCommands:   true,
		Owner:           string(sub.ID),
	}, nil
}

func authHeaderValue(auth entity.AuthCredentials) string {
	if auth.BearerToken != "" {
		return "Bearer " + auth.BearerToken
	}
	if auth.Username != "" || auth.Password != "" {
		raw := auth.Username + ":" + auth.Password
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw))
	}
	return ""
}

// Outcome summarises one ProcessResult call for scheduler-level logging and
// backoff decisions.
type Outcome struct {
	merge.Result
	// Retryable reports whether the failure (if any) is transient network
	// trouble that the scheduler should back off and retry, as opposed to
	// a terminal state (discontinued, auth required, policy denial) that
	// should not be retried automatically (spec §7).
	Retryable bool
}

// ProcessResult implements spec §4.D step 3 and the error-severity table in
// spec §7. now is the poll timestamp; it is injected rather than read from
// time.Now so callers (and tests) control advancement explicitly.
func (u *Updater) ProcessResult(ctx context.Context, sub *entity.Subscription, result *entity.UpdateResult, now time.Time) (Outcome, error) {
	if !result.Success() {
		return u.processFailure(ctx, sub, result, now)
	}

	sub.State = result.UpdatedState
	sub.State.AdvancePoll(now)
	sub.LastError = entity.LastErrorNone
	sub.LastErrorText = ""

	if result.HTTPStatus == http.StatusNotModified {
		return Outcome{}, u.subs.Save(ctx, sub)
	}

	if result.FilterErrors != "" {
		// Spec §7 "Filter error": body becomes empty, subscription marked
		// unavailable for this cycle, no merge attempted.
		sub.LastError = entity.LastErrorFilter
		sub.LastErrorText = result.FilterErrors
		return Outcome{}, u.subs.Save(ctx, sub)
	}

	items, meta, err := u.parser.Parse(ctx, result.Data, result.Source)
	if err != nil {
		// Spec §7 "Parse error": existing items preserved, error recorded,
		// still a clean poll (the fetch itself succeeded).
		sub.LastError = entity.LastErrorParse
		sub.LastErrorText = err.Error()
		return Outcome{}, u.subs.Save(ctx, sub)
	}
	applyFeedHints(sub, meta)

	mergeResult, err := u.merger.Merge(ctx, sub, items, sub.Flags.MarkAsRead)
	if err != nil {
		return Outcome{}, fmt.Errorf("merge subscription %q: %w", sub.ID, err)
	}

	limit := sub.CacheLimit
	if limit == entity.CacheDefault {
		limit = entity.CacheLimit(u.defaultCacheLimit)
	}
	if _, err := u.merger.TrimCache(ctx, sub.ID, limit); err != nil {
		return Outcome{}, fmt.Errorf("trim cache for subscription %q: %w", sub.ID, err)
	}

	if err := u.subs.Save(ctx, sub); err != nil {
		return Outcome{}, err
	}
	return Outcome{Result: mergeResult}, nil
}

// applyFeedHints copies update-interval/TTL hints the feed itself
// advertises onto UpdateState so the scheduler can use them as a courtesy
// floor (spec §4.I references "TTL hints"); it never overrides the user's
// explicit updateInterval choice.
func applyFeedHints(sub *entity.Subscription, meta parser.Metadata) {
	if meta.TTLMinutes > 0 {
		sub.State.TTLMinutes = meta.TTLMinutes
	}
	if meta.UpdateIntervalHint > 0 {
		sub.State.SynPeriod = meta.UpdateIntervalHint
	}
	if meta.HomepageURL != "" {
		sub.State.HomepageURL = meta.HomepageURL
	}
	if meta.IconHint != "" {
		sub.State.IconHint = meta.IconHint
	}
}

func (u *Updater) emit(kind signal.Kind, subID entity.SubscriptionID, detail string) {
	if u.emitter == nil {
		return
	}
	u.emitter.Emit(signal.Signal{Kind: kind, NodeID: subscriptionNodeID(subID), Detail: detail})
}

func (u *Updater) processFailure(ctx context.Context, sub *entity.Subscription, result *entity.UpdateResult, now time.Time) (Outcome, error) {
	sub.State.AdvancePoll(now)

	switch result.HTTPStatus {
	case http.StatusGone:
		// 410: discontinued, future auto-updates suppressed (spec §4.D,
		// §7).
		sub.Discontinued = true
		sub.LastError = entity.LastErrorGone
		sub.LastErrorText = "feed reports 410 Gone"
		u.emit(signal.KindDiscontinued, sub.ID, sub.LastErrorText)
		return Outcome{}, u.subs.Save(ctx, sub)
	case http.StatusNotFound:
		// 404 leaves the subscription updatable (spec §7: "could be a
		// transient misconfiguration").
		sub.LastError = entity.LastErrorNotFound
		sub.LastErrorText = "feed not found (404)"
		return Outcome{Retryable: true}, u.subs.Save(ctx, sub)
	case http.StatusUnauthorized, http.StatusForbidden:
		// 403 also covers a disallowed command source (entity.
		// StatusCommandDisallowed shares this numeric value by design,
		// spec §7: "Policy denial ... Fixed status 403"); the
		// auth-required classification is harmless for that case since
		// command subscriptions are never routed through a login flow.
		sub.LastError = entity.LastErrorAuthRequired
		sub.LastErrorText = "authentication required or command source disallowed"
		u.emit(signal.KindAuthRequired, sub.ID, sub.LastErrorText)
		return Outcome{}, u.subs.Save(ctx, sub)
	default:
		sub.LastError = entity.LastErrorTransientNetwork
		sub.LastErrorText = fmt.Sprintf("fetch failed with status %d", result.HTTPStatus)
		return Outcome{Retryable: true}, u.subs.Save(ctx, sub)
	}
}
