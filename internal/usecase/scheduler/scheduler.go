// Package scheduler implements the Auto-update Scheduler (spec §4.I): a
// coarse tick that resolves each subscription's effective update interval,
// enqueues the ones that are due onto the job runner, and drives their
// results back through the update contract.
package scheduler

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"feedcore/internal/domain/entity"
	"feedcore/internal/infra/runner"
	"feedcore/internal/repository"
	"feedcore/internal/resilience/retry"
	"feedcore/internal/usecase/update"
)

// FaviconGate is the seam to the favicon usecase (built separately); it is
// optional so Scheduler can run its core tick loop without favicon
// discovery wired in yet.
type FaviconGate interface {
	EnqueueFavicon(ctx context.Context, sub *entity.Subscription) error
}

// Scheduler resolves due subscriptions each tick and submits their fetch
// jobs to a runner.Runner, then drives the runner's callback result back
// through an update.Updater.
type Scheduler struct {
	subs    repository.SubscriptionRepository
	runner  *runner.Runner
	updater *update.Updater
	logger  *slog.Logger

	globalDefaultInterval int
	favicons              FaviconGate

	offline atomic.Bool
	backoff *tickBackoff
}

// New returns a Scheduler. globalDefaultInterval is the minutes value
// UpdateIntervalDefault resolves to (spec §4.I, the config key
// DEFAULT_UPDATE_INTERVAL per spec §6).
func New(subs repository.SubscriptionRepository, r *runner.Runner, updater *update.Updater, logger *slog.Logger, globalDefaultInterval int) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		subs:                  subs,
		runner:                r,
		updater:               updater,
		logger:                logger,
		globalDefaultInterval: globalDefaultInterval,
		backoff:               newTickBackoff(retry.SchedulerTickConfig()),
	}
}

// SetFaviconGate wires the favicon usecase in once it exists; a nil gate
// (the default) simply skips favicon scheduling.
func (s *Scheduler) SetFaviconGate(g FaviconGate) {
	s.favicons = g
}

// SetOffline toggles offline mode (spec §4.I: "suppresses all network
// scheduling but allows command/file sources").
func (s *Scheduler) SetOffline(offline bool) {
	s.offline.Store(offline)
}

// Offline reports the current offline-mode flag.
func (s *Scheduler) Offline() bool {
	return s.offline.Load()
}

// Tick evaluates every candidate subscription once and submits the due
// ones. It never blocks on network I/O itself — submission to the runner
// is asynchronous; Tick only performs the due-check bookkeeping (spec §5:
// "the main context never blocks on network").
func (s *Scheduler) Tick(ctx context.Context) error {
	now := time.Now()

	candidates, err := s.subs.ListDue(ctx)
	if err != nil {
		return err
	}

	for _, sub := range candidates {
		s.evaluate(ctx, sub, now)
	}
	return nil
}

func (s *Scheduler) evaluate(ctx context.Context, sub *entity.Subscription, now time.Time) {
	effective := sub.EffectiveInterval(s.globalDefaultInterval)
	if effective == entity.UpdateIntervalNever {
		return
	}
	if !sub.IsDueAt(now, effective) {
		return
	}
	if s.offline.Load() && isNetworkSource(sub.Source) {
		return
	}
	if s.backoff.blocked(sub.ID, now) {
		return
	}

	if s.favicons != nil && sub.FaviconDueAt(now) && !(s.offline.Load() && isNetworkSource(sub.Source)) {
		if err := s.favicons.EnqueueFavicon(ctx, sub); err != nil {
			s.logger.Warn("favicon enqueue failed", slog.String("subscription", string(sub.ID)), slog.Any("error", err))
		}
	}

	s.submit(sub)
}

func (s *Scheduler) submit(sub *entity.Subscription) {
	req, err := s.updater.PrepareRequest(sub)
	if err != nil {
		s.logger.Debug("subscription not due for prepareRequest", slog.String("subscription", string(sub.ID)), slog.Any("error", err))
		return
	}

	s.runner.Submit(req, false, func(result *entity.UpdateResult, err error) {
		s.onResult(sub, result, err)
	})
}

func (s *Scheduler) onResult(sub *entity.Subscription, result *entity.UpdateResult, err error) {
	ctx := context.Background()
	now := time.Now()

	if err != nil {
		s.logger.Warn("subscription fetch failed", slog.String("subscription", string(sub.ID)), slog.Any("error", err))
		s.backoff.recordFailure(sub.ID, now)
		return
	}

	outcome, procErr := s.updater.ProcessResult(ctx, sub, result, now)
	if procErr != nil {
		s.logger.Error("process result failed", slog.String("subscription", string(sub.ID)), slog.Any("error", procErr))
		s.backoff.recordFailure(sub.ID, now)
		return
	}

	if outcome.Retryable {
		s.backoff.recordFailure(sub.ID, now)
		return
	}
	s.backoff.recordSuccess(sub.ID)

	if outcome.NewCount > 0 {
		s.logger.Info("subscription updated",
			slog.String("subscription", string(sub.ID)),
			slog.Int("new", outcome.NewCount),
			slog.Int("updated", outcome.UpdatedCount))
	}
}

// isNetworkSource reports whether source requires the network transport,
// per the URL encodings in spec §4.D: "|" denotes a command, "://" denotes
// a URI, otherwise a local file. file:// URIs and gopher+http(s) schemes
// are distinguished here only to the extent offline mode cares: everything
// except command and file sources is network (spec §4.I).
func isNetworkSource(source string) bool {
	if strings.HasPrefix(source, "|") {
		return false
	}
	if strings.HasPrefix(source, "file://") {
		return false
	}
	if !strings.Contains(source, "://") {
		return false
	}
	return true
}
