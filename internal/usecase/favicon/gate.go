package favicon

import (
	"context"
	"log/slog"
	"time"

	"feedcore/internal/domain/entity"
	"feedcore/internal/infra/runner"
	"feedcore/internal/repository"
	"feedcore/internal/usecase/scheduler"
)

// Gate implements scheduler.FaviconGate: it stamps the subscription's
// lastFaviconPoll immediately (so the same tick doesn't re-trigger it) and
// runs the actual multi-URL probe in the background, since Scheduler.Tick
// must never block on network I/O (spec §5).
type Gate struct {
	favicons repository.FaviconRepository
	subs     repository.SubscriptionRepository
	runner   *runner.Runner
	logger   *slog.Logger
	now      func() time.Time
}

var _ scheduler.FaviconGate = (*Gate)(nil)

// NewGate returns a Gate backed by favicons/subs and submitting probes
// through r.
func NewGate(favicons repository.FaviconRepository, subs repository.SubscriptionRepository, r *runner.Runner, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{favicons: favicons, subs: subs, runner: r, logger: logger, now: time.Now}
}

// EnqueueFavicon implements scheduler.FaviconGate.
func (g *Gate) EnqueueFavicon(ctx context.Context, sub *entity.Subscription) error {
	// feedlist mints a feed subscription's id as entity.SubscriptionID(node.ID)
	// (see internal/usecase/update's subscriptionNodeID), so the cache id the
	// favicon repository keys on is recovered the same way here.
	nodeID := entity.NodeID(sub.ID)

	sub.State.LastFaviconPoll = g.now()
	if err := g.subs.Save(ctx, sub); err != nil {
		return err
	}

	req := Request{
		NodeID:      nodeID,
		FeedURL:     sub.Source,
		HomepageURL: sub.State.HomepageURL,
		IconHint:    sub.State.IconHint,
	}
	subID := sub.ID
	go g.discoverAndSave(nodeID, subID, req)
	return nil
}

func (g *Gate) discoverAndSave(nodeID entity.NodeID, subID entity.SubscriptionID, req Request) {
	result, err := Discover(context.Background(), req, RunnerFetch(g.runner, string(nodeID)))
	if err != nil {
		g.logger.Debug("favicon discovery failed", slog.String("subscription", string(subID)), slog.Any("error", err))
		return
	}
	if err := g.favicons.Save(context.Background(), result.ToFavicon(nodeID, g.now())); err != nil {
		g.logger.Error("save favicon", slog.String("subscription", string(subID)), slog.Any("error", err))
	}
}
