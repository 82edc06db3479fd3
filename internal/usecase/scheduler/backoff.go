package scheduler

import (
	"math/rand"
	"sync"
	"time"

	"feedcore/internal/domain/entity"
	"feedcore/internal/resilience/retry"
)

// tickBackoff tracks a per-subscription retry delay for transient failures
// (spec §7: "auto-update retries on next tick", bounded by
// retry.SchedulerTickConfig so a host that is down doesn't get hammered
// every tick). It is independent of Subscription.State.LastPoll: a
// subscription can be "due" by interval yet still blocked here until its
// backoff window elapses.
type tickBackoff struct {
	cfg retry.Config

	mu    sync.Mutex
	state map[entity.SubscriptionID]*backoffEntry
}

type backoffEntry struct {
	streak      int
	nextAttempt time.Time
}

func newTickBackoff(cfg retry.Config) *tickBackoff {
	return &tickBackoff{cfg: cfg, state: make(map[entity.SubscriptionID]*backoffEntry)}
}

// blocked reports whether id is still inside its backoff window at now.
func (b *tickBackoff) blocked(id entity.SubscriptionID, now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	entry, ok := b.state[id]
	if !ok {
		return false
	}
	return now.Before(entry.nextAttempt)
}

// recordFailure advances id's backoff streak and computes its next
// permitted attempt time.
func (b *tickBackoff) recordFailure(id entity.SubscriptionID, now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	entry, ok := b.state[id]
	if !ok {
		entry = &backoffEntry{}
		b.state[id] = entry
	}
	entry.streak++

	delay := b.cfg.InitialDelay
	exponent := entry.streak - 1
	if exponent > b.cfg.MaxAttempts {
		exponent = b.cfg.MaxAttempts
	}
	for i := 0; i < exponent; i++ {
		delay = time.Duration(float64(delay) * b.cfg.Multiplier)
		if delay > b.cfg.MaxDelay {
			delay = b.cfg.MaxDelay
			break
		}
	}
	if b.cfg.JitterFraction > 0 {
		jitter := time.Duration(rand.Float64() * b.cfg.JitterFraction * float64(delay))
		delay += jitter
	}
	entry.nextAttempt = now.Add(delay)
}

// recordSuccess clears id's backoff state so its next failure starts fresh.
func (b *tickBackoff) recordSuccess(id entity.SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.state, id)
}
