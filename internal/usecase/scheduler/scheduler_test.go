package scheduler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedcore/internal/domain/entity"
	"feedcore/internal/infra/adapter/persistence/memory"
	"feedcore/internal/infra/parser"
	"feedcore/internal/infra/runner"
	"feedcore/internal/infra/transport"
	"feedcore/internal/usecase/merge"
	"feedcore/internal/usecase/update"
)

const tickRSS = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>T</title>
<item><title>One</title><link>https://example.com/1</link><guid>1</guid></item>
</channel></rss>`

func newTestScheduler(t *testing.T, handler http.HandlerFunc) (*Scheduler, *memory.Store, string, func()) {
	t.Helper()
	server := httptest.NewServer(handler)

	store := memory.New()
	r := runner.New(transport.New(5*time.Second, "feedcore-test/1.0"), time.Second)
	p := parser.New("feedcore-test/1.0")
	merger := merge.New(store.Items(), nil)
	updater := update.New(p, merger, store.Subscriptions(), 200)

	s := New(store.Subscriptions(), r, updater, nil, 60)
	cleanup := func() {
		r.Close()
		server.Close()
	}
	return s, store, server.URL, cleanup
}

func TestScheduler_Tick_SubmitsDueSubscription(t *testing.T) {
	var hits int32
	s, store, serverURL, cleanup := newTestScheduler(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(tickRSS))
	})
	defer cleanup()

	ctx := context.Background()
	sub := &entity.Subscription{ID: "s1", Source: serverURL, UpdateIntervalMinutes: 5}
	require.NoError(t, store.Subscriptions().Save(ctx, sub))

	require.NoError(t, s.Tick(ctx))
	waitFor(t, func() bool {
		got, err := store.Subscriptions().Get(ctx, sub.ID)
		require.NoError(t, err)
		return !got.State.LastPoll.IsZero()
	})

	updated, err := store.Subscriptions().Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.False(t, updated.State.LastPoll.IsZero())

	items, err := store.Items().ListBySubscription(ctx, sub.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestScheduler_Tick_SkipsNeverInterval(t *testing.T) {
	s, store, _, cleanup := newTestScheduler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("a never-update subscription must not be fetched")
	})
	defer cleanup()

	ctx := context.Background()
	sub := &entity.Subscription{ID: "s1", Source: "https://example.invalid/feed.xml", UpdateIntervalMinutes: entity.UpdateIntervalNever}
	require.NoError(t, store.Subscriptions().Save(ctx, sub))

	require.NoError(t, s.Tick(ctx))
	time.Sleep(20 * time.Millisecond)
}

func TestScheduler_Tick_OfflineSkipsNetworkSource(t *testing.T) {
	s, store, _, cleanup := newTestScheduler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("offline mode must suppress network sources")
	})
	defer cleanup()
	s.SetOffline(true)

	ctx := context.Background()
	sub := &entity.Subscription{ID: "s1", Source: "https://example.invalid/feed.xml", UpdateIntervalMinutes: 1}
	require.NoError(t, store.Subscriptions().Save(ctx, sub))

	require.NoError(t, s.Tick(ctx))
	time.Sleep(20 * time.Millisecond)
}

func TestScheduler_Tick_NotDueYetIsSkipped(t *testing.T) {
	s, store, _, cleanup := newTestScheduler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("a subscription not yet due must not be fetched")
	})
	defer cleanup()

	ctx := context.Background()
	sub := &entity.Subscription{ID: "s1", Source: "https://example.invalid/feed.xml", UpdateIntervalMinutes: 60}
	sub.State.LastPoll = time.Now()
	require.NoError(t, store.Subscriptions().Save(ctx, sub))

	require.NoError(t, s.Tick(ctx))
	time.Sleep(20 * time.Millisecond)
}

func TestIsNetworkSource(t *testing.T) {
	assert.False(t, isNetworkSource("|some-command"))
	assert.False(t, isNetworkSource("file:///tmp/feed.xml"))
	assert.False(t, isNetworkSource("/tmp/feed.xml"))
	assert.True(t, isNetworkSource("https://example.com/feed.xml"))
	assert.True(t, isNetworkSource("gopher://example.com/0feed"))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
