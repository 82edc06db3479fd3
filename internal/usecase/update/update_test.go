package update

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedcore/internal/domain/entity"
	"feedcore/internal/infra/adapter/persistence/memory"
	"feedcore/internal/infra/parser"
	"feedcore/internal/usecase/merge"
	"feedcore/internal/usecase/signal"
)

const rssBody = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Example</title>
    <item><title>One</title><link>https://example.com/1</link><guid>1</guid></item>
  </channel>
</rss>`

func newTestUpdater(t *testing.T) (*Updater, *memory.Store) {
	t.Helper()
	store := memory.New()
	p := parser.New("feedcore-test/1.0")
	merger := merge.New(store.Items(), nil)
	return New(p, merger, store.Subscriptions(), 200), store
}

func TestPrepareRequest_DiscontinuedIsRejected(t *testing.T) {
	u, _ := newTestUpdater(t)
	sub := &entity.Subscription{ID: "s1", Source: "https://example.com/feed.xml", Discontinued: true}
	_, err := u.PrepareRequest(sub)
	assert.ErrorIs(t, err, entity.ErrDiscontinued)
}

func TestPrepareRequest_BearerAuth(t *testing.T) {
	u, _ := newTestUpdater(t)
	sub := &entity.Subscription{ID: "s1", Source: "https://example.com/feed.xml", Auth: entity.AuthCredentials{BearerToken: "tok"}}
	req, err := u.PrepareRequest(sub)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", req.AuthHeaderValue)
	assert.True(t, req.AllowCommands)
}

func TestProcessResult_SuccessMergesItems(t *testing.T) {
	ctx := context.Background()
	u, _ := newTestUpdater(t)
	sub := &entity.Subscription{ID: "s1", Source: "https://example.com/feed.xml"}

	result := &entity.UpdateResult{
		Source:     sub.Source,
		HTTPStatus: http.StatusOK,
		Data:       []byte(rssBody),
	}
	now := time.Now()
	outcome, err := u.ProcessResult(ctx, sub, result, now)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.NewCount)
	assert.Equal(t, entity.LastErrorNone, sub.LastError)
	assert.Equal(t, now, sub.State.LastPoll)
}

func TestProcessResult_NotModifiedAdvancesPollOnly(t *testing.T) {
	ctx := context.Background()
	u, _ := newTestUpdater(t)
	sub := &entity.Subscription{ID: "s1", Source: "https://example.com/feed.xml"}

	result := &entity.UpdateResult{HTTPStatus: http.StatusNotModified, UpdatedState: sub.State}
	now := time.Now()
	outcome, err := u.ProcessResult(ctx, sub, result, now)
	require.NoError(t, err)
	assert.Zero(t, outcome.NewCount)
	assert.Equal(t, now, sub.State.LastPoll)
}

func TestProcessResult_GoneSetsDiscontinued(t *testing.T) {
	ctx := context.Background()
	u, _ := newTestUpdater(t)
	sub := &entity.Subscription{ID: "s1", Source: "https://example.com/feed.xml"}

	result := &entity.UpdateResult{HTTPStatus: http.StatusGone}
	_, err := u.ProcessResult(ctx, sub, result, time.Now())
	require.NoError(t, err)
	assert.True(t, sub.Discontinued)
	assert.Equal(t, entity.LastErrorGone, sub.LastError)
}

func TestProcessResult_NotFoundStaysUpdatable(t *testing.T) {
	ctx := context.Background()
	u, _ := newTestUpdater(t)
	sub := &entity.Subscription{ID: "s1", Source: "https://example.com/feed.xml"}

	result := &entity.UpdateResult{HTTPStatus: http.StatusNotFound}
	outcome, err := u.ProcessResult(ctx, sub, result, time.Now())
	require.NoError(t, err)
	assert.False(t, sub.Discontinued)
	assert.True(t, outcome.Retryable)
	assert.Equal(t, entity.LastErrorNotFound, sub.LastError)
}

func TestProcessResult_ParseErrorPreservesItems(t *testing.T) {
	ctx := context.Background()
	u, store := newTestUpdater(t)
	sub := &entity.Subscription{ID: "s1", Source: "https://example.com/feed.xml"}
	require.NoError(t, store.Subscriptions().Save(ctx, sub))

	existing := &entity.Item{SubscriptionID: sub.ID, SourceID: "keep-me", Title: "kept"}
	_, err := store.Items().Insert(ctx, existing)
	require.NoError(t, err)

	result := &entity.UpdateResult{HTTPStatus: http.StatusOK, Data: []byte("not a feed")}
	_, err = u.ProcessResult(ctx, sub, result, time.Now())
	require.NoError(t, err)
	assert.Equal(t, entity.LastErrorParse, sub.LastError)

	items, err := store.Items().ListBySubscription(ctx, sub.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "keep-me", items[0].SourceID)
}

type recordingSink struct {
	name     string
	mu       sync.Mutex
	received []signal.Signal
}

func (r *recordingSink) Name() string    { return r.name }
func (r *recordingSink) IsEnabled() bool { return true }
func (r *recordingSink) Send(ctx context.Context, sig signal.Signal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.received = append(r.received, sig)
	return nil
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.received)
}

func TestProcessResult_GoneEmitsDiscontinuedSignal(t *testing.T) {
	ctx := context.Background()
	u, _ := newTestUpdater(t)
	sink := &recordingSink{name: "test-sink"}
	emitter := signal.New([]signal.Sink{sink}, 4, nil)
	u.SetSignalEmitter(emitter)

	sub := &entity.Subscription{ID: "s1", Source: "https://example.com/feed.xml"}
	_, err := u.ProcessResult(ctx, sub, &entity.UpdateResult{HTTPStatus: http.StatusGone}, time.Now())
	require.NoError(t, err)

	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, emitter.Shutdown(ctx))
	assert.Equal(t, signal.KindDiscontinued, sink.received[0].Kind)
	assert.Equal(t, entity.NodeID("s1"), sink.received[0].NodeID)
}

func TestProcessResult_FilterErrorSkipsMerge(t *testing.T) {
	ctx := context.Background()
	u, _ := newTestUpdater(t)
	sub := &entity.Subscription{ID: "s1", Source: "https://example.com/feed.xml"}

	result := &entity.UpdateResult{HTTPStatus: http.StatusOK, FilterErrors: "xsltproc: parse error"}
	_, err := u.ProcessResult(ctx, sub, result, time.Now())
	require.NoError(t, err)
	assert.Equal(t, entity.LastErrorFilter, sub.LastError)
}
