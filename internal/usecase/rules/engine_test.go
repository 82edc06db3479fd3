package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedcore/internal/domain/entity"
	"feedcore/internal/infra/adapter/persistence/memory"
)

func TestEngine_Reevaluate_FullScan(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	engine := New(store.Nodes(), store.Items(), store.SearchFolders())

	sf := &entity.Node{ID: "sf-1", Kind: entity.KindSearchFolder, RuleSet: &entity.RuleSet{
		Mode:  entity.MatchAny,
		Rules: []entity.Rule{{InfoID: RuleTitle, Value: "golang", Additive: true}},
	}}
	require.NoError(t, store.Nodes().Save(ctx, sf))

	matchID, err := store.Items().Insert(ctx, &entity.Item{Title: "golang 1.23 released"})
	require.NoError(t, err)
	_, err = store.Items().Insert(ctx, &entity.Item{Title: "unrelated post"})
	require.NoError(t, err)

	require.NoError(t, engine.Reevaluate(ctx, "sf-1"))

	view, err := store.SearchFolders().Get(ctx, "sf-1")
	require.NoError(t, err)
	assert.True(t, view.Contains(matchID))
	assert.Len(t, view.ItemIDs, 1)
}

func TestEngine_OnItemChanged_IncrementalAddAndRemove(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	engine := New(store.Nodes(), store.Items(), store.SearchFolders())

	sf := &entity.Node{ID: "sf-1", Kind: entity.KindSearchFolder, RuleSet: &entity.RuleSet{
		Mode:  entity.MatchAny,
		Rules: []entity.Rule{{InfoID: RuleFlagged, Additive: true}},
	}}
	require.NoError(t, store.Nodes().Save(ctx, sf))

	item := &entity.Item{ID: 1, Title: "x", Flagged: false}
	require.NoError(t, engine.OnItemChanged(ctx, item, []entity.NodeID{"sf-1"}))

	view, err := store.SearchFolders().Get(ctx, "sf-1")
	require.NoError(t, err)
	assert.False(t, view.Contains(1))

	item.Flagged = true
	require.NoError(t, engine.OnItemChanged(ctx, item, []entity.NodeID{"sf-1"}))
	view, err = store.SearchFolders().Get(ctx, "sf-1")
	require.NoError(t, err)
	assert.True(t, view.Contains(1))

	item.Flagged = false
	require.NoError(t, engine.OnItemChanged(ctx, item, []entity.NodeID{"sf-1"}))
	view, err = store.SearchFolders().Get(ctx, "sf-1")
	require.NoError(t, err)
	assert.False(t, view.Contains(1), "unflagging removes the item from the view again")
}

func TestEngine_Counts_DerivedFromCurrentView(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	engine := New(store.Nodes(), store.Items(), store.SearchFolders())

	readID, err := store.Items().Insert(ctx, &entity.Item{Title: "a", Read: true})
	require.NoError(t, err)
	unreadID, err := store.Items().Insert(ctx, &entity.Item{Title: "b", Read: false})
	require.NoError(t, err)

	require.NoError(t, store.SearchFolders().Save(ctx, &entity.SearchFolderView{
		NodeID:  "sf-1",
		ItemIDs: []entity.ItemID{readID, unreadID},
	}))

	total, unread, err := engine.Counts(ctx, "sf-1")
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, unread)
}
