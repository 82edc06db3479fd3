package rules

import (
	"context"
	"fmt"

	"feedcore/internal/domain/entity"
	"feedcore/internal/repository"
)

// Engine materialises search folders' item-id sets from their rule sets
// (spec §4.F). It does not own the feed-list tree: callers (the feedlist
// usecase) tell it which search-folder node ids exist and need
// re-evaluation on a given item change.
type Engine struct {
	nodes         repository.NodeRepository
	items         repository.ItemRepository
	searchFolders repository.SearchFolderRepository
}

// New returns an Engine backed by the given repositories.
func New(nodes repository.NodeRepository, items repository.ItemRepository, searchFolders repository.SearchFolderRepository) *Engine {
	return &Engine{nodes: nodes, items: items, searchFolders: searchFolders}
}

// Reevaluate performs a full re-evaluation of the search folder at nodeID
// against every item in the store (spec §4.F: "the user edits the rule
// set (full re-evaluation)").
func (e *Engine) Reevaluate(ctx context.Context, nodeID entity.NodeID) error {
	node, err := e.nodes.Get(ctx, nodeID)
	if err != nil {
		return err
	}
	if node.Kind != entity.KindSearchFolder {
		return fmt.Errorf("node %q: %w", nodeID, entity.ErrInvalidNodeKind)
	}
	if node.RuleSet == nil {
		return entity.ErrEmptyRuleSet
	}

	all, err := e.items.ListAll(ctx)
	if err != nil {
		return err
	}

	var matched []entity.ItemID
	for _, it := range all {
		ok, err := Evaluate(node.RuleSet, it)
		if err != nil {
			return err
		}
		if ok {
			matched = append(matched, it.ID)
		}
	}

	return e.searchFolders.Save(ctx, &entity.SearchFolderView{NodeID: nodeID, ItemIDs: matched})
}

// OnItemChanged incrementally re-tests item against each search folder
// named in searchFolderIDs, adding or removing it from that folder's view
// as the rule-set match changes (spec §4.F: "an item is inserted, deleted,
// or has a column used by the rule set mutated (incremental: re-test that
// item)").
func (e *Engine) OnItemChanged(ctx context.Context, item *entity.Item, searchFolderIDs []entity.NodeID) error {
	for _, nodeID := range searchFolderIDs {
		if err := e.retest(ctx, nodeID, item); err != nil {
			return err
		}
	}
	return nil
}

// OnItemDeleted removes itemID from every named search folder's view.
func (e *Engine) OnItemDeleted(ctx context.Context, itemID entity.ItemID, searchFolderIDs []entity.NodeID) error {
	for _, nodeID := range searchFolderIDs {
		view, err := e.searchFolders.Get(ctx, nodeID)
		if err != nil {
			return err
		}
		if !view.Contains(itemID) {
			continue
		}
		view.ItemIDs = removeID(view.ItemIDs, itemID)
		if err := e.searchFolders.Save(ctx, view); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) retest(ctx context.Context, nodeID entity.NodeID, item *entity.Item) error {
	node, err := e.nodes.Get(ctx, nodeID)
	if err != nil {
		return err
	}
	if node.RuleSet == nil {
		return nil
	}

	matches, err := Evaluate(node.RuleSet, item)
	if err != nil {
		return err
	}

	view, err := e.searchFolders.Get(ctx, nodeID)
	if err != nil {
		return err
	}

	already := view.Contains(item.ID)
	switch {
	case matches && !already:
		view.ItemIDs = append(view.ItemIDs, item.ID)
	case !matches && already:
		view.ItemIDs = removeID(view.ItemIDs, item.ID)
	default:
		return nil
	}
	return e.searchFolders.Save(ctx, view)
}

// Counts derives a search folder's itemCount/unreadCount from its current
// view, never stored on the view itself (spec §4.F: "Counters itemCount /
// unreadCount of a search folder are derived, not stored").
func (e *Engine) Counts(ctx context.Context, nodeID entity.NodeID) (total, unread int, err error) {
	view, err := e.searchFolders.Get(ctx, nodeID)
	if err != nil {
		return 0, 0, err
	}
	if len(view.ItemIDs) == 0 {
		return 0, 0, nil
	}

	all, err := e.items.ListAll(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, it := range all {
		if !view.Contains(it.ID) {
			continue
		}
		total++
		if !it.Read {
			unread++
		}
	}
	return total, unread, nil
}

func removeID(ids []entity.ItemID, target entity.ItemID) []entity.ItemID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
