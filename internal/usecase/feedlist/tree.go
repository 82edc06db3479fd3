// Package feedlist implements the typed feed-list tree's operations and its
// OPML-shaped import/export (spec §4.E).
package feedlist

import (
	"context"
	"fmt"

	"feedcore/internal/domain/entity"
	"feedcore/internal/repository"
)

// Tree operates on nodes persisted via repository.NodeRepository. Child
// order is authoritative on the parent node's Children field, not derived
// from a ParentID scan, so AddChild's position argument is meaningful.
type Tree struct {
	nodes repository.NodeRepository
}

// New returns a Tree backed by nodes.
func New(nodes repository.NodeRepository) *Tree {
	return &Tree{nodes: nodes}
}

// FindByID looks up a node directly (spec §4.E "findById").
func (t *Tree) FindByID(ctx context.Context, id entity.NodeID) (*entity.Node, error) {
	return t.nodes.Get(ctx, id)
}

// FindByURL looks up a feed/source-root node by its subscription's current
// source URL (spec §4.E "findByUrl").
func (t *Tree) FindByURL(ctx context.Context, url string) (*entity.Node, error) {
	return t.nodes.FindByURL(ctx, url)
}

// ForEachChild visits parent's children in their stored order, stopping at
// the first error returned by fn (spec §4.E "forEachChild").
func (t *Tree) ForEachChild(ctx context.Context, parent entity.NodeID, fn func(*entity.Node) error) error {
	node, err := t.nodes.Get(ctx, parent)
	if err != nil {
		return err
	}
	for _, childID := range node.Children {
		child, err := t.nodes.Get(ctx, childID)
		if err != nil {
			return err
		}
		if err := fn(child); err != nil {
			return err
		}
	}
	return nil
}

// AddChild inserts child under parent at position (spec §4.E
// "addChild(position)"). A negative position, or one beyond the current
// child count, appends to the end.
func (t *Tree) AddChild(ctx context.Context, parent entity.NodeID, child *entity.Node, position int) error {
	parentNode, err := t.nodes.Get(ctx, parent)
	if err != nil {
		return err
	}
	if !parentNode.HasCapability(entity.CapHasChildren) {
		return fmt.Errorf("node %q: %w", parent, entity.ErrInvalidNodeKind)
	}

	child.ParentID = parent
	if err := t.nodes.Save(ctx, child); err != nil {
		return err
	}

	parentNode.Children = insertAt(parentNode.Children, child.ID, position)
	return t.nodes.Save(ctx, parentNode)
}

// Reparent moves node from its current parent to newParent, preserving the
// node's identity and subtree (spec §4.E "reparent").
func (t *Tree) Reparent(ctx context.Context, nodeID, newParent entity.NodeID) error {
	node, err := t.nodes.Get(ctx, nodeID)
	if err != nil {
		return err
	}
	oldParent := node.ParentID

	if oldParent != "" {
		old, err := t.nodes.Get(ctx, oldParent)
		if err != nil {
			return err
		}
		old.Children = removeID(old.Children, nodeID)
		if err := t.nodes.Save(ctx, old); err != nil {
			return err
		}
	}

	next, err := t.nodes.Get(ctx, newParent)
	if err != nil {
		return err
	}
	if !next.HasCapability(entity.CapHasChildren) {
		return fmt.Errorf("node %q: %w", newParent, entity.ErrInvalidNodeKind)
	}
	next.Children = append(next.Children, nodeID)
	if err := t.nodes.Save(ctx, next); err != nil {
		return err
	}

	node.ParentID = newParent
	return t.nodes.Save(ctx, node)
}

// Remove deletes nodeID and its entire subtree, calling onRemoved once per
// node in bottom-up order (every descendant removed before its ancestor)
// so per-kind cleanup — favicon, items, subscription row — runs in a
// defined order (spec §4.E "fires a removal event for every descendant
// bottom-up").
func (t *Tree) Remove(ctx context.Context, nodeID entity.NodeID, onRemoved func(*entity.Node) error) error {
	node, err := t.nodes.Get(ctx, nodeID)
	if err != nil {
		return err
	}

	for _, childID := range node.Children {
		if err := t.Remove(ctx, childID, onRemoved); err != nil {
			return err
		}
	}

	if onRemoved != nil {
		if err := onRemoved(node); err != nil {
			return err
		}
	}

	if node.ParentID != "" {
		parent, err := t.nodes.Get(ctx, node.ParentID)
		if err != nil {
			return err
		}
		parent.Children = removeID(parent.Children, nodeID)
		if err := t.nodes.Save(ctx, parent); err != nil {
			return err
		}
	}

	return t.nodes.Delete(ctx, nodeID)
}

func insertAt(ids []entity.NodeID, id entity.NodeID, position int) []entity.NodeID {
	if position < 0 || position >= len(ids) {
		return append(ids, id)
	}
	out := make([]entity.NodeID, 0, len(ids)+1)
	out = append(out, ids[:position]...)
	out = append(out, id)
	out = append(out, ids[position:]...)
	return out
}

func removeID(ids []entity.NodeID, target entity.NodeID) []entity.NodeID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
