package remote

import (
	"context"

	"feedcore/internal/domain/entity"
	"feedcore/internal/observability/metrics"
	"feedcore/internal/repository"
)

// Queue wraps the FIFO edit-action queue with the push-ordering rules spec
// §4.G requires: subscribe/unsubscribe edits jump to the head (urgency),
// read/flag edits append to the tail, and marking an item unread enqueues
// two actions back to back.
type Queue struct {
	actions repository.ActionQueueRepository
}

// NewQueue returns a Queue backed by actions.
func NewQueue(actions repository.ActionQueueRepository) *Queue {
	return &Queue{actions: actions}
}

// PushMarkRead enqueues a read-state change. Marking an item unread also
// enqueues the dialect's required tracking-kept-unread companion action
// immediately after the primary edit-tag action, taken verbatim from the
// Google-Reader-API edit flow's "every UNREAD request should be followed
// by tracking-kept-unread" rule.
func (q *Queue) PushMarkRead(ctx context.Context, nodeID entity.NodeID, itemGUID, feedURL string, read bool) error {
	kind := entity.ActionMarkRead
	if !read {
		kind = entity.ActionMarkUnread
	}
	if err := q.enqueue(ctx, nodeID, entity.Action{Kind: kind, ItemGUID: itemGUID, FeedURL: feedURL}, false); err != nil {
		return err
	}
	if read {
		return nil
	}
	return q.enqueue(ctx, nodeID, entity.Action{Kind: entity.ActionTrackingKeptUnread, ItemGUID: itemGUID, FeedURL: feedURL}, false)
}

// PushFlag enqueues a star/unstar edit at the tail.
func (q *Queue) PushFlag(ctx context.Context, nodeID entity.NodeID, itemGUID, feedURL string, flagged bool) error {
	kind := entity.ActionStar
	if !flagged {
		kind = entity.ActionUnstar
	}
	return q.enqueue(ctx, nodeID, entity.Action{Kind: kind, ItemGUID: itemGUID, FeedURL: feedURL}, false)
}

// PushSubscribe enqueues a subscribe edit at the head.
func (q *Queue) PushSubscribe(ctx context.Context, nodeID entity.NodeID, feedURL string) error {
	return q.enqueue(ctx, nodeID, entity.Action{Kind: entity.ActionSubscribe, FeedURL: feedURL}, true)
}

// PushUnsubscribe enqueues an unsubscribe edit at the head.
func (q *Queue) PushUnsubscribe(ctx context.Context, nodeID entity.NodeID, feedURL string) error {
	return q.enqueue(ctx, nodeID, entity.Action{Kind: entity.ActionUnsubscribe, FeedURL: feedURL}, true)
}

// PushLabel enqueues a folder<->category add/remove-label edit at the
// tail, raised when the user reparents a node mapped to a remote category.
func (q *Queue) PushLabel(ctx context.Context, nodeID entity.NodeID, feedURL, label string, add bool) error {
	kind := entity.ActionAddLabel
	if !add {
		kind = entity.ActionRemoveLabel
	}
	return q.enqueue(ctx, nodeID, entity.Action{Kind: kind, FeedURL: feedURL, Label: label}, false)
}

// Peek returns the head action, if any.
func (q *Queue) Peek(ctx context.Context, nodeID entity.NodeID) (entity.Action, bool, error) {
	return q.actions.Peek(ctx, nodeID)
}

// Pop removes the head action after it has been applied successfully.
func (q *Queue) Pop(ctx context.Context, nodeID entity.NodeID) error {
	if err := q.actions.Pop(ctx, nodeID); err != nil {
		return err
	}
	q.reportDepth(ctx, nodeID)
	return nil
}

// List returns every pending action, head first.
func (q *Queue) List(ctx context.Context, nodeID entity.NodeID) ([]entity.Action, error) {
	return q.actions.List(ctx, nodeID)
}

// enqueue pushes action onto the repository queue and reports the node's
// new depth.
func (q *Queue) enqueue(ctx context.Context, nodeID entity.NodeID, action entity.Action, headInsert bool) error {
	if err := q.actions.Enqueue(ctx, nodeID, action, headInsert); err != nil {
		return err
	}
	q.reportDepth(ctx, nodeID)
	return nil
}

// reportDepth publishes nodeID's current queue depth. This only reflects
// the node just touched, not a true sum across every subscription's queue;
// callers that need the aggregate total should sum List across all known
// node ids themselves.
func (q *Queue) reportDepth(ctx context.Context, nodeID entity.NodeID) {
	actions, err := q.actions.List(ctx, nodeID)
	if err != nil {
		return
	}
	metrics.UpdateActionQueueDepth(len(actions))
}
