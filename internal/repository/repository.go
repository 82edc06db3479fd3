// Package repository declares the storage contracts the usecase layer
// depends on. Concrete implementations live under internal/infra/adapter/
// persistence; tests substitute the in-memory implementation in
// internal/infra/adapter/persistence/memory so usecase logic never needs a
// live database (spec "Design Notes: Global singletons" — the item store in
// particular must be a parameter).
package repository

import (
	"context"

	"feedcore/internal/domain/entity"
)

// NodeRepository persists the feed-list tree (spec §4.E).
type NodeRepository interface {
	Get(ctx context.Context, id entity.NodeID) (*entity.Node, error)
	// FindByURL looks up a feed/source-root node by its subscription's
	// current source URL (spec §4.E "findByUrl").
	FindByURL(ctx context.Context, url string) (*entity.Node, error)
	Children(ctx context.Context, parent entity.NodeID) ([]*entity.Node, error)
	Save(ctx context.Context, node *entity.Node) error
	// Delete removes exactly this node's row; recursive removal and the
	// bottom-up removal-event ordering (spec §4.E) are the feedlist
	// usecase's responsibility, not the repository's.
	Delete(ctx context.Context, id entity.NodeID) error
}

// SubscriptionRepository persists Subscription value objects (spec §3).
type SubscriptionRepository interface {
	Get(ctx context.Context, id entity.SubscriptionID) (*entity.Subscription, error)
	// ListDue returns subscriptions whose EffectiveInterval-based due check
	// should be evaluated by the caller; the repository does no interval
	// math, it only returns candidates cheaply (e.g. all non-discontinued
	// rows) so the scheduler usecase can apply effectiveInterval itself.
	ListDue(ctx context.Context) ([]*entity.Subscription, error)
	Save(ctx context.Context, sub *entity.Subscription) error
	Delete(ctx context.Context, id entity.SubscriptionID) error
}

// MatchKey is how the merge usecase asks the item store to look up an
// existing item: by sourceId when the feed supplies one, else by the
// (title, link) fallback pair (spec §3, §9 open question).
type MatchKey struct {
	SubscriptionID entity.SubscriptionID
	SourceID       string // may be empty
	Title          string // fallback key component
	SourceURL      string // fallback key component ("link")
}

// ItemRepository persists Item rows (spec §3, §4.C).
type ItemRepository interface {
	// FindMatch looks up an existing item for merge matching. Implementations
	// must prefer an exact SourceID match when MatchKey.SourceID is
	// non-empty, falling back to (Title, SourceURL) only when it is empty
	// (spec §9 open question — fallback strategy is the merge usecase's
	// pluggable MatchStrategy; this method exposes both lookup paths so any
	// strategy can be implemented above it).
	FindMatch(ctx context.Context, key MatchKey) (*entity.Item, error)
	Insert(ctx context.Context, item *entity.Item) (entity.ItemID, error)
	Update(ctx context.Context, item *entity.Item) error
	ListBySubscription(ctx context.Context, subID entity.SubscriptionID) ([]*entity.Item, error)
	// DeleteOldestReadUnflagged deletes up to count items for subscription
	// subID that are read and not flagged, oldest Published first (spec
	// §4.C cache-limit enforcement, I3). Returns the number actually
	// deleted, which may be less than count if fewer qualify.
	DeleteOldestReadUnflagged(ctx context.Context, subID entity.SubscriptionID, count int) (int, error)
	CountBySubscription(ctx context.Context, subID entity.SubscriptionID) (total, unread int, err error)
	Delete(ctx context.Context, id entity.ItemID) error
	// ListForRuleEvaluation returns every item in the store; used for a
	// search folder's full re-evaluation (spec §4.F). Production stores
	// should page this internally; the in-memory store used in tests
	// returns it directly.
	ListAll(ctx context.Context) ([]*entity.Item, error)
}

// SettingsRepository is the narrow get/set contract spec §6 names for
// config-key storage ("owned by config-key storage, out of scope" — this
// interface is the seam, not a prescription of its backing store).
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// RemoteStateRepository persists a source-root's login state machine and
// folder/category map (spec §3 "Remote-source state").
type RemoteStateRepository interface {
	Get(ctx context.Context, nodeID entity.NodeID) (*entity.RemoteSourceState, error)
	Save(ctx context.Context, state *entity.RemoteSourceState) error
}

// ActionQueueRepository persists the per-source-root FIFO edit-action queue
// so pending actions survive a process restart (spec §4.G, §5 "the action
// queue is a plain FIFO container").
type ActionQueueRepository interface {
	Enqueue(ctx context.Context, nodeID entity.NodeID, action entity.Action, headInsert bool) error
	// Peek returns the head action without removing it, or ok=false if empty.
	Peek(ctx context.Context, nodeID entity.NodeID) (action entity.Action, ok bool, err error)
	Pop(ctx context.Context, nodeID entity.NodeID) error
	List(ctx context.Context, nodeID entity.NodeID) ([]entity.Action, error)
}

// SearchFolderRepository persists a search folder's materialised item-id
// view (spec §3 "SearchFolder", §4.F).
type SearchFolderRepository interface {
	Get(ctx context.Context, nodeID entity.NodeID) (*entity.SearchFolderView, error)
	Save(ctx context.Context, view *entity.SearchFolderView) error
}

// FaviconRepository persists the cached icon bytes for a feed/source-root
// node (spec §4.J, keyed the same way favicon.h's cache id is: by node id).
type FaviconRepository interface {
	Get(ctx context.Context, nodeID entity.NodeID) (*entity.Favicon, bool, error)
	Save(ctx context.Context, icon *entity.Favicon) error
	Delete(ctx context.Context, nodeID entity.NodeID) error
}
