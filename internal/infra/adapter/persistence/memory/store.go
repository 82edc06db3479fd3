// Package memory implements the repository interfaces entirely in process
// memory, guarded by a single mutex. It exists for fast unit tests of the
// merge/rules/scheduler usecases that need real repository implementations
// without a database (SPEC_FULL §9 Testing). A mutex-guarded map is
// stdlib-only by necessity here: this is a test double, not a production
// concern any third-party store library could serve better.
//
// Store holds the shared state; each repository interface is satisfied by a
// small facade type (Nodes, Subscriptions, ...) wrapping the same *Store, so
// that e.g. NodeRepository.Get and SubscriptionRepository.Get — same method
// name, different signatures — can coexist without a naming collision on a
// single receiver type.
package memory

import (
	"context"
	"sort"
	"sync"

	"feedcore/internal/domain/entity"
	"feedcore/internal/repository"
)

// Store is the shared in-memory backing for every facade in this package.
// Safe for concurrent use.
type Store struct {
	mu sync.Mutex

	nodes         map[entity.NodeID]*entity.Node
	subscriptions map[entity.SubscriptionID]*entity.Subscription
	items         map[entity.ItemID]*entity.Item
	nextItemID    entity.ItemID
	settings      map[string]string
	remoteStates  map[entity.NodeID]*entity.RemoteSourceState
	actionQueues  map[entity.NodeID][]entity.Action
	searchViews   map[entity.NodeID]*entity.SearchFolderView
	favicons      map[entity.NodeID]*entity.Favicon
}

// New returns an empty store.
func New() *Store {
	return &Store{
		nodes:         make(map[entity.NodeID]*entity.Node),
		subscriptions: make(map[entity.SubscriptionID]*entity.Subscription),
		items:         make(map[entity.ItemID]*entity.Item),
		settings:      make(map[string]string),
		remoteStates:  make(map[entity.NodeID]*entity.RemoteSourceState),
		actionQueues:  make(map[entity.NodeID][]entity.Action),
		searchViews:   make(map[entity.NodeID]*entity.SearchFolderView),
		favicons:      make(map[entity.NodeID]*entity.Favicon),
	}
}

// Nodes returns the NodeRepository facade.
func (s *Store) Nodes() *Nodes { return &Nodes{s} }

// Subscriptions returns the SubscriptionRepository facade.
func (s *Store) Subscriptions() *Subscriptions { return &Subscriptions{s} }

// Items returns the ItemRepository facade.
func (s *Store) Items() *Items { return &Items{s} }

// Settings returns the SettingsRepository facade.
func (s *Store) Settings() *Settings { return &Settings{s} }

// RemoteStates returns the RemoteStateRepository facade.
func (s *Store) RemoteStates() *RemoteStates { return &RemoteStates{s} }

// ActionQueues returns the ActionQueueRepository facade.
func (s *Store) ActionQueues() *ActionQueues { return &ActionQueues{s} }

// SearchFolders returns the SearchFolderRepository facade.
func (s *Store) SearchFolders() *SearchFolders { return &SearchFolders{s} }

// Favicons returns the FaviconRepository facade.
func (s *Store) Favicons() *Favicons { return &Favicons{s} }

// Nodes implements repository.NodeRepository over a shared Store.
type Nodes struct{ s *Store }

var _ repository.NodeRepository = (*Nodes)(nil)

func (n *Nodes) Get(ctx context.Context, id entity.NodeID) (*entity.Node, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	node, ok := n.s.nodes[id]
	if !ok {
		return nil, entity.ErrNodeNotFound
	}
	cp := *node
	return &cp, nil
}

func (n *Nodes) FindByURL(ctx context.Context, url string) (*entity.Node, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	for _, node := range n.s.nodes {
		if node.SubscriptionID == "" {
			continue
		}
		sub, ok := n.s.subscriptions[node.SubscriptionID]
		if ok && sub.Source == url {
			cp := *node
			return &cp, nil
		}
	}
	return nil, entity.ErrNodeNotFound
}

func (n *Nodes) Children(ctx context.Context, parent entity.NodeID) ([]*entity.Node, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	var out []*entity.Node
	for _, node := range n.s.nodes {
		if node.ParentID == parent {
			cp := *node
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (n *Nodes) Save(ctx context.Context, node *entity.Node) error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	cp := *node
	n.s.nodes[node.ID] = &cp
	return nil
}

func (n *Nodes) Delete(ctx context.Context, id entity.NodeID) error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	delete(n.s.nodes, id)
	return nil
}

// Subscriptions implements repository.SubscriptionRepository over a shared Store.
type Subscriptions struct{ s *Store }

var _ repository.SubscriptionRepository = (*Subscriptions)(nil)

func (r *Subscriptions) Get(ctx context.Context, id entity.SubscriptionID) (*entity.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sub, ok := r.s.subscriptions[id]
	if !ok {
		return nil, entity.ErrNodeNotFound
	}
	cp := *sub
	return &cp, nil
}

func (r *Subscriptions) ListDue(ctx context.Context) ([]*entity.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Subscription, 0, len(r.s.subscriptions))
	for _, sub := range r.s.subscriptions {
		if sub.Discontinued {
			continue
		}
		cp := *sub
		out = append(out, &cp)
	}
	return out, nil
}

func (r *Subscriptions) Save(ctx context.Context, sub *entity.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *sub
	r.s.subscriptions[sub.ID] = &cp
	return nil
}

func (r *Subscriptions) Delete(ctx context.Context, id entity.SubscriptionID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.subscriptions, id)
	return nil
}

// Items implements repository.ItemRepository over a shared Store.
type Items struct{ s *Store }

var _ repository.ItemRepository = (*Items)(nil)

func (r *Items) FindMatch(ctx context.Context, key repository.MatchKey) (*entity.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range r.s.items {
		if it.SubscriptionID != key.SubscriptionID {
			continue
		}
		if key.SourceID != "" {
			if it.SourceID == key.SourceID {
				cp := *it
				return &cp, nil
			}
			continue
		}
		if it.Title == key.Title && it.SourceURL == key.SourceURL {
			cp := *it
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *Items) Insert(ctx context.Context, item *entity.Item) (entity.ItemID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextItemID++
	item.ID = r.s.nextItemID
	cp := *item
	r.s.items[item.ID] = &cp
	return item.ID, nil
}

func (r *Items) Update(ctx context.Context, item *entity.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *item
	r.s.items[item.ID] = &cp
	return nil
}

func (r *Items) ListBySubscription(ctx context.Context, subID entity.SubscriptionID) ([]*entity.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Item
	for _, it := range r.s.items {
		if it.SubscriptionID == subID {
			cp := *it
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Published.Before(out[j].Published) })
	return out, nil
}

func (r *Items) DeleteOldestReadUnflagged(ctx context.Context, subID entity.SubscriptionID, count int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var candidates []*entity.Item
	for _, it := range r.s.items {
		if it.SubscriptionID == subID && it.Read && !it.Flagged {
			candidates = append(candidates, it)
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Published.Before(candidates[j].Published) })

	n := count
	if n > len(candidates) {
		n = len(candidates)
	}
	for i := 0; i < n; i++ {
		delete(r.s.items, candidates[i].ID)
	}
	return n, nil
}

func (r *Items) CountBySubscription(ctx context.Context, subID entity.SubscriptionID) (total, unread int, err error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range r.s.items {
		if it.SubscriptionID != subID {
			continue
		}
		total++
		if !it.Read {
			unread++
		}
	}
	return total, unread, nil
}

func (r *Items) Delete(ctx context.Context, id entity.ItemID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.items, id)
	return nil
}

func (r *Items) ListAll(ctx context.Context) ([]*entity.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Item, 0, len(r.s.items))
	for _, it := range r.s.items {
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

// Settings implements repository.SettingsRepository over a shared Store.
type Settings struct{ s *Store }

var _ repository.SettingsRepository = (*Settings)(nil)

func (r *Settings) Get(ctx context.Context, key string) (string, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.settings[key]
	return v, ok, nil
}

func (r *Settings) Set(ctx context.Context, key, value string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.settings[key] = value
	return nil
}

// RemoteStates implements repository.RemoteStateRepository over a shared Store.
type RemoteStates struct{ s *Store }

var _ repository.RemoteStateRepository = (*RemoteStates)(nil)

func (r *RemoteStates) Get(ctx context.Context, nodeID entity.NodeID) (*entity.RemoteSourceState, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.remoteStates[nodeID]
	if !ok {
		return entity.NewRemoteSourceState(nodeID), nil
	}
	cp := *st
	return &cp, nil
}

func (r *RemoteStates) Save(ctx context.Context, state *entity.RemoteSourceState) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *state
	r.s.remoteStates[state.NodeID] = &cp
	return nil
}

// ActionQueues implements repository.ActionQueueRepository over a shared Store.
type ActionQueues struct{ s *Store }

var _ repository.ActionQueueRepository = (*ActionQueues)(nil)

func (r *ActionQueues) Enqueue(ctx context.Context, nodeID entity.NodeID, action entity.Action, headInsert bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := r.s.actionQueues[nodeID]
	if headInsert {
		q = append([]entity.Action{action}, q...)
	} else {
		q = append(q, action)
	}
	r.s.actionQueues[nodeID] = q
	return nil
}

func (r *ActionQueues) Peek(ctx context.Context, nodeID entity.NodeID) (entity.Action, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := r.s.actionQueues[nodeID]
	if len(q) == 0 {
		return entity.Action{}, false, nil
	}
	return q[0], true, nil
}

func (r *ActionQueues) Pop(ctx context.Context, nodeID entity.NodeID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := r.s.actionQueues[nodeID]
	if len(q) == 0 {
		return nil
	}
	r.s.actionQueues[nodeID] = q[1:]
	return nil
}

func (r *ActionQueues) List(ctx context.Context, nodeID entity.NodeID) ([]entity.Action, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entity.Action, len(r.s.actionQueues[nodeID]))
	copy(out, r.s.actionQueues[nodeID])
	return out, nil
}

// SearchFolders implements repository.SearchFolderRepository over a shared Store.
type SearchFolders struct{ s *Store }

var _ repository.SearchFolderRepository = (*SearchFolders)(nil)

func (r *SearchFolders) Get(ctx context.Context, nodeID entity.NodeID) (*entity.SearchFolderView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.searchViews[nodeID]
	if !ok {
		return &entity.SearchFolderView{NodeID: nodeID}, nil
	}
	cp := *v
	return &cp, nil
}

func (r *SearchFolders) Save(ctx context.Context, view *entity.SearchFolderView) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *view
	r.s.searchViews[view.NodeID] = &cp
	return nil
}

// Favicons implements repository.FaviconRepository over a shared Store.
type Favicons struct{ s *Store }

var _ repository.FaviconRepository = (*Favicons)(nil)

func (r *Favicons) Get(ctx context.Context, nodeID entity.NodeID) (*entity.Favicon, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	icon, ok := r.s.favicons[nodeID]
	if !ok {
		return nil, false, nil
	}
	cp := *icon
	return &cp, true, nil
}

func (r *Favicons) Save(ctx context.Context, icon *entity.Favicon) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *icon
	r.s.favicons[icon.NodeID] = &cp
	return nil
}

func (r *Favicons) Delete(ctx context.Context, nodeID entity.NodeID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.favicons, nodeID)
	return nil
}
