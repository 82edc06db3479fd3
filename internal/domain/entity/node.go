package entity

import (
	"fmt"

	"github.com/google/uuid"
)

// NodeKind discriminates the feed-list tree node variants. Behaviour that in
// the original implementation is dispatched through per-kind provider
// vtables (load/save, import/export, add/remove) is modeled here as a
// closed set of tagged values switched over by the feedlist usecase, rather
// than an interface hierarchy — there is no meaningful sub-kind behaviour
// that callers need to extend at runtime.
type NodeKind int

const (
	// KindFolder groups children with no subscription of its own.
	KindFolder NodeKind = iota
	// KindFeed owns a Subscription and receives merged items directly.
	KindFeed
	// KindSearchFolder owns a RuleSet and a materialised item-id view.
	KindSearchFolder
	// KindSourceRoot owns a Subscription to a remote account and a subtree
	// of child feeds synchronised from that account.
	KindSourceRoot
)

func (k NodeKind) String() string {
	switch k {
	case KindFolder:
		return "folder"
	case KindFeed:
		return "feed"
	case KindSearchFolder:
		return "search-folder"
	case KindSourceRoot:
		return "source-root"
	default:
		return fmt.Sprintf("unknown-kind(%d)", int(k))
	}
}

// Capability bits, a pure function of NodeKind (see Node.Capabilities).
const (
	// CapHasChildren allows this node to own children in the tree.
	CapHasChildren uint32 = 1 << iota
	// CapHasSubscription means the node owns a Subscription and can be
	// scheduled for fetch by the auto-update scheduler.
	CapHasSubscription
	// CapHasRuleSet means the node owns a RuleSet and a materialised view.
	CapHasRuleSet
	// CapRemoteManaged means the node's children are owned by a remote
	// account and should not be freely reparented/removed by the user
	// without issuing a corresponding remote edit action.
	CapRemoteManaged
)

// capabilitiesByKind is the pure function from NodeKind to its capability
// bitset named in spec §3 ("capability bits are a pure function of kind").
var capabilitiesByKind = map[NodeKind]uint32{
	KindFolder:       CapHasChildren,
	KindFeed:         CapHasSubscription,
	KindSearchFolder: CapHasRuleSet,
	KindSourceRoot:   CapHasChildren | CapHasSubscription | CapRemoteManaged,
}

// NodeID is a stable, opaque node identifier, unique within a feed-list tree.
type NodeID string

// NewNodeID mints a fresh, globally unique node id.
func NewNodeID() NodeID {
	return NodeID(uuid.NewString())
}

// Node is the unit of the feed-list tree (spec §3 "Node").
type Node struct {
	ID       NodeID
	Title    string
	ParentID NodeID // zero value means root
	Children []NodeID
	Kind     NodeKind

	// SubscriptionID is set when Kind has CapHasSubscription.
	SubscriptionID SubscriptionID

	// RuleSet is set when Kind == KindSearchFolder.
	RuleSet *RuleSet

	ItemCount   int
	UnreadCount int
	NewCount    int
}

// NewNode constructs a node of the given kind with a freshly minted id.
// Root nodes pass a zero ParentID.
func NewNode(kind NodeKind, title string, parentID NodeID) *Node {
	return &Node{
		ID:       NewNodeID(),
		Title:    title,
		ParentID: parentID,
		Kind:     kind,
	}
}

// Capabilities returns the capability bitset for this node's kind.
func (n *Node) Capabilities() uint32 {
	return capabilitiesByKind[n.Kind]
}

// HasCapability reports whether this node's kind carries the given bit.
func (n *Node) HasCapability(bit uint32) bool {
	return n.Capabilities()&bit != 0
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool {
	return n.ParentID == ""
}

// Validate checks the invariants spec §3 assigns to a single Node value
// (tree-wide invariants like id uniqueness are the feedlist usecase's job,
// since they require the whole tree, not just one node).
func (n *Node) Validate() error {
	if _, ok := capabilitiesByKind[n.Kind]; !ok {
		return fmt.Errorf("node %q: %w", n.ID, ErrInvalidNodeKind)
	}
	if n.HasCapability(CapHasSubscription) && n.SubscriptionID == "" {
		return fmt.Errorf("node %q: %w", n.ID, ErrSubscriptionRequired)
	}
	if n.Kind == KindSearchFolder && n.RuleSet == nil {
		return fmt.Errorf("node %q: %w", n.ID, ErrEmptyRuleSet)
	}
	return nil
}
