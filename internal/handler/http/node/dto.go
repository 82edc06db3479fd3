// Package node exposes the feed-list tree (SPEC_FULL §4.E) as a read-only
// HTTP introspection surface: fetch a single node, or list a folder's
// children, the way a desktop shell's sidebar would populate itself.
package node

import "feedcore/internal/domain/entity"

// DTO is the wire representation of a feed-list tree node.
type DTO struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	ParentID       string `json:"parent_id,omitempty"`
	Kind           string `json:"kind"`
	SubscriptionID string `json:"subscription_id,omitempty"`
	ItemCount      int    `json:"item_count"`
	UnreadCount    int    `json:"unread_count"`
	NewCount       int    `json:"new_count"`
}

func fromEntity(n *entity.Node) DTO {
	return DTO{
		ID:             string(n.ID),
		Title:          n.Title,
		ParentID:       string(n.ParentID),
		Kind:           n.Kind.String(),
		SubscriptionID: string(n.SubscriptionID),
		ItemCount:      n.ItemCount,
		UnreadCount:    n.UnreadCount,
		NewCount:       n.NewCount,
	}
}
