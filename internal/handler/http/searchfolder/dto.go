// Package searchfolder exposes a search folder node's materialised
// contents (SPEC_FULL §4.F): its rule set plus the derived item/unread
// counts, the same shape a desktop shell's folder properties dialog shows.
package searchfolder

import "feedcore/internal/domain/entity"

// RuleDTO is one predicate within a search folder's rule set.
type RuleDTO struct {
	InfoID   string `json:"info_id"`
	Value    string `json:"value"`
	Additive bool   `json:"additive"`
}

// DTO is the wire representation of a search folder's contents.
type DTO struct {
	NodeID      string    `json:"node_id"`
	Title       string    `json:"title"`
	Mode        string    `json:"mode"`
	UnreadOnly  bool      `json:"unread_only"`
	Rules       []RuleDTO `json:"rules"`
	ItemCount   int       `json:"item_count"`
	UnreadCount int       `json:"unread_count"`
}

func fromRuleSet(node *entity.Node, total, unread int) DTO {
	dto := DTO{
		NodeID:      string(node.ID),
		Title:       node.Title,
		ItemCount:   total,
		UnreadCount: unread,
	}
	if node.RuleSet != nil {
		dto.Mode = node.RuleSet.Mode.String()
		dto.UnreadOnly = node.RuleSet.UnreadOnly
		dto.Rules = make([]RuleDTO, 0, len(node.RuleSet.Rules))
		for _, r := range node.RuleSet.Rules {
			dto.Rules = append(dto.Rules, RuleDTO{InfoID: string(r.InfoID), Value: r.Value, Additive: r.Additive})
		}
	}
	return dto
}
