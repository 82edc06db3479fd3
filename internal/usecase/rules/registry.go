// Package rules implements the fixed rule-kind registry, RuleSet
// evaluation, and search-folder materialisation (spec §4.F).
package rules

import "feedcore/internal/domain/entity"

// Info describes one rule kind: a stable id, a dialog title, the phrasing
// for its positive ("additive") and negative sense, and whether it takes a
// value at all (spec §4.F: "a stable id, a human title, text for the
// positive and negative phrasing, and a boolean needs-value flag").
type Info struct {
	ID          entity.RuleInfoID
	Title       string
	Positive    string
	Negative    string
	NeedsValue  bool
}

// Fixed rule-kind ids, mirroring the original's ruleFunctions table
// (original_source/src/rule.c): read/unread state, flagged state, and
// substring matches against the item's text columns.
const (
	RuleUnread    entity.RuleInfoID = "unread"
	RuleFlagged   entity.RuleInfoID = "flagged"
	RuleTitle     entity.RuleInfoID = "title"
	RuleBody      entity.RuleInfoID = "body"
	RuleAuthor    entity.RuleInfoID = "author"
	RuleSourceURL entity.RuleInfoID = "sourceURL"
	RuleCategory  entity.RuleInfoID = "category"
)

var registry = map[entity.RuleInfoID]Info{
	RuleUnread: {
		ID: RuleUnread, Title: "Item is unread",
		Positive: "Item is unread", Negative: "Item is read",
	},
	RuleFlagged: {
		ID: RuleFlagged, Title: "Item is flagged",
		Positive: "Item is flagged", Negative: "Item is not flagged",
	},
	RuleTitle: {
		ID: RuleTitle, Title: "Title contains", NeedsValue: true,
		Positive: "Title contains", Negative: "Title does not contain",
	},
	RuleBody: {
		ID: RuleBody, Title: "Body contains", NeedsValue: true,
		Positive: "Body contains", Negative: "Body does not contain",
	},
	RuleAuthor: {
		ID: RuleAuthor, Title: "Author contains", NeedsValue: true,
		Positive: "Author contains", Negative: "Author does not contain",
	},
	RuleSourceURL: {
		ID: RuleSourceURL, Title: "Source URL contains", NeedsValue: true,
		Positive: "Source URL contains", Negative: "Source URL does not contain",
	},
	RuleCategory: {
		ID: RuleCategory, Title: "Category contains", NeedsValue: true,
		Positive: "Category contains", Negative: "Category does not contain",
	},
}

// Lookup returns the Info for id, or false if id is not in the registry.
func Lookup(id entity.RuleInfoID) (Info, bool) {
	info, ok := registry[id]
	return info, ok
}

// All returns the fixed rule-kind registry, in a stable order, for UI
// enumeration (e.g. a rule-editor's dropdown).
func All() []Info {
	order := []entity.RuleInfoID{RuleUnread, RuleFlagged, RuleTitle, RuleBody, RuleAuthor, RuleSourceURL, RuleCategory}
	out := make([]Info, 0, len(order))
	for _, id := range order {
		out = append(out, registry[id])
	}
	return out
}
