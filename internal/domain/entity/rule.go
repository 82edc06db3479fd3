package entity

import "fmt"

// MatchMode controls how a RuleSet's individual rule results combine.
type MatchMode int

const (
	MatchAny MatchMode = iota
	MatchAll
)

// RuleInfoID identifies a predicate kind in the fixed rule registry
// (spec §4.F). Kept as a string rather than an enum so the registry
// (internal/usecase/rules) can be extended without touching this type.
type RuleInfoID string

// Rule is a single predicate: (ruleInfoId, value, additive). additive=false
// negates the predicate (spec §3).
type Rule struct {
	InfoID   RuleInfoID
	Value    string
	Additive bool
}

// RuleSet is an ordered list of Rules plus a match mode and an unread-only
// gate (spec §3).
type RuleSet struct {
	Rules      []Rule
	Mode       MatchMode
	UnreadOnly bool
}

// Validate checks that the rule set is non-empty; whether each RuleInfoID
// is registered is checked by the rules usecase, which owns the registry.
func (rs *RuleSet) Validate() error {
	if rs == nil || len(rs.Rules) == 0 {
		return ErrEmptyRuleSet
	}
	return nil
}

func (m MatchMode) String() string {
	switch m {
	case MatchAny:
		return "any"
	case MatchAll:
		return "all"
	default:
		return fmt.Sprintf("unknown-mode(%d)", int(m))
	}
}
