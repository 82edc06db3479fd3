package rules

import (
	"fmt"
	"strings"

	"feedcore/internal/domain/entity"
)

// Matches evaluates a single rule against item, ignoring rule.Additive
// (caller combines results per RuleSet.Mode and additive/negative sense in
// Evaluate). Value comparisons are case-insensitive substring matches,
// matching the original's plain strstr-based rule checks.
func Matches(item *entity.Item, rule entity.Rule) (bool, error) {
	info, ok := Lookup(rule.InfoID)
	if !ok {
		return false, fmt.Errorf("rule %q: %w", rule.InfoID, entity.ErrUnknownRuleInfo)
	}
	if info.NeedsValue && rule.Value == "" {
		return false, nil
	}

	switch rule.InfoID {
	case RuleUnread:
		return !item.Read, nil
	case RuleFlagged:
		return item.Flagged, nil
	case RuleTitle:
		return containsFold(item.Title, rule.Value), nil
	case RuleBody:
		return containsFold(item.Description, rule.Value), nil
	case RuleAuthor:
		return containsFold(item.Author, rule.Value), nil
	case RuleSourceURL:
		return containsFold(item.SourceURL, rule.Value), nil
	case RuleCategory:
		for _, v := range item.MetadataValues("category") {
			if containsFold(v, rule.Value) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("rule %q: %w", rule.InfoID, entity.ErrUnknownRuleInfo)
	}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// Evaluate reports whether item belongs in a search folder carrying
// ruleSet (spec §4.F). Additive rules combine per ruleSet.Mode (ANY: at
// least one matches; ALL: every one matches); a match against any
// non-additive ("exclusion") rule always removes the item, mirroring the
// original's "check additive rules, then exclude on any exclusion match"
// two-step (original_source/src/rule.h: rule_check_item). UnreadOnly, when
// set, is an additional filter applied after rule evaluation.
func Evaluate(ruleSet *entity.RuleSet, item *entity.Item) (bool, error) {
	if ruleSet == nil || len(ruleSet.Rules) == 0 {
		return false, entity.ErrEmptyRuleSet
	}

	var additive, exclusions []entity.Rule
	for _, r := range ruleSet.Rules {
		if r.Additive {
			additive = append(additive, r)
		} else {
			exclusions = append(exclusions, r)
		}
	}

	included := true
	if len(additive) > 0 {
		switch ruleSet.Mode {
		case entity.MatchAll:
			included = true
			for _, r := range additive {
				ok, err := Matches(item, r)
				if err != nil {
					return false, err
				}
				if !ok {
					included = false
					break
				}
			}
		default: // MatchAny
			included = false
			for _, r := range additive {
				ok, err := Matches(item, r)
				if err != nil {
					return false, err
				}
				if ok {
					included = true
					break
				}
			}
		}
	}
	if !included {
		return false, nil
	}

	for _, r := range exclusions {
		ok, err := Matches(item, r)
		if err != nil {
			return false, err
		}
		if ok {
			return false, nil
		}
	}

	if ruleSet.UnreadOnly && item.Read {
		return false, nil
	}

	return true, nil
}
