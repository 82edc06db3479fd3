package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedcore/internal/domain/entity"
)

func TestEvaluate_AnyMode_MatchesOnSingleAdditiveHit(t *testing.T) {
	item := &entity.Item{Title: "golang release notes", Read: false}
	rs := &entity.RuleSet{
		Mode: entity.MatchAny,
		Rules: []entity.Rule{
			{InfoID: RuleTitle, Value: "golang", Additive: true},
			{InfoID: RuleTitle, Value: "python", Additive: true},
		},
	}
	ok, err := Evaluate(rs, item)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluate_AllMode_RequiresEveryAdditiveRule(t *testing.T) {
	item := &entity.Item{Title: "golang release notes", Author: "someone else"}
	rs := &entity.RuleSet{
		Mode: entity.MatchAll,
		Rules: []entity.Rule{
			{InfoID: RuleTitle, Value: "golang", Additive: true},
			{InfoID: RuleAuthor, Value: "core team", Additive: true},
		},
	}
	ok, err := Evaluate(rs, item)
	require.NoError(t, err)
	assert.False(t, ok, "ALL mode requires every additive rule to match")
}

func TestEvaluate_ExclusionAlwaysRemoves(t *testing.T) {
	item := &entity.Item{Title: "golang release notes", Description: "draft, do not publish"}
	rs := &entity.RuleSet{
		Mode: entity.MatchAny,
		Rules: []entity.Rule{
			{InfoID: RuleTitle, Value: "golang", Additive: true},
			{InfoID: RuleBody, Value: "draft", Additive: false},
		},
	}
	ok, err := Evaluate(rs, item)
	require.NoError(t, err)
	assert.False(t, ok, "an exclusion match always removes the item regardless of additive match")
}

func TestEvaluate_UnreadOnlyFiltersReadItems(t *testing.T) {
	item := &entity.Item{Title: "golang", Read: true}
	rs := &entity.RuleSet{
		Mode:       entity.MatchAny,
		UnreadOnly: true,
		Rules: []entity.Rule{
			{InfoID: RuleTitle, Value: "golang", Additive: true},
		},
	}
	ok, err := Evaluate(rs, item)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvaluate_UnknownRuleID(t *testing.T) {
	item := &entity.Item{Title: "x"}
	rs := &entity.RuleSet{
		Mode:  entity.MatchAny,
		Rules: []entity.Rule{{InfoID: "not-a-real-rule", Value: "x", Additive: true}},
	}
	_, err := Evaluate(rs, item)
	assert.ErrorIs(t, err, entity.ErrUnknownRuleInfo)
}

func TestEvaluate_EmptyRuleSetIsAnError(t *testing.T) {
	_, err := Evaluate(&entity.RuleSet{}, &entity.Item{})
	assert.ErrorIs(t, err, entity.ErrEmptyRuleSet)
}

func TestMatches_UnreadRule(t *testing.T) {
	ok, err := Matches(&entity.Item{Read: false}, entity.Rule{InfoID: RuleUnread})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Matches(&entity.Item{Read: true}, entity.Rule{InfoID: RuleUnread})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatches_CategoryRule(t *testing.T) {
	item := &entity.Item{Metadata: []entity.MetadataEntry{{Key: "category", Values: []string{"News", "Tech"}}}}
	ok, err := Matches(item, entity.Rule{InfoID: RuleCategory, Value: "tech"})
	require.NoError(t, err)
	assert.True(t, ok, "category match is case-insensitive")
}
