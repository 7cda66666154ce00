package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		id1 := IDFromContent("Q3 Planning")
		id2 := IDFromContent("Q3 Planning")
		assert.Equal(t, id1, id2)
	})

	t.Run("different content different ID", func(t *testing.T) {
		id1 := IDFromContent("Q3 Planning")
		id2 := IDFromContent("Q4 Planning")
		assert.NotEqual(t, id1, id2)
	})

	t.Run("empty content has an ID", func(t *testing.T) {
		assert.NotPanics(t, func() { IDFromContent("") })
	})
}

func TestNewCondition(t *testing.T) {
	cond := NewCondition(KindText, "budget")
	assert.Equal(t, KindText, cond.Kind)
	assert.Equal(t, "budget", cond.Value)
	assert.Equal(t, MatchContains, cond.Match)
	assert.Equal(t, 1.0, cond.Weight)
	assert.False(t, cond.Negate)
	assert.Equal(t, ExpandNone, cond.Expansion)
}

func TestConditionKindString(t *testing.T) {
	tests := []struct {
		kind ConditionKind
		want string
	}{
		{KindText, "text"},
		{KindNodeRef, "node_ref"},
		{KindEntryRef, "entry_ref"},
		{KindRegex, "regex"},
		{KindAttribute, "attribute"},
		{ConditionKind(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}

func TestParseScope(t *testing.T) {
	t.Run("block", func(t *testing.T) {
		scope, err := ParseScope("block")
		assert.NoError(t, err)
		assert.Equal(t, ScopeBlock, scope)
	})

	t.Run("content", func(t *testing.T) {
		scope, err := ParseScope("content")
		assert.NoError(t, err)
		assert.Equal(t, ScopeContent, scope)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := ParseScope("page")
		assert.ErrorIs(t, err, ErrInvalidScope)
	})
}

func TestAttributeConditionPartition(t *testing.T) {
	attr := &AttributeCondition{
		Key:       "status",
		ValueType: AttrValueNodeRef,
		Values: []AttributeValue{
			{Value: "open", Operator: OpAnd},
			{Value: "urgent", Operator: OpOr},
			{Value: "done", Operator: OpNot},
			{Value: "blocked", Operator: OpOr},
		},
	}

	and, or, not := attr.Partition()
	assert.Equal(t, []string{"open"}, and)
	assert.Equal(t, []string{"urgent", "blocked"}, or)
	assert.Equal(t, []string{"done"}, not)
}

func TestGroupNodeUnion(t *testing.T) {
	// Both leaf and group satisfy the closed union.
	group := &ConditionGroup{
		Combinator: CombineAnd,
		Children: []GroupNode{
			NewCondition(KindText, "budget"),
			&ConditionGroup{
				Combinator: CombineOr,
				Children: []GroupNode{
					NewCondition(KindNodeRef, "Q3 Planning"),
					NewCondition(KindNodeRef, "Q4 Planning"),
				},
			},
		},
	}

	assert.Len(t, group.Children, 2)
	_, isLeaf := group.Children[0].(*Condition)
	assert.True(t, isLeaf)
	nested, isGroup := group.Children[1].(*ConditionGroup)
	assert.True(t, isGroup)
	assert.Equal(t, CombineOr, nested.Combinator)
}
