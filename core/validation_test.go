package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCondition(t *testing.T) {
	t.Run("valid text condition", func(t *testing.T) {
		cond := NewCondition(KindText, "budget")
		assert.NoError(t, ValidateCondition(cond))
	})

	t.Run("nil condition", func(t *testing.T) {
		err := ValidateCondition(nil)
		assert.ErrorIs(t, err, ErrInvalidCondition)
	})

	t.Run("empty value", func(t *testing.T) {
		cond := NewCondition(KindText, "")
		err := ValidateCondition(cond)
		assert.ErrorIs(t, err, ErrEmptyValue)
	})

	t.Run("unknown kind", func(t *testing.T) {
		cond := &Condition{Kind: ConditionKind(42), Value: "x", Match: MatchContains}
		err := ValidateCondition(cond)
		assert.ErrorIs(t, err, ErrInvalidKind)
	})

	t.Run("unknown match mode", func(t *testing.T) {
		cond := &Condition{Kind: KindText, Value: "x", Match: MatchMode(42)}
		err := ValidateCondition(cond)
		assert.ErrorIs(t, err, ErrInvalidMatchMode)
	})

	t.Run("invalid regex rejected at validation time", func(t *testing.T) {
		cond := NewCondition(KindRegex, "[unclosed")
		cond.Match = MatchRegex
		err := ValidateCondition(cond)
		assert.ErrorIs(t, err, ErrInvalidPattern)
	})

	t.Run("valid regex accepted", func(t *testing.T) {
		cond := NewCondition(KindRegex, `budget|forecast`)
		cond.Match = MatchRegex
		assert.NoError(t, ValidateCondition(cond))
	})

	t.Run("zero weight normalized to default", func(t *testing.T) {
		cond := &Condition{Kind: KindText, Value: "x", Match: MatchContains}
		require.NoError(t, ValidateCondition(cond))
		assert.Equal(t, 1.0, cond.Weight)
	})

	t.Run("weight out of range", func(t *testing.T) {
		cond := &Condition{Kind: KindText, Value: "x", Match: MatchContains, Weight: 1.5}
		err := ValidateCondition(cond)
		assert.ErrorIs(t, err, ErrInvalidWeight)
	})

	t.Run("attribute condition without payload", func(t *testing.T) {
		cond := &Condition{Kind: KindAttribute, Match: MatchContains}
		err := ValidateCondition(cond)
		assert.ErrorIs(t, err, ErrInvalidCondition)
	})
}

func TestValidateAttributeCondition(t *testing.T) {
	t.Run("valid mixed operators", func(t *testing.T) {
		attr := &AttributeCondition{
			Key:       "status",
			ValueType: AttrValueNodeRef,
			Values: []AttributeValue{
				{Value: "open", Operator: OpAnd},
				{Value: "urgent", Operator: OpOr},
				{Value: "done", Operator: OpNot},
			},
		}
		assert.NoError(t, ValidateAttributeCondition(attr))
	})

	t.Run("empty key", func(t *testing.T) {
		attr := &AttributeCondition{Values: []AttributeValue{{Value: "x", Operator: OpAnd}}}
		err := ValidateAttributeCondition(attr)
		assert.ErrorIs(t, err, ErrEmptyAttributeKey)
	})

	t.Run("no values", func(t *testing.T) {
		attr := &AttributeCondition{Key: "status"}
		err := ValidateAttributeCondition(attr)
		assert.ErrorIs(t, err, ErrNoAttributeValues)
	})

	t.Run("unknown operator", func(t *testing.T) {
		attr := &AttributeCondition{
			Key:    "status",
			Values: []AttributeValue{{Value: "x", Operator: ValueOperator(9)}},
		}
		err := ValidateAttributeCondition(attr)
		assert.ErrorIs(t, err, ErrInvalidOperator)
	})

	t.Run("invalid regex value", func(t *testing.T) {
		attr := &AttributeCondition{
			Key:       "status",
			ValueType: AttrValueRegex,
			Values:    []AttributeValue{{Value: "(bad", Operator: OpAnd}},
		}
		err := ValidateAttributeCondition(attr)
		assert.ErrorIs(t, err, ErrInvalidPattern)
	})
}

func TestValidateGroup(t *testing.T) {
	t.Run("valid nested tree", func(t *testing.T) {
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
		assert.NoError(t, ValidateGroup(group))
	})

	t.Run("deeply nested tree does not overflow", func(t *testing.T) {
		leaf := NewCondition(KindText, "deep")
		group := &ConditionGroup{Combinator: CombineAnd, Children: []GroupNode{leaf}}
		for i := 0; i < 100000; i++ {
			group = &ConditionGroup{Combinator: CombineOr, Children: []GroupNode{group}}
		}
		assert.NoError(t, ValidateGroup(group))
	})

	t.Run("empty group", func(t *testing.T) {
		group := &ConditionGroup{Combinator: CombineAnd}
		assert.ErrorIs(t, ValidateGroup(group), ErrEmptyGroup)
	})

	t.Run("bad combinator", func(t *testing.T) {
		group := &ConditionGroup{Combinator: Combinator(7), Children: []GroupNode{NewCondition(KindText, "x")}}
		assert.ErrorIs(t, ValidateGroup(group), ErrInvalidCombinator)
	})

	t.Run("invalid leaf surfaces", func(t *testing.T) {
		group := &ConditionGroup{
			Combinator: CombineAnd,
			Children:   []GroupNode{NewCondition(KindRegex, "(bad")},
		}
		assert.ErrorIs(t, ValidateGroup(group), ErrInvalidPattern)
	})
}
