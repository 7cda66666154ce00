// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"regexp"
)

// ValidateCondition validates a Condition according to domain rules.
//
// Validation rules:
//   - Value must not be empty (attribute conditions validate their own values)
//   - Kind and MatchMode must be known values
//   - Regex patterns must compile; invalid patterns are rejected here,
//     never deferred to query execution
//   - Weight must be in (0, 1]; zero means "unset" and is normalized to 1.0
//
// NOT validated (populated during expansion):
//   - MatchedTerm and ExpansionUsed provenance
func ValidateCondition(cond *Condition) error {
	if cond == nil {
		return fmt.Errorf("%w: condition is nil", ErrInvalidCondition)
	}

	switch cond.Kind {
	case KindText, KindNodeRef, KindEntryRef, KindRegex:
		if cond.Value == "" {
			return fmt.Errorf("%w: %w", ErrInvalidCondition, ErrEmptyValue)
		}
	case KindAttribute:
		if cond.Attribute == nil {
			return fmt.Errorf("%w: attribute condition missing payload", ErrInvalidCondition)
		}
		if err := ValidateAttributeCondition(cond.Attribute); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidCondition, err)
		}
	default:
		return fmt.Errorf("%w: %w: value %d", ErrInvalidCondition, ErrInvalidKind, cond.Kind)
	}

	switch cond.Match {
	case MatchContains, MatchExact, MatchRegex:
	default:
		return fmt.Errorf("%w: %w: value %d", ErrInvalidCondition, ErrInvalidMatchMode, cond.Match)
	}

	if cond.Kind == KindRegex || cond.Match == MatchRegex {
		if _, err := regexp.Compile(cond.Value); err != nil {
			return fmt.Errorf("%w: %w: %v", ErrInvalidCondition, ErrInvalidPattern, err)
		}
	}

	if cond.Weight == 0 {
		cond.Weight = 1.0
	}
	if cond.Weight < 0 || cond.Weight > 1 {
		return fmt.Errorf("%w: %w: got %g", ErrInvalidCondition, ErrInvalidWeight, cond.Weight)
	}

	return nil
}

// ValidateAttributeCondition validates an AttributeCondition.
//
// Validation rules:
//   - Key must not be empty
//   - At least one value must be present
//   - Every operator must be a known value
//   - Regex-typed values must compile
func ValidateAttributeCondition(attr *AttributeCondition) error {
	if attr == nil {
		return fmt.Errorf("%w: attribute condition is nil", ErrInvalidAttributeCondition)
	}

	if attr.Key == "" {
		return fmt.Errorf("%w: %w", ErrInvalidAttributeCondition, ErrEmptyAttributeKey)
	}

	if len(attr.Values) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidAttributeCondition, ErrNoAttributeValues)
	}

	for _, v := range attr.Values {
		switch v.Operator {
		case OpAnd, OpOr, OpNot:
		default:
			return fmt.Errorf("%w: %w: value %d", ErrInvalidAttributeCondition, ErrInvalidOperator, v.Operator)
		}
		if attr.ValueType == AttrValueRegex {
			if _, err := regexp.Compile(v.Value); err != nil {
				return fmt.Errorf("%w: %w: %v", ErrInvalidAttributeCondition, ErrInvalidPattern, err)
			}
		}
	}

	return nil
}

// ValidateGroup validates a boolean condition tree iteratively.
// Nesting depth is unbounded; the walk uses an explicit stack so deeply
// nested trees cannot overflow the goroutine stack.
func ValidateGroup(group *ConditionGroup) error {
	if group == nil {
		return fmt.Errorf("%w: group is nil", ErrInvalidCondition)
	}

	stack := []*ConditionGroup{group}
	for len(stack) > 0 {
		g := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if g.Combinator != CombineAnd && g.Combinator != CombineOr {
			return fmt.Errorf("%w: value %d", ErrInvalidCombinator, g.Combinator)
		}
		if len(g.Children) == 0 {
			return ErrEmptyGroup
		}

		for _, child := range g.Children {
			switch node := child.(type) {
			case *Condition:
				if err := ValidateCondition(node); err != nil {
					return err
				}
			case *ConditionGroup:
				stack = append(stack, node)
			}
		}
	}

	return nil
}
