package query

import (
	"regexp"
	"strings"

	"github.com/poiesic/gnosis/core"
	"github.com/poiesic/gnosis/parser"
)

// FoldOrConditions rewrites a set of OR-combined conditions into a single
// regex-alternation condition when every member is a plain text or reference
// match. The folded pattern is the exact union of what each original
// condition would have matched: text terms are escaped, exact-match terms
// are anchored, and reference terms keep their reference-syntax wrapping.
//
// Returns the merged condition and true when the rewrite applies; otherwise
// returns nil and false, leaving the originals untouched.
func FoldOrConditions(conds []*core.Condition) (*core.Condition, bool) {
	if len(conds) < 2 {
		return nil, false
	}

	alternatives := make([]string, 0, len(conds))
	weight := 0.0
	for _, cond := range conds {
		if cond.Negate || cond.Kind == core.KindRegex || cond.Kind == core.KindAttribute ||
			cond.Match == core.MatchRegex {
			return nil, false
		}
		switch cond.Kind {
		case core.KindText:
			term := regexp.QuoteMeta(cond.Value)
			if cond.Match == core.MatchExact {
				term = "^" + term + "$"
			}
			alternatives = append(alternatives, term)
		case core.KindNodeRef:
			alternatives = append(alternatives, parser.ReferencePattern(cond.Value))
		case core.KindEntryRef:
			alternatives = append(alternatives, parser.EntryReferencePattern(cond.Value))
		default:
			return nil, false
		}
		if cond.Weight > weight {
			weight = cond.Weight
		}
	}

	merged := &core.Condition{
		Kind:   core.KindRegex,
		Value:  "(?i)(?:" + strings.Join(alternatives, "|") + ")",
		Match:  core.MatchRegex,
		Weight: weight,
	}
	return merged, true
}

// Normalize flattens a nested AND/OR condition tree into a flat condition
// list plus one combinator, applying algebraic simplification as it goes:
// single-child groups collapse, same-combinator nesting splices inline, and
// OR groups nested under AND fold into one regex-alternation condition.
//
// The walk is iterative (fixed-point over a shrinking tree), so arbitrarily
// deep nesting cannot overflow the stack. Shapes that survive
// simplification but still mix combinators return a *CompileError naming
// the problem; no condition is ever silently dropped.
func Normalize(group *core.ConditionGroup) ([]*core.Condition, core.Combinator, error) {
	if group == nil || len(group.Children) == 0 {
		return nil, 0, ErrNoConditions
	}

	root := cloneGroup(group)

	for changed := true; changed; {
		changed = simplifyOnce(root)
	}

	conds := make([]*core.Condition, 0, len(root.Children))
	for _, child := range root.Children {
		switch node := child.(type) {
		case *core.Condition:
			conds = append(conds, node)
		case *core.ConditionGroup:
			// A group that simplification could not dissolve.
			if root.Combinator == core.CombineAnd && node.Combinator == core.CombineOr {
				return nil, 0, newCompileError(firstLeaf(node),
					"nested OR group mixes condition kinds that cannot be folded into one regex")
			}
			return nil, 0, newCompileError(firstLeaf(node),
				"nested %s group under %s cannot be flattened", node.Combinator, root.Combinator)
		}
	}

	if len(conds) == 0 {
		return nil, 0, ErrNoConditions
	}
	return conds, root.Combinator, nil
}

// simplifyOnce applies one round of bottom-level rewrites over the whole
// tree. Returns true when anything changed.
func simplifyOnce(root *core.ConditionGroup) bool {
	changed := false

	stack := []*core.ConditionGroup{root}
	for len(stack) > 0 {
		g := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		rewritten := make([]core.GroupNode, 0, len(g.Children))
		for _, child := range g.Children {
			sub, ok := child.(*core.ConditionGroup)
			if !ok {
				rewritten = append(rewritten, child)
				continue
			}

			switch {
			case len(sub.Children) == 1:
				// (X) collapses to X regardless of combinator.
				rewritten = append(rewritten, sub.Children[0])
				changed = true
			case sub.Combinator == g.Combinator:
				// Same combinator splices inline.
				rewritten = append(rewritten, sub.Children...)
				changed = true
			case g.Combinator == core.CombineAnd && sub.Combinator == core.CombineOr:
				// (A|B) AND C: fold the OR group into one regex condition
				// once all its children are plain leaves.
				if leaves, ok := leafConditions(sub); ok {
					if folded, ok := FoldOrConditions(leaves); ok {
						rewritten = append(rewritten, folded)
						changed = true
						break
					}
				}
				rewritten = append(rewritten, sub)
				stack = append(stack, sub)
			default:
				rewritten = append(rewritten, sub)
				stack = append(stack, sub)
			}
		}
		g.Children = rewritten
	}

	return changed
}

// leafConditions returns the group's children when they are all leaves.
func leafConditions(group *core.ConditionGroup) ([]*core.Condition, bool) {
	leaves := make([]*core.Condition, 0, len(group.Children))
	for _, child := range group.Children {
		cond, ok := child.(*core.Condition)
		if !ok {
			return nil, false
		}
		leaves = append(leaves, cond)
	}
	return leaves, true
}

// firstLeaf finds a representative condition inside a group for error
// reporting. Iterative for the same stack-safety reason as Normalize.
func firstLeaf(group *core.ConditionGroup) *core.Condition {
	stack := []*core.ConditionGroup{group}
	for len(stack) > 0 {
		g := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range g.Children {
			switch node := child.(type) {
			case *core.Condition:
				return node
			case *core.ConditionGroup:
				stack = append(stack, node)
			}
		}
	}
	return nil
}

// cloneGroup deep-copies the group structure (conditions are shared; the
// tree shape is rewritten in place during simplification).
func cloneGroup(group *core.ConditionGroup) *core.ConditionGroup {
	type frame struct {
		src *core.ConditionGroup
		dst *core.ConditionGroup
	}

	root := &core.ConditionGroup{Combinator: group.Combinator}
	stack := []frame{{src: group, dst: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		f.dst.Children = make([]core.GroupNode, 0, len(f.src.Children))
		for _, child := range f.src.Children {
			switch node := child.(type) {
			case *core.Condition:
				f.dst.Children = append(f.dst.Children, node)
			case *core.ConditionGroup:
				sub := &core.ConditionGroup{Combinator: node.Combinator}
				f.dst.Children = append(f.dst.Children, sub)
				stack = append(stack, frame{src: node, dst: sub})
			}
		}
	}
	return root
}
