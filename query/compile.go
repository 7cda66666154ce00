package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/poiesic/gnosis/core"
	"github.com/poiesic/gnosis/parser"
)

// Options carries per-compilation settings.
type Options struct {
	// ExcludeID removes one entry from the result set, typically the entry
	// the request originated from.
	ExcludeID core.ID
	// ScopeNodeIDs restricts matching to the given nodes, used when a prior
	// result set narrows the search. Empty means the whole graph.
	ScopeNodeIDs []core.ID
}

// Compile turns a flat condition list into an executable Plan.
//
// For block scope every condition is anchored to the same entry variable.
// For content scope with OR the conditions get per-condition entry
// variables unified at the node level. Content scope with AND cannot be
// expressed as one query; the plan carries one sub-query per condition and
// CombineIntersect, and the driver intersects the node sets.
func Compile(conds []*core.Condition, comb core.Combinator, scope core.SearchScope, opts Options) (*Plan, error) {
	if len(conds) == 0 {
		return nil, ErrNoConditions
	}

	for _, cond := range conds {
		if err := core.ValidateCondition(cond); err != nil {
			return nil, newCompileError(cond, "%v", err)
		}
	}

	var optimizations []string

	if comb == core.CombineOr {
		if folded, ok := FoldOrConditions(conds); ok {
			optimizations = append(optimizations,
				fmt.Sprintf("%d OR-terms folded into one regex alternation", len(conds)))
			conds = []*core.Condition{folded}
			comb = core.CombineAnd
		}
	}

	switch scope {
	case core.ScopeBlock:
		q, err := compileBlock(conds, comb, opts)
		if err != nil {
			return nil, err
		}
		return &Plan{
			text:          q.Serialize(),
			scope:         scope,
			optimizations: optimizations,
		}, nil

	case core.ScopeContent:
		if comb == core.CombineOr {
			q, err := compileContentOr(conds, opts)
			if err != nil {
				return nil, err
			}
			return &Plan{
				text:          q.Serialize(),
				scope:         scope,
				optimizations: optimizations,
			}, nil
		}
		if len(conds) == 1 {
			q, err := compileBlock(conds, core.CombineAnd, opts)
			if err != nil {
				return nil, err
			}
			return &Plan{
				text:          q.Serialize(),
				scope:         scope,
				optimizations: optimizations,
			}, nil
		}
		subQueries := make([]string, 0, len(conds))
		for _, cond := range conds {
			q, err := compileBlock([]*core.Condition{cond}, core.CombineAnd, opts)
			if err != nil {
				return nil, err
			}
			subQueries = append(subQueries, q.Serialize())
		}
		optimizations = append(optimizations,
			fmt.Sprintf("content-scope AND split into %d sub-queries intersected by node", len(conds)))
		return &Plan{
			subQueries:    subQueries,
			combine:       CombineIntersect,
			scope:         scope,
			optimizations: optimizations,
		}, nil

	default:
		return nil, newCompileError(nil, "unknown scope %d", scope)
	}
}

// CompileGroup normalizes a nested AND/OR tree and compiles the result.
func CompileGroup(group *core.ConditionGroup, scope core.SearchScope, opts Options) (*Plan, error) {
	conds, comb, err := Normalize(group)
	if err != nil {
		return nil, err
	}
	return Compile(conds, comb, scope, opts)
}

// compileBlock builds a single query anchoring every condition to one entry
// variable. Also used for single-condition content queries, where the node
// variable in the find spec carries the scope.
func compileBlock(conds []*core.Condition, comb core.Combinator, opts Options) (*Query, error) {
	entry := Var("entry")
	node := Var("node")

	where := []Clause{
		Pattern{Entity: entry, Attribute: AttrEntryNode, Value: node},
	}
	where = append(where, scopeClauses(entry, node, opts)...)

	if comb == core.CombineOr {
		// Non-foldable OR (regex members): per-condition branches on the
		// shared entry variable.
		branches := make([]Clause, 0, len(conds))
		for i, cond := range conds {
			clauses, err := conditionClauses(cond, entry, i)
			if err != nil {
				return nil, err
			}
			branches = append(branches, And{Clauses: clauses})
		}
		where = append(where, OrJoin{Unify: []Var{entry}, Branches: branches})
	} else {
		for i, cond := range conds {
			clauses, err := conditionClauses(cond, entry, i)
			if err != nil {
				return nil, err
			}
			if cond.Negate {
				// The not wrapper encloses exactly this condition's
				// clauses; sibling clauses keep their own scope.
				where = append(where, NotJoin{Unify: []Var{entry}, Clauses: clauses})
			} else {
				where = append(where, clauses...)
			}
		}
	}

	return &Query{Find: []Var{entry, node}, Where: where}, nil
}

// compileContentOr builds one query whose conditions may be satisfied by
// different entries of the same node.
func compileContentOr(conds []*core.Condition, opts Options) (*Query, error) {
	node := Var("node")

	branches := make([]Clause, 0, len(conds))
	for i, cond := range conds {
		entry := Var("e" + strconv.Itoa(i))
		clauses, err := conditionClauses(cond, entry, i)
		if err != nil {
			return nil, err
		}
		anchored := append([]Clause{
			Pattern{Entity: entry, Attribute: AttrEntryNode, Value: node},
		}, clauses...)
		if cond.Negate {
			branches = append(branches, NotJoin{Unify: []Var{node}, Clauses: anchored})
		} else {
			branches = append(branches, And{Clauses: anchored})
		}
	}

	where := []Clause{
		Pattern{Entity: node, Attribute: AttrNodeTitle, Value: Var("title")},
	}
	where = append(where, scopeClauses("", node, opts)...)
	where = append(where, OrJoin{Unify: []Var{node}, Branches: branches})

	return &Query{Find: []Var{node}, Where: where}, nil
}

// scopeClauses emits exclusion and prior-result narrowing clauses.
func scopeClauses(entry, node Var, opts Options) []Clause {
	var out []Clause

	if opts.ExcludeID != 0 && entry != "" {
		id := Var("exclid")
		out = append(out,
			Pattern{Entity: entry, Attribute: AttrEntryID, Value: id},
			Pred{Fn: FnNotEqual, Args: []Term{id, Sym(strconv.FormatUint(uint64(opts.ExcludeID), 10))}},
		)
	}

	if len(opts.ScopeNodeIDs) > 0 {
		args := make([]Term, 0, len(opts.ScopeNodeIDs)+1)
		nid := Var("scopeid")
		args = append(args, nid)
		for _, id := range opts.ScopeNodeIDs {
			args = append(args, Sym(strconv.FormatUint(uint64(id), 10)))
		}
		out = append(out,
			Pattern{Entity: node, Attribute: AttrNodeID, Value: nid},
			Pred{Fn: "member?", Args: args},
		)
	}

	return out
}

// conditionClauses emits the clause set for one condition anchored at the
// given entry variable. idx keeps helper variables unique per condition.
func conditionClauses(cond *core.Condition, entry Var, idx int) ([]Clause, error) {
	text := Var("text" + strconv.Itoa(idx))

	switch cond.Kind {
	case core.KindText, core.KindRegex:
		clauses := []Clause{
			Pattern{Entity: entry, Attribute: AttrEntryText, Value: text},
		}
		// A regex condition always compiles as a pattern, whatever its
		// match mode says; contains and exact would match the pattern
		// source as literal text.
		match := cond.Match
		if cond.Kind == core.KindRegex {
			match = core.MatchRegex
		}
		switch match {
		case core.MatchContains:
			clauses = append(clauses, Pred{Fn: FnIncludes, Args: []Term{text, Str(cond.Value)}})
		case core.MatchExact:
			clauses = append(clauses, Pred{Fn: FnEquals, Args: []Term{text, Str(cond.Value)}})
		case core.MatchRegex:
			if _, err := regexp.Compile(cond.Value); err != nil {
				return nil, newCompileError(cond, "invalid pattern: %v", err)
			}
			clauses = append(clauses, Pred{Fn: FnReFind, Args: []Term{Regex(cond.Value), text}})
		}
		return clauses, nil

	case core.KindNodeRef:
		ref := Var("ref" + strconv.Itoa(idx))
		return []Clause{
			Pattern{Entity: entry, Attribute: AttrEntryRefs, Value: ref},
			Pattern{Entity: ref, Attribute: AttrNodeTitle, Value: Str(cond.Value)},
		}, nil

	case core.KindEntryRef:
		// Entry references are textual ((ref)) markers.
		return []Clause{
			Pattern{Entity: entry, Attribute: AttrEntryText, Value: text},
			Pred{Fn: FnReFind, Args: []Term{Regex(parser.EntryReferencePattern(cond.Value)), text}},
		}, nil

	case core.KindAttribute:
		return attributeClauses(cond, entry, idx)

	default:
		return nil, newCompileError(cond, "unsupported condition kind %d", cond.Kind)
	}
}

// attributeClauses compiles a "key:: value" condition: the entry must be an
// attribute declaration for the key, AND values must each be present, OR
// values fold into one alternation, NOT values must each be absent.
func attributeClauses(cond *core.Condition, entry Var, idx int) ([]Clause, error) {
	attr := cond.Attribute
	if attr == nil {
		return nil, newCompileError(cond, "attribute condition missing payload")
	}

	text := Var("text" + strconv.Itoa(idx))
	keyRef := Var("attr" + strconv.Itoa(idx))

	clauses := []Clause{
		Pattern{Entity: entry, Attribute: AttrEntryRefs, Value: keyRef},
		Pattern{Entity: keyRef, Attribute: AttrNodeTitle, Value: Str(attr.Key)},
		Pattern{Entity: entry, Attribute: AttrEntryText, Value: text},
		Pred{Fn: FnReFind, Args: []Term{Regex("^" + regexp.QuoteMeta(attr.Key) + "::"), text}},
	}

	and, or, not := attr.Partition()

	for _, v := range and {
		p, err := attributeValuePattern(cond, attr.ValueType, v)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, Pred{Fn: FnReFind, Args: []Term{Regex(p), text}})
	}

	if len(or) > 0 {
		p, err := attributeAlternation(cond, attr.ValueType, or)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, Pred{Fn: FnReFind, Args: []Term{Regex(p), text}})
	}

	for _, v := range not {
		p, err := attributeValuePattern(cond, attr.ValueType, v)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, NotJoin{
			Unify: []Var{entry},
			Clauses: []Clause{
				Pattern{Entity: entry, Attribute: AttrEntryText, Value: text},
				Pred{Fn: FnReFind, Args: []Term{Regex(p), text}},
			},
		})
	}

	return clauses, nil
}

// attributeValuePattern builds the presence pattern for one attribute value.
func attributeValuePattern(cond *core.Condition, vt core.AttributeValueType, value string) (string, error) {
	switch vt {
	case core.AttrValueText:
		return "(?i)" + regexp.QuoteMeta(value), nil
	case core.AttrValueNodeRef:
		return parser.ReferencePattern(value), nil
	case core.AttrValueRegex:
		if _, err := regexp.Compile(value); err != nil {
			return "", newCompileError(cond, "invalid attribute pattern %q: %v", value, err)
		}
		return value, nil
	default:
		return "", newCompileError(cond, "unknown attribute value type %d", vt)
	}
}

// attributeAlternation folds the OR value class into one pattern.
func attributeAlternation(cond *core.Condition, vt core.AttributeValueType, values []string) (string, error) {
	switch vt {
	case core.AttrValueText:
		return parser.TextAlternation(values), nil
	case core.AttrValueNodeRef:
		return parser.ReferenceAlternation(values), nil
	case core.AttrValueRegex:
		parts := make([]string, 0, len(values))
		for _, v := range values {
			if _, err := regexp.Compile(v); err != nil {
				return "", newCompileError(cond, "invalid attribute pattern %q: %v", v, err)
			}
			parts = append(parts, v)
		}
		return "(?:" + strings.Join(parts, "|") + ")", nil
	default:
		return "", newCompileError(cond, "unknown attribute value type %d", vt)
	}
}
