package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for graph entities (nodes and entries).
// It is generated using content-based hashing or assigned by the graph store.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ConditionKind identifies what an atomic search condition matches against.
type ConditionKind int

const (
	// KindText matches plain text inside an entry.
	KindText ConditionKind = iota + 1
	// KindNodeRef matches references to a titled node.
	KindNodeRef
	// KindEntryRef matches references to a specific entry.
	KindEntryRef
	// KindRegex matches a caller-supplied regular expression.
	KindRegex
	// KindAttribute matches "key:: value" style attribute entries.
	KindAttribute
)

// String returns the wire name of the condition kind.
func (k ConditionKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNodeRef:
		return "node_ref"
	case KindEntryRef:
		return "entry_ref"
	case KindRegex:
		return "regex"
	case KindAttribute:
		return "attribute"
	default:
		return "unknown"
	}
}

// MatchMode controls how a condition value is compared against entry text.
type MatchMode int

const (
	// MatchContains matches the value anywhere in the text.
	MatchContains MatchMode = iota + 1
	// MatchExact matches the value as the whole text.
	MatchExact
	// MatchRegex interprets the value as a regular expression.
	MatchRegex
)

// ExpansionStrategy selects how a sparse condition is semantically broadened.
type ExpansionStrategy string

const (
	// ExpandNone disables expansion for the condition.
	ExpandNone ExpansionStrategy = ""
	// ExpandFuzzy generates typo and morphological variants.
	ExpandFuzzy ExpansionStrategy = "fuzzy"
	// ExpandSynonyms generates synonym terms.
	ExpandSynonyms ExpansionStrategy = "synonyms"
	// ExpandRelated generates related-concept terms.
	ExpandRelated ExpansionStrategy = "related_concepts"
	// ExpandBroader generates broader-category terms.
	ExpandBroader ExpansionStrategy = "broader_terms"
	// ExpandAll chains the three semantic strategies.
	ExpandAll ExpansionStrategy = "all"
	// ExpandCustom applies a caller-supplied instruction.
	ExpandCustom ExpansionStrategy = "custom"
)

// SemanticStrategies returns the strategies chained by ExpandAll.
func SemanticStrategies() []ExpansionStrategy {
	return []ExpansionStrategy{ExpandSynonyms, ExpandRelated, ExpandBroader}
}

// Condition is one atomic search predicate.
// Conditions produced by semantic expansion carry provenance: MatchedTerm
// records the generated term, ExpansionUsed the strategies that produced it,
// and Weight is decayed so ranking prefers exact matches.
type Condition struct {
	Kind           ConditionKind
	Value          string
	Match          MatchMode
	Negate         bool
	Expansion      ExpansionStrategy
	CustomStrategy string // instruction text when Expansion is ExpandCustom
	Weight         float64
	MatchedTerm    string
	ExpansionUsed  []string
	Attribute      *AttributeCondition // set when Kind is KindAttribute
}

// NewCondition creates a condition with the default weight and contains matching.
func NewCondition(kind ConditionKind, value string) *Condition {
	return &Condition{
		Kind:   kind,
		Value:  value,
		Match:  MatchContains,
		Weight: 1.0,
	}
}

func (c *Condition) groupNode() {}

// Combinator joins sibling conditions in a group.
type Combinator int

const (
	// CombineAnd requires every child to match.
	CombineAnd Combinator = iota + 1
	// CombineOr requires at least one child to match.
	CombineOr
)

// String returns the wire name of the combinator.
func (c Combinator) String() string {
	switch c {
	case CombineAnd:
		return "AND"
	case CombineOr:
		return "OR"
	default:
		return "unknown"
	}
}

// GroupNode is a node of a boolean condition tree: either a *Condition leaf
// or a *ConditionGroup. The union is closed; consumers switch exhaustively
// over the two concrete types.
type GroupNode interface {
	groupNode()
}

// ConditionGroup combines conditions and nested groups under one combinator.
type ConditionGroup struct {
	Combinator Combinator
	Children   []GroupNode
}

func (g *ConditionGroup) groupNode() {}

var (
	_ GroupNode = (*Condition)(nil)
	_ GroupNode = (*ConditionGroup)(nil)
)

// ValueOperator tags an attribute value with its boolean role.
type ValueOperator int

const (
	// OpAnd means the value must be present.
	OpAnd ValueOperator = iota + 1
	// OpOr means at least one OR-tagged value must be present.
	OpOr
	// OpNot means the value must be absent.
	OpNot
)

// String returns the wire name of the operator.
func (o ValueOperator) String() string {
	switch o {
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	case OpNot:
		return "NOT"
	default:
		return "unknown"
	}
}

// AttributeValueType identifies how attribute values are matched.
type AttributeValueType int

const (
	// AttrValueText matches the value as plain text.
	AttrValueText AttributeValueType = iota + 1
	// AttrValueNodeRef matches the value as a node reference.
	AttrValueNodeRef
	// AttrValueRegex interprets the value as a regular expression.
	AttrValueRegex
)

// AttributeValue is one value of an attribute condition with its operator.
type AttributeValue struct {
	Value    string
	Operator ValueOperator
}

// AttributeCondition targets "key:: value" style attribute entries.
// Evaluation order: all AND values must match, at least one OR value must
// match, and all NOT values must be absent. A single condition may mix all
// three operator classes.
type AttributeCondition struct {
	Key       string
	ValueType AttributeValueType
	Values    []AttributeValue
}

// Partition splits the values into their AND, OR and NOT classes,
// preserving the order in which they appear.
func (a *AttributeCondition) Partition() (and, or, not []string) {
	for _, v := range a.Values {
		switch v.Operator {
		case OpAnd:
			and = append(and, v.Value)
		case OpOr:
			or = append(or, v.Value)
		case OpNot:
			not = append(not, v.Value)
		}
	}
	return and, or, not
}

// SearchScope controls whether combined conditions must co-occur in one
// entry or may each be satisfied anywhere within the same node.
type SearchScope int

const (
	// ScopeBlock requires all conditions to match within a single entry.
	ScopeBlock SearchScope = iota + 1
	// ScopeContent allows conditions to match different entries of one node.
	ScopeContent
)

// String returns the wire name of the scope.
func (s SearchScope) String() string {
	switch s {
	case ScopeBlock:
		return "block"
	case ScopeContent:
		return "content"
	default:
		return "unknown"
	}
}

// ParseScope converts a wire name into a SearchScope.
func ParseScope(text string) (SearchScope, error) {
	switch text {
	case "block":
		return ScopeBlock, nil
	case "content":
		return ScopeContent, nil
	default:
		return 0, ErrInvalidScope
	}
}

// ResultItem is one search hit: an entry or a node, optionally enriched
// with bounded-depth hierarchy context. Content is empty when the active
// access mode withholds it.
type ResultItem struct {
	Id            ID
	ParentNodeId  ID
	NodeTitle     string
	Created       time.Time
	Modified      time.Time
	IsEntry       bool // true for entry hits, false for node hits
	Content       string
	Score         float64
	MatchedTerm   string
	ExpansionUsed []string
	Children      []*ResultItem
	Parents       []*ResultItem
}
