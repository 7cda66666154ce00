package search

import (
	"time"

	"github.com/poiesic/gnosis/core"
	"github.com/poiesic/gnosis/results"
)

// Request is one structured search tool call.
type Request struct {
	// Conditions is a flat condition list combined with Combinator.
	// Ignored when Group is set.
	Conditions []*core.Condition
	Combinator core.Combinator

	// Group is an arbitrarily nested AND/OR condition tree. Takes
	// precedence over Conditions.
	Group *core.ConditionGroup

	// Scope defaults to ScopeBlock.
	Scope core.SearchScope

	// Query is the caller's original natural-language question, consulted
	// only by soft heuristics (hierarchy enrichment). Optional.
	Query string

	// ToolName labels stored result ids. Defaults to "search".
	ToolName string

	// FromResultID narrows the search to the nodes of a previously stored
	// result set instead of the whole graph.
	FromResultID string

	// ExcludeID drops the entry the request originated from.
	ExcludeID core.ID

	// HierarchyDepth enables parent/child context enrichment when
	// positive.
	HierarchyDepth int

	// Date-range filters. Zero values disable the corresponding bound.
	CreatedAfter   time.Time
	CreatedBefore  time.Time
	ModifiedAfter  time.Time
	ModifiedBefore time.Time

	Sort       results.SortMode
	RandomSeed int64
	Seeded     bool

	// AccessMode defaults to metadata-only.
	AccessMode results.AccessMode

	// Limit is a user-stated explicit result count. Overrides the
	// access-mode cap.
	Limit int

	// AutoExpand broadens the search when the unexpanded result count
	// falls below MinResultsThreshold, even without a per-condition
	// strategy.
	AutoExpand          bool
	MinResultsThreshold int

	// ExpansionHints is conversation context passed to term generation.
	ExpansionHints []string
}

// Metadata describes how a response was produced and bounded.
type Metadata struct {
	// ResultID is the stable identifier for referencing this result set
	// in a later request.
	ResultID string

	// ResultMode is the access mode the results were rendered under.
	ResultMode string

	ReturnedCount int
	TotalFound    int
	WasLimited    bool

	// CanExpandResults reports that a broader result set could be
	// produced by requesting semantic expansion.
	CanExpandResults bool

	SortedBy string
	Sampled  bool

	// Warnings carries recovered failures: dropped conditions, expansion
	// failures, enrichment hiccups.
	Warnings []string
}

// Response is the outcome of one search tool call.
type Response struct {
	Results  []*core.ResultItem
	Metadata Metadata
}
