package query

import "github.com/poiesic/gnosis/core"

// CombineMode tells the executor driver how sub-query results combine.
type CombineMode int

const (
	// CombineNone means the plan holds a single executable query.
	CombineNone CombineMode = iota
	// CombineIntersect means the sub-queries' node sets are intersected.
	// Used for content-scope AND groups, which cannot be expressed as
	// per-entry boolean logic.
	CombineIntersect
)

// Plan is the compiler's output: executable query text plus metadata about
// the optimizations that were applied. A Plan is immutable once built.
type Plan struct {
	text          string
	subQueries    []string
	combine       CombineMode
	scope         core.SearchScope
	optimizations []string
}

// Text returns the main query text. Empty when the plan is a sub-query set.
func (p *Plan) Text() string { return p.text }

// SubQueries returns the per-condition queries of an intersection plan.
// The returned slice is a copy; the plan itself never changes.
func (p *Plan) SubQueries() []string {
	out := make([]string, len(p.subQueries))
	copy(out, p.subQueries)
	return out
}

// Combine reports how sub-query results must be combined.
func (p *Plan) Combine() CombineMode { return p.combine }

// Scope returns the search scope the plan was compiled for.
func (p *Plan) Scope() core.SearchScope { return p.scope }

// Optimizations describes the rewrites applied during compilation,
// e.g. "3 OR-terms folded into one regex alternation".
func (p *Plan) Optimizations() []string {
	out := make([]string, len(p.optimizations))
	copy(out, p.optimizations)
	return out
}
