package graph

import (
	"context"
	"time"

	"github.com/poiesic/gnosis/core"
)

// Row is one result row returned by the graph executor. EntryID is zero for
// node-level rows.
type Row struct {
	EntryID  core.ID
	NodeID   core.ID
	Title    string
	Text     string
	Created  time.Time
	Modified time.Time
}

// Executor runs declarative queries against the external graph store.
// The query dialect is owned by the store; this subsystem only emits it.
// Implementations must be safe for concurrent use: the search engine
// dispatches independent sub-queries in parallel.
type Executor interface {
	// Execute runs a query and returns the matching rows.
	// It must observe ctx cancellation and return promptly.
	Execute(ctx context.Context, query string) ([]Row, error)
}

// Hierarchy provides bounded-depth structural lookups used to enrich
// results with parent and child context.
type Hierarchy interface {
	// Children returns the entries below the given entry or node, up to
	// depth levels deep.
	Children(ctx context.Context, id core.ID, depth int) ([]Row, error)

	// Parents returns the ancestor chain of the given entry, up to depth
	// levels up.
	Parents(ctx context.Context, id core.ID, depth int) ([]Row, error)
}

// Store aggregates the graph capabilities the search pipeline consumes.
type Store interface {
	Executor
	Hierarchy
}
