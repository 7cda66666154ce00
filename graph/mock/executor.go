package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/poiesic/gnosis/core"
	"github.com/poiesic/gnosis/graph"
)

// MockStore is a test double for graph.Store.
// Behavior can be injected via function fields; by default queries are
// routed by substring against registered fixtures.
type MockStore struct {
	// ExecuteFunc is called by Execute if set.
	ExecuteFunc func(ctx context.Context, query string) ([]graph.Row, error)

	// ChildrenFunc is called by Children if set.
	ChildrenFunc func(ctx context.Context, id core.ID, depth int) ([]graph.Row, error)

	// ParentsFunc is called by Parents if set.
	ParentsFunc func(ctx context.Context, id core.ID, depth int) ([]graph.Row, error)

	mu        sync.Mutex
	fixtures  []fixture
	children  map[core.ID][]graph.Row
	parents   map[core.ID][]graph.Row
	queries   []string
	execCount int
}

type fixture struct {
	substring string
	rows      []graph.Row
}

var _ graph.Store = (*MockStore)(nil)

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{
		children: make(map[core.ID][]graph.Row),
		parents:  make(map[core.ID][]graph.Row),
	}
}

// AddFixture registers rows returned for any query containing substring.
// Fixtures are checked in registration order; all matching fixtures
// contribute rows.
func (m *MockStore) AddFixture(substring string, rows ...graph.Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fixtures = append(m.fixtures, fixture{substring: substring, rows: rows})
}

// SetChildren registers child context rows for an id.
func (m *MockStore) SetChildren(id core.ID, rows ...graph.Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.children[id] = rows
}

// SetParents registers parent context rows for an id.
func (m *MockStore) SetParents(id core.ID, rows ...graph.Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parents[id] = rows
}

// Execute routes the query through ExecuteFunc or the registered fixtures.
func (m *MockStore) Execute(ctx context.Context, query string) ([]graph.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.execCount++
	m.queries = append(m.queries, query)
	fixtures := m.fixtures
	m.mu.Unlock()

	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, query)
	}

	var rows []graph.Row
	for _, f := range fixtures {
		if strings.Contains(query, f.substring) {
			rows = append(rows, f.rows...)
		}
	}
	return rows, nil
}

// Children returns registered child rows, depth bounded by registration.
func (m *MockStore) Children(ctx context.Context, id core.ID, depth int) ([]graph.Row, error) {
	if m.ChildrenFunc != nil {
		return m.ChildrenFunc(ctx, id, depth)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.children[id], nil
}

// Parents returns registered parent rows.
func (m *MockStore) Parents(ctx context.Context, id core.ID, depth int) ([]graph.Row, error) {
	if m.ParentsFunc != nil {
		return m.ParentsFunc(ctx, id, depth)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.parents[id], nil
}

// ExecuteCount returns the number of Execute calls.
func (m *MockStore) ExecuteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.execCount
}

// Queries returns the executed query texts in order.
func (m *MockStore) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.queries))
	copy(out, m.queries)
	return out
}
