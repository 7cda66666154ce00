package search

import (
	"github.com/poiesic/gnosis/core"
	"github.com/poiesic/gnosis/graph"
	"github.com/poiesic/gnosis/query"
	"github.com/poiesic/gnosis/results"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(req *Request)
	AfterCompile(plan *query.Plan)
	AfterExecute(rows []graph.Row)
	AfterExpansion(conds []*core.Condition, warnings []string)
	AfterProcessing(processed *results.Processed)
	Finish(resp *Response)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ *Request)                             {}
func (n *noopMonitor) AfterCompile(_ *query.Plan)                   {}
func (n *noopMonitor) AfterExecute(_ []graph.Row)                   {}
func (n *noopMonitor) AfterExpansion(_ []*core.Condition, _ []string) {}
func (n *noopMonitor) AfterProcessing(_ *results.Processed)         {}
func (n *noopMonitor) Finish(_ *Response)                           {}
