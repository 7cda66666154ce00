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

package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/gnosis/core"
	"github.com/poiesic/gnosis/expand"
	"github.com/poiesic/gnosis/graph"
	"github.com/poiesic/gnosis/query"
	"github.com/poiesic/gnosis/results"
	"github.com/poiesic/gnosis/store"
)

const (
	// DefaultToolName labels stored result sets when the request does not
	// name its tool.
	DefaultToolName = "search"

	defaultPoolSize    = 8
	defaultMaxAttempts = 2
	defaultRetryDelay  = 200 * time.Millisecond
)

// Engine drives one search tool call through compile, execute, expand,
// post-process and store.
type Engine struct {
	executor  graph.Executor
	expander  *expand.Expander
	processor *results.Processor
	store     *store.Store
	pool      *ants.Pool
	logger    *slog.Logger
	monitor   SearchMonitor

	maxAttempts int
	retryDelay  time.Duration
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger.With("component", "search")
		return nil
	}
}

// WithPoolSize replaces the sub-query worker pool with one of the given
// size.
func WithPoolSize(size int) Option {
	return func(e *Engine) error {
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if e.pool != nil {
			e.pool.Release()
		}
		e.pool = pool
		return nil
	}
}

// WithMonitor attaches an observer to the search pipeline.
func WithMonitor(monitor SearchMonitor) Option {
	return func(e *Engine) error {
		if monitor != nil {
			e.monitor = monitor
		}
		return nil
	}
}

// WithExpander enables semantic expansion.
func WithExpander(expander *expand.Expander) Option {
	return func(e *Engine) error {
		e.expander = expander
		return nil
	}
}

// WithRetry tunes the executor retry budget.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(e *Engine) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		e.maxAttempts = maxAttempts
		e.retryDelay = baseDelay
		return nil
	}
}

// NewEngine creates a new search engine.
func NewEngine(
	executor graph.Executor,
	processor *results.Processor,
	resultStore *store.Store,
	opts ...Option,
) (*Engine, error) {
	if executor == nil {
		return nil, ErrExecutorRequired
	}
	if processor == nil {
		return nil, ErrProcessorRequired
	}
	if resultStore == nil {
		return nil, ErrStoreRequired
	}

	pool, err := ants.NewPool(defaultPoolSize)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		executor:    executor,
		processor:   processor,
		store:       resultStore,
		pool:        pool,
		logger:      slog.Default().With("component", "search"),
		monitor:     &noopMonitor{},
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			e.pool.Release()
			return nil, err
		}
	}

	return e, nil
}

// Release releases the worker pool. The engine should not be used after
// calling Release.
func (e *Engine) Release() {
	if e.pool != nil {
		e.pool.Release()
	}
}

// Store returns the engine's result lifecycle store, for combine and
// view operations exposed as their own tools.
func (e *Engine) Store() *store.Store {
	return e.store
}

// Search runs one tool call. The store is only written on success: a
// cancelled or failed call leaves it untouched.
func (e *Engine) Search(ctx context.Context, req *Request) (*Response, error) {
	e.monitor.Start(req)

	var warnings []string
	conds, comb, err := e.resolveConditions(req, &warnings)
	if err != nil {
		return nil, err
	}

	scope := req.Scope
	if scope == 0 {
		scope = core.ScopeBlock
	}

	qopts := query.Options{ExcludeID: req.ExcludeID}
	if req.FromResultID != "" {
		nodeIDs, _, err := e.store.ScopeFrom(ctx, req.FromResultID)
		if err != nil {
			return nil, err
		}
		qopts.ScopeNodeIDs = nodeIDs
		e.logger.Debug("scoped to prior result set",
			"fromResultId", req.FromResultID, "nodes", len(nodeIDs))
	}

	plan, err := query.Compile(conds, comb, scope, qopts)
	if err != nil {
		return nil, err
	}
	e.monitor.AfterCompile(plan)

	rows, err := e.executePlan(ctx, plan)
	if err != nil {
		return nil, err
	}
	e.monitor.AfterExecute(rows)

	items := itemsFromRows(rows, termWeights(conds), nil)

	canExpand := e.expander != nil && hasExpandable(conds)
	expanded := false
	fuzzyTerm := ""
	if e.expander != nil {
		candidates := expansionCandidates(req, conds, len(items))
		if len(candidates) > 0 {
			expItems, expWarnings, err := e.runExpansion(ctx, req, candidates, comb, scope, qopts, items)
			if err != nil {
				return nil, err
			}
			items = append(items, expItems...)
			warnings = append(warnings, expWarnings...)
			expanded = true
			fuzzyTerm = fuzzyFilterTerm(candidates)
		}
	}

	accessMode := req.AccessMode
	if accessMode == 0 {
		accessMode = results.ModeMetadata
	}

	processed, err := e.processor.Process(ctx, items, results.Options{
		Query:          req.Query,
		HierarchyDepth: req.HierarchyDepth,
		CreatedAfter:   req.CreatedAfter,
		CreatedBefore:  req.CreatedBefore,
		ModifiedAfter:  req.ModifiedAfter,
		ModifiedBefore: req.ModifiedBefore,
		FuzzyTerm:      fuzzyTerm,
		Sort:           req.Sort,
		RandomSeed:     req.RandomSeed,
		Seeded:         req.Seeded,
		AccessMode:     accessMode,
		ExplicitCount:  req.Limit,
	})
	if err != nil {
		return nil, err
	}
	e.monitor.AfterProcessing(processed)
	warnings = append(warnings, processed.Warnings...)

	toolName := req.ToolName
	if toolName == "" {
		toolName = DefaultToolName
	}
	resultID, err := e.store.PutTruncated(ctx, toolName, processed.Items,
		store.PurposeFinal, processed.WasLimited)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Results: processed.Items,
		Metadata: Metadata{
			ResultID:         resultID,
			ResultMode:       accessMode.String(),
			ReturnedCount:    len(processed.Items),
			TotalFound:       processed.TotalFound,
			WasLimited:       processed.WasLimited,
			CanExpandResults: canExpand && !expanded,
			SortedBy:         processed.SortedBy.String(),
			Sampled:          processed.Sampled,
			Warnings:         warnings,
		},
	}
	e.monitor.Finish(resp)
	return resp, nil
}

// resolveConditions flattens the request into a validated condition list.
// Malformed conditions in a flat list are dropped with a warning; a
// malformed tree surfaces as a CompileError from normalization.
func (e *Engine) resolveConditions(req *Request, warnings *[]string) ([]*core.Condition, core.Combinator, error) {
	if req.Group != nil {
		conds, comb, err := query.Normalize(req.Group)
		if err != nil {
			return nil, 0, err
		}
		return conds, comb, nil
	}

	comb := req.Combinator
	if comb == 0 {
		comb = core.CombineAnd
	}

	kept := make([]*core.Condition, 0, len(req.Conditions))
	for _, cond := range req.Conditions {
		if err := core.ValidateCondition(cond); err != nil {
			e.logger.Warn("dropping malformed condition", "value", cond.Value, "err", err)
			*warnings = append(*warnings,
				fmt.Sprintf("dropped malformed condition %q: %v", cond.Value, err))
			continue
		}
		kept = append(kept, cond)
	}
	if len(kept) == 0 {
		return nil, 0, ErrNoConditions
	}
	return kept, comb, nil
}

// executePlan runs a plan, fanning multi-query plans out over the worker
// pool and intersecting their node sets.
func (e *Engine) executePlan(ctx context.Context, plan *query.Plan) ([]graph.Row, error) {
	subs := plan.SubQueries()
	if len(subs) == 0 {
		return e.executeQuery(ctx, plan.Text())
	}

	subRows := make([][]graph.Row, len(subs))
	subErrs := make([]error, len(subs))
	var wg sync.WaitGroup

	for i, sub := range subs {
		i, sub := i, sub
		wg.Add(1)
		task := func() {
			defer wg.Done()
			subRows[i], subErrs[i] = e.executeQuery(ctx, sub)
		}
		if err := e.pool.Submit(task); err != nil {
			// Pool saturated or released; run inline rather than dropping
			// the sub-query.
			task()
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// An empty sub-result is valid partial success; a failed sub-query
	// poisons the whole call.
	for _, err := range subErrs {
		if err != nil {
			return nil, err
		}
	}

	return intersectByNode(subRows), nil
}

func (e *Engine) executeQuery(ctx context.Context, text string) ([]graph.Row, error) {
	var rows []graph.Row
	err := RetryWithBackoff(ctx, func() error {
		var execErr error
		rows, execErr = e.executor.Execute(ctx, text)
		return execErr
	}, e.maxAttempts, e.retryDelay)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &ExecutionError{Query: text, Err: err}
	}
	return rows, nil
}

// intersectByNode keeps rows whose node appears in every sub-result and
// deduplicates by row identity, preserving first-seen order.
func intersectByNode(subRows [][]graph.Row) []graph.Row {
	counts := make(map[core.ID]int)
	for _, rows := range subRows {
		nodes := make(map[core.ID]bool)
		for _, row := range rows {
			if !nodes[row.NodeID] {
				nodes[row.NodeID] = true
				counts[row.NodeID]++
			}
		}
	}

	var out []graph.Row
	seen := make(map[core.ID]bool)
	for _, rows := range subRows {
		for _, row := range rows {
			if counts[row.NodeID] != len(subRows) {
				continue
			}
			id := row.EntryID
			if id == 0 {
				id = row.NodeID
			}
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, row)
		}
	}
	return out
}

// runExpansion generates expanded sibling conditions, merges them back
// into the original query shape and re-executes the full query, so every
// other condition still constrains the expanded matches. New rows become
// provenance-tagged items. Generation failures are warnings; a failing
// executor is still fatal.
func (e *Engine) runExpansion(
	ctx context.Context,
	req *Request,
	candidates []*core.Condition,
	comb core.Combinator,
	scope core.SearchScope,
	qopts query.Options,
	existing []*core.ResultItem,
) ([]*core.ResultItem, []string, error) {
	res, err := e.expander.Expand(ctx, candidates, req.ExpansionHints)
	if err != nil {
		return nil, nil, err
	}
	e.monitor.AfterExpansion(res.Conditions, res.Warnings)

	var siblings []*core.Condition
	for _, cond := range res.Conditions {
		if len(cond.ExpansionUsed) > 0 {
			siblings = append(siblings, cond)
		}
	}
	if len(siblings) == 0 {
		return nil, res.Warnings, nil
	}

	merged, warnings := mergeExpanded(res.Conditions, comb)
	warnings = append(res.Warnings, warnings...)

	plan, err := query.Compile(merged, comb, scope, qopts)
	if err != nil {
		e.logger.Warn("expanded query did not compile, keeping unexpanded results", "err", err)
		return nil, append(warnings,
			fmt.Sprintf("expanded terms not searchable: %v", err)), nil
	}

	rows, err := e.executePlan(ctx, plan)
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[core.ID]bool, len(existing))
	for _, item := range existing {
		seen[item.Id] = true
	}

	items := itemsFromRows(rows, termWeights(siblings), seen)
	for _, item := range items {
		item.MatchedTerm, item.ExpansionUsed = provenanceFor(item, siblings)
	}
	e.logger.Debug("merged expanded results",
		"calls", res.Calls, "newItems", len(items), "warnings", len(warnings))
	return items, warnings, nil
}

// mergeExpanded rejoins each original condition with its expanded
// siblings so the rest of the query keeps constraining the result. Under
// OR the siblings simply join the list; under AND each group folds into
// one alternation, since splicing there would demand every synonym at
// once. A group that cannot fold keeps its original with a warning.
func mergeExpanded(conds []*core.Condition, comb core.Combinator) ([]*core.Condition, []string) {
	merged := make([]*core.Condition, 0, len(conds))
	var warnings []string

	for i := 0; i < len(conds); i++ {
		group := []*core.Condition{conds[i]}
		for i+1 < len(conds) && len(conds[i+1].ExpansionUsed) > 0 {
			i++
			group = append(group, conds[i])
		}

		if len(group) == 1 || comb == core.CombineOr {
			merged = append(merged, group...)
			continue
		}

		if folded, ok := query.FoldOrConditions(group); ok {
			merged = append(merged, folded)
			continue
		}
		warnings = append(warnings, fmt.Sprintf(
			"expanded terms for %q cannot join the query, keeping the original", group[0].Value))
		merged = append(merged, group[0])
	}

	return merged, warnings
}

// expansionCandidates decides which conditions to expand this call. A
// per-condition strategy always fires; automatic mode fires for the
// remaining expandable conditions only when the unexpanded count is
// below the threshold. Returns nil when expansion should not run.
func expansionCandidates(req *Request, conds []*core.Condition, resultCount int) []*core.Condition {
	fire := false
	out := make([]*core.Condition, 0, len(conds))
	for _, cond := range conds {
		if expand.ShouldExpand(cond.Expansion, false, resultCount, req.MinResultsThreshold) {
			out = append(out, cond)
			fire = true
			continue
		}
		if req.AutoExpand && isExpandableKind(cond) &&
			expand.ShouldExpand(core.ExpandNone, true, resultCount, req.MinResultsThreshold) {
			auto := *cond
			auto.Expansion = expand.DefaultAutoStrategy
			out = append(out, &auto)
			fire = true
			continue
		}
		out = append(out, cond)
	}
	if !fire {
		return nil
	}
	return out
}

func isExpandableKind(cond *core.Condition) bool {
	if cond.Negate {
		return false
	}
	switch cond.Kind {
	case core.KindText, core.KindNodeRef, core.KindEntryRef:
		return true
	default:
		return false
	}
}

func hasExpandable(conds []*core.Condition) bool {
	for _, cond := range conds {
		if isExpandableKind(cond) {
			return true
		}
	}
	return false
}

// fuzzyFilterTerm picks the post-filter term when a fuzzy strategy ran,
// so approximate index matches get distance-checked.
func fuzzyFilterTerm(candidates []*core.Condition) string {
	for _, cond := range candidates {
		if cond.Expansion == core.ExpandFuzzy && cond.Kind == core.KindText {
			return cond.Value
		}
	}
	return ""
}

// termWeights extracts the scorable terms from a condition list.
func termWeights(conds []*core.Condition) []results.TermWeight {
	out := make([]results.TermWeight, 0, len(conds))
	for _, cond := range conds {
		switch cond.Kind {
		case core.KindText, core.KindNodeRef, core.KindEntryRef:
			out = append(out, results.TermWeight{Term: cond.Value, Weight: cond.Weight})
		case core.KindRegex:
			if cond.MatchedTerm != "" {
				out = append(out, results.TermWeight{Term: cond.MatchedTerm, Weight: cond.Weight})
			}
		}
	}
	return out
}

// itemsFromRows converts executor rows to scored result items, skipping
// ids already present in seen. seen may be nil.
func itemsFromRows(rows []graph.Row, terms []results.TermWeight, seen map[core.ID]bool) []*core.ResultItem {
	items := make([]*core.ResultItem, 0, len(rows))
	local := make(map[core.ID]bool, len(rows))
	for _, row := range rows {
		id := row.EntryID
		if id == 0 {
			id = row.NodeID
		}
		if local[id] || (seen != nil && seen[id]) {
			continue
		}
		local[id] = true

		item := &core.ResultItem{
			Id:           id,
			ParentNodeId: row.NodeID,
			NodeTitle:    row.Title,
			Content:      row.Text,
			Created:      row.Created,
			Modified:     row.Modified,
			IsEntry:      row.EntryID != 0,
		}
		item.Score = results.ScoreItem(item, terms)
		items = append(items, item)
	}
	return items
}

// provenanceFor finds the expanded term that most plausibly produced an
// item, for ranking and display.
func provenanceFor(item *core.ResultItem, siblings []*core.Condition) (string, []string) {
	content := strings.ToLower(item.Content)
	title := strings.ToLower(item.NodeTitle)
	for _, sibling := range siblings {
		term := strings.ToLower(sibling.MatchedTerm)
		if term == "" {
			term = strings.ToLower(sibling.Value)
		}
		if term != "" && (strings.Contains(content, term) || strings.Contains(title, term)) {
			return sibling.MatchedTerm, sibling.ExpansionUsed
		}
	}
	first := siblings[0]
	return first.MatchedTerm, first.ExpansionUsed
}
