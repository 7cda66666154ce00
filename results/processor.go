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


package results

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/xrash/smetrics"

	"github.com/poiesic/gnosis/core"
	"github.com/poiesic/gnosis/graph"
)

// SortMode selects the ordering of processed results.
type SortMode int

const (
	SortRelevance SortMode = iota + 1
	SortRecency
	SortAlphabetical
	SortRandom
)

// String returns the metadata name of the sort mode.
func (m SortMode) String() string {
	switch m {
	case SortRelevance:
		return "relevance"
	case SortRecency:
		return "recency"
	case SortAlphabetical:
		return "alphabetical"
	case SortRandom:
		return "random"
	default:
		return "unknown"
	}
}

// AccessMode is the caller's current content access level. Content mode
// returns full entry text and therefore enforces a stricter result cap
// than metadata mode, which returns titles and identifiers only.
type AccessMode int

const (
	ModeMetadata AccessMode = iota + 1
	ModeContent
)

// String returns the metadata name of the access mode.
func (m AccessMode) String() string {
	switch m {
	case ModeMetadata:
		return "metadata"
	case ModeContent:
		return "content"
	default:
		return "unknown"
	}
}

const (
	// MaxMetadataResults caps metadata-only responses.
	MaxMetadataResults = 50

	// MaxContentResults caps full-content responses, which carry entry
	// text into the agent's context.
	MaxContentResults = 10

	// EnrichmentSkipThreshold is the result count above which hierarchy
	// enrichment is skipped unless the query asks for structure.
	EnrichmentSkipThreshold = 20

	// DefaultFuzzyThreshold is the minimum JaroWinkler similarity a result
	// must reach to survive the fuzzy post-filter.
	DefaultFuzzyThreshold = 0.8

	defaultPoolSize = 8
)

// Options controls which pipeline stages run and how.
type Options struct {
	// Query is the caller's natural-language question, consulted by the
	// structural-keyword heuristic. Optional.
	Query string

	// HierarchyDepth is how many levels of parent and child context to
	// attach per result. Zero disables enrichment.
	HierarchyDepth int

	// Date-range filters. Zero values disable the corresponding bound.
	CreatedAfter   time.Time
	CreatedBefore  time.Time
	ModifiedAfter  time.Time
	ModifiedBefore time.Time

	// FuzzyTerm enables the fuzzy post-filter when non-empty.
	FuzzyTerm string
	// FuzzyThreshold overrides DefaultFuzzyThreshold when positive.
	FuzzyThreshold float64

	// Sort defaults to SortRelevance.
	Sort SortMode
	// RandomSeed makes SortRandom reproducible when Seeded is true.
	RandomSeed int64
	Seeded     bool

	// AccessMode defaults to ModeMetadata.
	AccessMode AccessMode
	// ExplicitCount is a user-stated result count. It always overrides the
	// access-mode cap.
	ExplicitCount int
}

// Processed is the outcome of one pipeline run.
type Processed struct {
	Items []*core.ResultItem

	// TotalFound is the count after filtering but before limiting.
	TotalFound int
	// WasLimited is set whenever Items is a truncation of the true set.
	WasLimited bool
	SortedBy   SortMode
	// Sampled is set when a random sample was drawn.
	Sampled bool

	// Warnings carries recovered stage failures, such as an unreachable
	// hierarchy lookup.
	Warnings []string
}

// Processor runs the post-processing pipeline.
type Processor struct {
	hierarchy graph.Hierarchy
	pool      *ants.Pool
	logger    *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "results")
		return nil
	}
}

// WithPoolSize replaces the enrichment worker pool with one of the given
// size.
func WithPoolSize(size int) Option {
	return func(p *Processor) error {
		if size <= 0 {
			return ErrInvalidPoolSize
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if p.pool != nil {
			p.pool.Release()
		}
		p.pool = pool
		return nil
	}
}

// NewProcessor creates a new result processor.
func NewProcessor(hierarchy graph.Hierarchy, opts ...Option) (*Processor, error) {
	if hierarchy == nil {
		return nil, ErrHierarchyRequired
	}

	pool, err := ants.NewPool(defaultPoolSize)
	if err != nil {
		return nil, err
	}

	p := &Processor{
		hierarchy: hierarchy,
		pool:      pool,
		logger:    slog.Default().With("component", "results"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.pool.Release()
			return nil, err
		}
	}

	return p, nil
}

// Release releases the worker pool. The processor should not be used after
// calling Release.
func (p *Processor) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// Process runs the pipeline stages in fixed order: enrichment, date
// filtering, fuzzy filtering, sorting, limiting. Metadata mode then
// replaces the surviving items with content-free copies. The input slice
// is not modified; items are shared until redaction, and enrichment
// mutates their context fields.
func (p *Processor) Process(ctx context.Context, items []*core.ResultItem, opts Options) (*Processed, error) {
	if opts.FuzzyThreshold < 0 || opts.FuzzyThreshold > 1 {
		return nil, ErrInvalidThreshold
	}

	out := &Processed{Items: append([]*core.ResultItem(nil), items...)}

	if opts.HierarchyDepth > 0 && p.shouldEnrich(len(out.Items), opts.Query) {
		p.enrich(ctx, out, opts.HierarchyDepth)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	out.Items = filterByDate(out.Items, opts)
	if opts.FuzzyTerm != "" {
		out.Items = filterFuzzy(out.Items, opts.FuzzyTerm, fuzzyThreshold(opts))
	}

	out.TotalFound = len(out.Items)
	p.sortItems(out, opts)
	p.limit(out, opts)

	if opts.AccessMode == ModeMetadata {
		out.Items = redactItems(out.Items)
	}

	return out, nil
}

// redactItems copies the items with entry text cleared, recursing into
// hierarchy context. Metadata-mode responses return titles and
// identifiers only; the copies leave the caller's items untouched.
func redactItems(items []*core.ResultItem) []*core.ResultItem {
	if items == nil {
		return nil
	}
	out := make([]*core.ResultItem, len(items))
	for i, item := range items {
		clone := *item
		clone.Content = ""
		clone.Children = redactItems(item.Children)
		clone.Parents = redactItems(item.Parents)
		out[i] = &clone
	}
	return out
}

// shouldEnrich applies the auto-skip: large result sets skip enrichment
// unless the query explicitly asks for structural context.
func (p *Processor) shouldEnrich(count int, query string) bool {
	if count <= EnrichmentSkipThreshold {
		return true
	}
	if wantsStructure(query) {
		return true
	}
	p.logger.Debug("skipping hierarchy enrichment for large result set", "count", count)
	return false
}

// enrich attaches parent and child context to each item concurrently.
// Lookup failures degrade to warnings.
func (p *Processor) enrich(ctx context.Context, out *Processed, depth int) {
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, item := range out.Items {
		item := item
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			if warn := p.enrichItem(ctx, item, depth); warn != "" {
				mu.Lock()
				out.Warnings = append(out.Warnings, warn)
				mu.Unlock()
			}
		})
		if err != nil {
			wg.Done()
			p.logger.Warn("enrichment submit failed", "err", err)
		}
	}

	wg.Wait()
}

func (p *Processor) enrichItem(ctx context.Context, item *core.ResultItem, depth int) string {
	children, err := p.hierarchy.Children(ctx, item.Id, depth)
	if err != nil {
		p.logger.Warn("child lookup failed", "id", item.Id, "err", err)
		return fmt.Sprintf("context lookup failed for %d: %v", item.Id, err)
	}
	item.Children = rowsToItems(children)

	if item.IsEntry {
		parents, err := p.hierarchy.Parents(ctx, item.Id, depth)
		if err != nil {
			p.logger.Warn("parent lookup failed", "id", item.Id, "err", err)
			return fmt.Sprintf("context lookup failed for %d: %v", item.Id, err)
		}
		item.Parents = rowsToItems(parents)
	}

	return ""
}

func rowsToItems(rows []graph.Row) []*core.ResultItem {
	if len(rows) == 0 {
		return nil
	}
	items := make([]*core.ResultItem, 0, len(rows))
	for _, row := range rows {
		id := row.EntryID
		if id == 0 {
			id = row.NodeID
		}
		items = append(items, &core.ResultItem{
			Id:           id,
			ParentNodeId: row.NodeID,
			NodeTitle:    row.Title,
			Content:      row.Text,
			Created:      row.Created,
			Modified:     row.Modified,
			IsEntry:      row.EntryID != 0,
		})
	}
	return items
}

func filterByDate(items []*core.ResultItem, opts Options) []*core.ResultItem {
	if opts.CreatedAfter.IsZero() && opts.CreatedBefore.IsZero() &&
		opts.ModifiedAfter.IsZero() && opts.ModifiedBefore.IsZero() {
		return items
	}

	kept := make([]*core.ResultItem, 0, len(items))
	for _, item := range items {
		if !opts.CreatedAfter.IsZero() && item.Created.Before(opts.CreatedAfter) {
			continue
		}
		if !opts.CreatedBefore.IsZero() && item.Created.After(opts.CreatedBefore) {
			continue
		}
		if !opts.ModifiedAfter.IsZero() && item.Modified.Before(opts.ModifiedAfter) {
			continue
		}
		if !opts.ModifiedBefore.IsZero() && item.Modified.After(opts.ModifiedBefore) {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

func fuzzyThreshold(opts Options) float64 {
	if opts.FuzzyThreshold > 0 {
		return opts.FuzzyThreshold
	}
	return DefaultFuzzyThreshold
}

// filterFuzzy drops items whose best token similarity to the term falls
// below the threshold. Used when the index-level match was approximate.
func filterFuzzy(items []*core.ResultItem, term string, threshold float64) []*core.ResultItem {
	term = strings.ToLower(term)
	kept := make([]*core.ResultItem, 0, len(items))
	for _, item := range items {
		if bestSimilarity(item, term) >= threshold {
			kept = append(kept, item)
		}
	}
	return kept
}

func bestSimilarity(item *core.ResultItem, term string) float64 {
	best := 0.0
	candidates := tokenizeAndFilter(item.Content)
	candidates = append(candidates, strings.ToLower(item.NodeTitle))
	for _, candidate := range candidates {
		if s := smetrics.JaroWinkler(term, candidate, 0.7, 4); s > best {
			best = s
		}
	}
	return best
}

func (p *Processor) sortItems(out *Processed, opts Options) {
	mode := opts.Sort
	if mode == 0 {
		mode = SortRelevance
	}
	out.SortedBy = mode

	items := out.Items
	switch mode {
	case SortRecency:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Modified.After(items[j].Modified)
		})
	case SortAlphabetical:
		sort.SliceStable(items, func(i, j int) bool {
			a, b := strings.ToLower(items[i].NodeTitle), strings.ToLower(items[j].NodeTitle)
			if a != b {
				return a < b
			}
			return items[i].Content < items[j].Content
		})
	case SortRandom:
		seed := opts.RandomSeed
		if !opts.Seeded {
			seed = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewSource(seed))
		rng.Shuffle(len(items), func(i, j int) {
			items[i], items[j] = items[j], items[i]
		})
		out.Sampled = true
	default:
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].Score != items[j].Score {
				return items[i].Score > items[j].Score
			}
			if !items[i].Modified.Equal(items[j].Modified) {
				return items[i].Modified.After(items[j].Modified)
			}
			return items[i].Id < items[j].Id
		})
	}
}

// limit enforces the access-mode cap. An explicit user-stated count always
// wins over the default cap.
func (p *Processor) limit(out *Processed, opts Options) {
	capacity := MaxMetadataResults
	if opts.AccessMode == ModeContent {
		capacity = MaxContentResults
	}
	if opts.ExplicitCount > 0 {
		capacity = opts.ExplicitCount
	}

	if len(out.Items) > capacity {
		out.Items = out.Items[:capacity]
		out.WasLimited = true
	}
}
