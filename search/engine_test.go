package search

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	aimock "github.com/poiesic/gnosis/ai/mock"
	"github.com/poiesic/gnosis/core"
	"github.com/poiesic/gnosis/expand"
	"github.com/poiesic/gnosis/graph"
	graphmock "github.com/poiesic/gnosis/graph/mock"
	"github.com/poiesic/gnosis/query"
	"github.com/poiesic/gnosis/results"
	"github.com/poiesic/gnosis/store"
	storebadger "github.com/poiesic/gnosis/store/badger"
)

func newTestEngine(t *testing.T, ms *graphmock.MockStore, opts ...Option) *Engine {
	t.Helper()

	repo, backend, err := storebadger.NewMemoryRepository()
	require.NoError(t, err)

	st, err := store.New(repo)
	require.NoError(t, err)

	proc, err := results.NewProcessor(ms)
	require.NoError(t, err)

	eng, err := NewEngine(ms, proc, st, opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		eng.Release()
		proc.Release()
		st.Close()
		backend.Close()
	})
	return eng
}

func entryRow(entryID, nodeID core.ID, title, text string) graph.Row {
	now := time.Now()
	return graph.Row{
		EntryID:  entryID,
		NodeID:   nodeID,
		Title:    title,
		Text:     text,
		Created:  now,
		Modified: now,
	}
}

func textRequest(value string) *Request {
	return &Request{
		Conditions: []*core.Condition{core.NewCondition(core.KindText, value)},
		AccessMode: results.ModeContent,
	}
}

func TestEngine_Search(t *testing.T) {
	t.Run("returns matching entries", func(t *testing.T) {
		ms := graphmock.NewMockStore()
		ms.AddFixture("budget",
			entryRow(1, 100, "Q3 Planning", "budget review for the quarter"),
			entryRow(2, 100, "Q3 Planning", "approved budget line items"),
			entryRow(3, 200, "Finance", "budget"))
		eng := newTestEngine(t, ms)

		resp, err := eng.Search(context.Background(), textRequest("budget"))
		require.NoError(t, err)

		assert.Equal(t, 3, resp.Metadata.ReturnedCount)
		assert.Equal(t, 3, resp.Metadata.TotalFound)
		assert.False(t, resp.Metadata.WasLimited)
		assert.Equal(t, "search_001", resp.Metadata.ResultID)
		assert.Equal(t, "content", resp.Metadata.ResultMode)
		assert.False(t, resp.Metadata.CanExpandResults)
		assert.Empty(t, resp.Metadata.Warnings)
		for _, item := range resp.Results {
			assert.Greater(t, item.Score, 0.0)
		}

		entry, err := eng.Store().Get(context.Background(), resp.Metadata.ResultID)
		require.NoError(t, err)
		assert.Equal(t, store.PurposeFinal, entry.Purpose)
		assert.Len(t, entry.Data, 3)
	})

	t.Run("metadata mode omits entry text", func(t *testing.T) {
		ms := graphmock.NewMockStore()
		ms.AddFixture("budget", entryRow(1, 100, "Q3 Planning", "budget review for the quarter"))
		eng := newTestEngine(t, ms)

		req := textRequest("budget")
		req.AccessMode = results.ModeMetadata
		resp, err := eng.Search(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, "metadata", resp.Metadata.ResultMode)
		require.Len(t, resp.Results, 1)
		assert.Empty(t, resp.Results[0].Content)
		assert.Equal(t, "Q3 Planning", resp.Results[0].NodeTitle)
	})

	t.Run("malformed condition is dropped with a warning", func(t *testing.T) {
		ms := graphmock.NewMockStore()
		ms.AddFixture("budget", entryRow(1, 100, "Q3 Planning", "budget review"))
		eng := newTestEngine(t, ms)

		req := textRequest("budget")
		req.Conditions = append(req.Conditions, core.NewCondition(core.KindText, ""))

		resp, err := eng.Search(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Metadata.ReturnedCount)
		require.Len(t, resp.Metadata.Warnings, 1)
		assert.Contains(t, resp.Metadata.Warnings[0], "dropped malformed condition")
	})

	t.Run("all conditions malformed", func(t *testing.T) {
		ms := graphmock.NewMockStore()
		eng := newTestEngine(t, ms)

		req := &Request{Conditions: []*core.Condition{core.NewCondition(core.KindText, "")}}
		_, err := eng.Search(context.Background(), req)
		assert.ErrorIs(t, err, ErrNoConditions)
	})

	t.Run("no conditions at all", func(t *testing.T) {
		ms := graphmock.NewMockStore()
		eng := newTestEngine(t, ms)

		_, err := eng.Search(context.Background(), &Request{})
		assert.ErrorIs(t, err, ErrNoConditions)
	})

	t.Run("nested group is normalized before compiling", func(t *testing.T) {
		ms := graphmock.NewMockStore()
		ms.AddFixture("budget", entryRow(1, 100, "Q3 Planning", "budget inside [[Objectives]]"))
		eng := newTestEngine(t, ms)

		group := &core.ConditionGroup{
			Combinator: core.CombineAnd,
			Children: []core.GroupNode{
				core.NewCondition(core.KindText, "budget"),
				&core.ConditionGroup{
					Combinator: core.CombineOr,
					Children: []core.GroupNode{
						core.NewCondition(core.KindNodeRef, "Objectives"),
						core.NewCondition(core.KindNodeRef, "Key Results"),
					},
				},
			},
		}
		resp, err := eng.Search(context.Background(), &Request{
			Group:      group,
			AccessMode: results.ModeContent,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Metadata.ReturnedCount)
	})

	t.Run("explicit limit overrides access mode cap", func(t *testing.T) {
		ms := graphmock.NewMockStore()
		rows := make([]graph.Row, 0, 30)
		for i := 1; i <= 30; i++ {
			rows = append(rows, entryRow(core.ID(i), core.ID(1000+i), "Notes", "budget item"))
		}
		ms.AddFixture("budget", rows...)
		eng := newTestEngine(t, ms)

		req := textRequest("budget")
		req.Limit = 20
		resp, err := eng.Search(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 20, resp.Metadata.ReturnedCount)
		assert.Equal(t, 30, resp.Metadata.TotalFound)
		assert.True(t, resp.Metadata.WasLimited)
	})
}

func TestEngine_ContentScopeIntersection(t *testing.T) {
	ms := graphmock.NewMockStore()
	ms.AddFixture("alpha",
		entryRow(11, 1, "Shared", "alpha notes"),
		entryRow(21, 2, "Other", "alpha only here"))
	ms.AddFixture("beta",
		entryRow(12, 1, "Shared", "beta notes"))
	eng := newTestEngine(t, ms)

	resp, err := eng.Search(context.Background(), &Request{
		Conditions: []*core.Condition{
			core.NewCondition(core.KindText, "alpha"),
			core.NewCondition(core.KindText, "beta"),
		},
		Scope:      core.ScopeContent,
		AccessMode: results.ModeContent,
	})
	require.NoError(t, err)

	// One sub-query per condition, and only node 1 satisfies both.
	assert.Equal(t, 2, ms.ExecuteCount())
	require.Equal(t, 2, resp.Metadata.ReturnedCount)
	for _, item := range resp.Results {
		assert.Equal(t, core.ID(1), item.ParentNodeId)
	}
}

func TestEngine_Expansion(t *testing.T) {
	newExpander := func(t *testing.T, gen *aimock.MockTermGenerator) *expand.Expander {
		t.Helper()
		exp, err := expand.NewExpander(gen,
			expand.WithRateLimit(rate.NewLimiter(rate.Inf, 1)))
		require.NoError(t, err)
		return exp
	}

	t.Run("explicit strategy fires and merges with provenance", func(t *testing.T) {
		ms := graphmock.NewMockStore()
		ms.AddFixture("budget",
			entryRow(1, 100, "Q3 Planning", "budget"),
			entryRow(2, 100, "Q3 Planning", "the budget was approved"))
		// Only reachable through the generated plural.
		ms.AddFixture("budgets",
			entryRow(3, 101, "Forecasts", "planning budgets for next year"))

		gen := aimock.NewMockTermGenerator()
		eng := newTestEngine(t, ms, WithExpander(newExpander(t, gen)))

		cond := core.NewCondition(core.KindText, "budget")
		cond.Expansion = core.ExpandSynonyms
		resp, err := eng.Search(context.Background(), &Request{
			Conditions: []*core.Condition{cond},
			AccessMode: results.ModeContent,
		})
		require.NoError(t, err)

		assert.Equal(t, 1, gen.CallCount())
		assert.Equal(t, 3, resp.Metadata.ReturnedCount)
		assert.False(t, resp.Metadata.CanExpandResults)

		var original, expanded *core.ResultItem
		for _, item := range resp.Results {
			switch item.Id {
			case 1:
				original = item
			case 3:
				expanded = item
			}
		}
		require.NotNil(t, original)
		require.NotNil(t, expanded)
		assert.Empty(t, original.ExpansionUsed)
		assert.Equal(t, []string{"synonyms"}, expanded.ExpansionUsed)
		assert.Equal(t, "budgets", expanded.MatchedTerm)
		assert.Less(t, expanded.Score, original.Score)
	})

	t.Run("other conditions still bind expanded matches", func(t *testing.T) {
		ms := graphmock.NewMockStore()
		ms.ExecuteFunc = func(ctx context.Context, q string) ([]graph.Row, error) {
			// A query that dropped the second condition would land here.
			if !strings.Contains(q, "planning") {
				return []graph.Row{entryRow(9, 300, "Archive", "old budgets archive")}, nil
			}
			rows := []graph.Row{entryRow(1, 100, "Q3 Planning", "budget planning review")}
			if strings.Contains(q, "budgets") {
				rows = append(rows, entryRow(5, 101, "Roadmap", "planning budgets for next year"))
			}
			return rows, nil
		}

		gen := aimock.NewMockTermGenerator()
		eng := newTestEngine(t, ms, WithExpander(newExpander(t, gen)))

		expanding := core.NewCondition(core.KindText, "budget")
		expanding.Expansion = core.ExpandSynonyms
		resp, err := eng.Search(context.Background(), &Request{
			Conditions: []*core.Condition{expanding, core.NewCondition(core.KindText, "planning")},
			Combinator: core.CombineAnd,
			AccessMode: results.ModeContent,
		})
		require.NoError(t, err)

		assert.Equal(t, 1, gen.CallCount())
		byID := make(map[core.ID]*core.ResultItem)
		for _, item := range resp.Results {
			byID[item.Id] = item
		}
		assert.NotContains(t, byID, core.ID(9))
		require.Contains(t, byID, core.ID(1))
		require.Contains(t, byID, core.ID(5))
		assert.Equal(t, []string{"synonyms"}, byID[5].ExpansionUsed)
		assert.Equal(t, "budgets", byID[5].MatchedTerm)
		assert.Less(t, byID[5].Score, byID[1].Score)
	})

	t.Run("auto expansion fires below threshold", func(t *testing.T) {
		ms := graphmock.NewMockStore()
		ms.AddFixture("budget", entryRow(1, 100, "Q3 Planning", "budget"))
		gen := aimock.NewMockTermGenerator()
		eng := newTestEngine(t, ms, WithExpander(newExpander(t, gen)))

		req := textRequest("budget")
		req.AutoExpand = true
		req.MinResultsThreshold = 5
		resp, err := eng.Search(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, 1, gen.CallCount())
		assert.False(t, resp.Metadata.CanExpandResults)
	})

	t.Run("auto expansion skipped above threshold", func(t *testing.T) {
		ms := graphmock.NewMockStore()
		rows := make([]graph.Row, 0, 6)
		for i := 1; i <= 6; i++ {
			rows = append(rows, entryRow(core.ID(i), core.ID(100+i), "Notes", "budget item"))
		}
		ms.AddFixture("budget", rows...)
		gen := aimock.NewMockTermGenerator()
		eng := newTestEngine(t, ms, WithExpander(newExpander(t, gen)))

		req := textRequest("budget")
		req.AutoExpand = true
		req.MinResultsThreshold = 5
		resp, err := eng.Search(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, 0, gen.CallCount())
		assert.True(t, resp.Metadata.CanExpandResults)
	})

	t.Run("generation failure degrades to a warning", func(t *testing.T) {
		ms := graphmock.NewMockStore()
		ms.AddFixture("budget", entryRow(1, 100, "Q3 Planning", "budget"))
		gen := aimock.NewMockTermGenerator()
		gen.GenerateTermsFunc = func(ctx context.Context, term string, strategy core.ExpansionStrategy, hints []string) ([]string, error) {
			return nil, errors.New("model unavailable")
		}
		eng := newTestEngine(t, ms, WithExpander(newExpander(t, gen)))

		cond := core.NewCondition(core.KindText, "budget")
		cond.Expansion = core.ExpandSynonyms
		resp, err := eng.Search(context.Background(), &Request{
			Conditions: []*core.Condition{cond},
			AccessMode: results.ModeContent,
		})
		require.NoError(t, err)

		assert.Equal(t, 1, resp.Metadata.ReturnedCount)
		require.NotEmpty(t, resp.Metadata.Warnings)
		assert.Contains(t, resp.Metadata.Warnings[0], "expansion failed")
	})
}

func TestEngine_ScopeFrom(t *testing.T) {
	t.Run("narrows to nodes of a prior result set", func(t *testing.T) {
		ms := graphmock.NewMockStore()
		ms.AddFixture("budget",
			entryRow(1, 100, "Q3 Planning", "budget review"),
			entryRow(2, 200, "Finance", "budget totals"))
		ms.AddFixture("report", entryRow(9, 100, "Q3 Planning", "status report"))
		eng := newTestEngine(t, ms)

		first, err := eng.Search(context.Background(), textRequest("budget"))
		require.NoError(t, err)

		req := textRequest("report")
		req.FromResultID = first.Metadata.ResultID
		_, err = eng.Search(context.Background(), req)
		require.NoError(t, err)

		queries := ms.Queries()
		scoped := queries[len(queries)-1]
		assert.Contains(t, scoped, "100")
		assert.Contains(t, scoped, "200")
	})

	t.Run("unknown result id", func(t *testing.T) {
		ms := graphmock.NewMockStore()
		eng := newTestEngine(t, ms)

		req := textRequest("budget")
		req.FromResultID = "search_999"
		_, err := eng.Search(context.Background(), req)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestEngine_ExecutorFailure(t *testing.T) {
	t.Run("wrapped as ExecutionError and nothing stored", func(t *testing.T) {
		ms := graphmock.NewMockStore()
		ms.ExecuteFunc = func(ctx context.Context, query string) ([]graph.Row, error) {
			return nil, errors.New("query timeout")
		}
		eng := newTestEngine(t, ms, WithRetry(1, time.Millisecond))

		_, err := eng.Search(context.Background(), textRequest("budget"))
		require.Error(t, err)

		var execErr *ExecutionError
		require.ErrorAs(t, err, &execErr)
		assert.NotEmpty(t, execErr.Query)

		_, err = eng.Store().Get(context.Background(), "search_001")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		ms := graphmock.NewMockStore()
		calls := 0
		ms.ExecuteFunc = func(ctx context.Context, query string) ([]graph.Row, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("transient")
			}
			return []graph.Row{entryRow(1, 100, "Q3 Planning", "budget")}, nil
		}
		eng := newTestEngine(t, ms, WithRetry(2, time.Millisecond))

		resp, err := eng.Search(context.Background(), textRequest("budget"))
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Equal(t, 1, resp.Metadata.ReturnedCount)
	})

	t.Run("cancellation leaves the store untouched", func(t *testing.T) {
		ms := graphmock.NewMockStore()
		ms.AddFixture("budget", entryRow(1, 100, "Q3 Planning", "budget"))
		eng := newTestEngine(t, ms, WithRetry(1, time.Millisecond))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := eng.Search(ctx, textRequest("budget"))
		assert.ErrorIs(t, err, context.Canceled)

		_, err = eng.Store().Get(context.Background(), "search_001")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

type recordingMonitor struct {
	started    int
	compiled   int
	executed   int
	expanded   int
	processed  int
	finished   int
	lastRowLen int
}

func (r *recordingMonitor) Start(*Request)                         { r.started++ }
func (r *recordingMonitor) AfterCompile(*query.Plan)               { r.compiled++ }
func (r *recordingMonitor) AfterExecute(rows []graph.Row)          { r.executed++; r.lastRowLen = len(rows) }
func (r *recordingMonitor) AfterExpansion([]*core.Condition, []string) { r.expanded++ }
func (r *recordingMonitor) AfterProcessing(*results.Processed)     { r.processed++ }
func (r *recordingMonitor) Finish(*Response)                       { r.finished++ }

func TestEngine_Monitor(t *testing.T) {
	ms := graphmock.NewMockStore()
	ms.AddFixture("budget",
		entryRow(1, 100, "Q3 Planning", "budget review"),
		entryRow(2, 200, "Finance", "budget totals"))

	mon := &recordingMonitor{}
	eng := newTestEngine(t, ms, WithMonitor(mon))

	_, err := eng.Search(context.Background(), textRequest("budget"))
	require.NoError(t, err)

	assert.Equal(t, 1, mon.started)
	assert.Equal(t, 1, mon.compiled)
	assert.Equal(t, 1, mon.executed)
	assert.Equal(t, 0, mon.expanded)
	assert.Equal(t, 1, mon.processed)
	assert.Equal(t, 1, mon.finished)
	assert.Equal(t, 2, mon.lastRowLen)
}
