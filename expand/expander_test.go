package expand

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/poiesic/gnosis/ai/mock"
	"github.com/poiesic/gnosis/core"
)

func newTestExpander(t *testing.T, gen *mock.MockTermGenerator) *Expander {
	t.Helper()
	e, err := NewExpander(gen, WithRateLimit(rate.NewLimiter(rate.Inf, 1)))
	require.NoError(t, err)
	return e
}

func TestNewExpander(t *testing.T) {
	t.Run("requires generator", func(t *testing.T) {
		_, err := NewExpander(nil)
		assert.ErrorIs(t, err, ErrGeneratorRequired)
	})

	t.Run("rejects bad decay", func(t *testing.T) {
		_, err := NewExpander(mock.NewMockTermGenerator(), WithDecay(1.5))
		assert.ErrorIs(t, err, ErrInvalidDecay)
	})

	t.Run("rejects bad timeout", func(t *testing.T) {
		_, err := NewExpander(mock.NewMockTermGenerator(), WithCallTimeout(0))
		assert.ErrorIs(t, err, ErrInvalidTimeout)
	})
}

func TestShouldExpand(t *testing.T) {
	assert.True(t, ShouldExpand(core.ExpandSynonyms, false, 100, 5))
	assert.True(t, ShouldExpand(core.ExpandNone, true, 2, 5))
	assert.False(t, ShouldExpand(core.ExpandNone, true, 5, 5))
	assert.False(t, ShouldExpand(core.ExpandNone, false, 0, 5))
}

func TestExpand_TextCondition(t *testing.T) {
	gen := mock.NewMockTermGenerator()
	gen.GenerateTermsFunc = func(ctx context.Context, term string, strategy core.ExpansionStrategy, hints []string) ([]string, error) {
		return []string{"velocity", "throughput"}, nil
	}

	e := newTestExpander(t, gen)
	cond := core.NewCondition(core.KindText, "speed")
	cond.Expansion = core.ExpandSynonyms

	res, err := e.Expand(context.Background(), []*core.Condition{cond}, nil)
	require.NoError(t, err)

	require.Len(t, res.Conditions, 3)
	assert.Same(t, cond, res.Conditions[0])
	assert.Equal(t, 1, res.Calls)
	assert.Empty(t, res.Warnings)

	for _, sibling := range res.Conditions[1:] {
		assert.Equal(t, core.KindText, sibling.Kind)
		assert.InDelta(t, 0.7, sibling.Weight, 1e-9)
		assert.Equal(t, sibling.Value, sibling.MatchedTerm)
		assert.Equal(t, []string{"synonyms"}, sibling.ExpansionUsed)
	}
}

func TestExpand_DeduplicatesAcrossStrategies(t *testing.T) {
	gen := mock.NewMockTermGenerator()
	gen.GenerateTermsFunc = func(ctx context.Context, term string, strategy core.ExpansionStrategy, hints []string) ([]string, error) {
		switch strategy {
		case core.ExpandSynonyms:
			return []string{"pace", "Speed"}, nil
		case core.ExpandRelated:
			return []string{"PACE", "momentum"}, nil
		default:
			return nil, nil
		}
	}

	e := newTestExpander(t, gen)
	cond := core.NewCondition(core.KindText, "speed")
	cond.Expansion = core.ExpandAll

	res, err := e.Expand(context.Background(), []*core.Condition{cond}, nil)
	require.NoError(t, err)

	// One generation call per semantic strategy.
	assert.Equal(t, 3, res.Calls)

	// "Speed" equals the original and is dropped; "PACE" folds into "pace".
	require.Len(t, res.Conditions, 3)
	pace := res.Conditions[1]
	assert.Equal(t, "pace", pace.Value)
	assert.ElementsMatch(t, []string{"synonyms", "related_concepts"}, pace.ExpansionUsed)
	assert.Equal(t, "momentum", res.Conditions[2].Value)
}

func TestExpand_NodeRefKeepsRefKind(t *testing.T) {
	gen := mock.NewMockTermGenerator()
	gen.GenerateTermsFunc = func(ctx context.Context, term string, strategy core.ExpansionStrategy, hints []string) ([]string, error) {
		return []string{"Objectives", "Key Results"}, nil
	}

	e := newTestExpander(t, gen)
	cond := core.NewCondition(core.KindNodeRef, "Goals")
	cond.Expansion = core.ExpandSynonyms

	res, err := e.Expand(context.Background(), []*core.Condition{cond}, nil)
	require.NoError(t, err)

	require.Len(t, res.Conditions, 3)
	for i, want := range []string{"Objectives", "Key Results"} {
		sibling := res.Conditions[i+1]
		assert.Equal(t, core.KindNodeRef, sibling.Kind)
		assert.Equal(t, want, sibling.Value)
		assert.InDelta(t, 0.7, sibling.Weight, 1e-9)
		assert.Equal(t, want, sibling.MatchedTerm)
		assert.Equal(t, []string{"synonyms"}, sibling.ExpansionUsed)
	}
}

func TestExpand_EntryRefSibling(t *testing.T) {
	gen := mock.NewMockTermGenerator()
	gen.GenerateTermsFunc = func(ctx context.Context, term string, strategy core.ExpansionStrategy, hints []string) ([]string, error) {
		return []string{"Objectives"}, nil
	}

	e := newTestExpander(t, gen)
	cond := core.NewCondition(core.KindEntryRef, "Goals")
	cond.Expansion = core.ExpandSynonyms

	res, err := e.Expand(context.Background(), []*core.Condition{cond}, nil)
	require.NoError(t, err)

	require.Len(t, res.Conditions, 2)
	sibling := res.Conditions[1]
	assert.Equal(t, core.KindEntryRef, sibling.Kind)
	assert.Equal(t, "Objectives", sibling.Value)
	assert.Equal(t, []string{"synonyms"}, sibling.ExpansionUsed)
}

func TestExpand_GenerationFailureBecomesWarning(t *testing.T) {
	gen := mock.NewMockTermGenerator()
	gen.GenerateTermsFunc = func(ctx context.Context, term string, strategy core.ExpansionStrategy, hints []string) ([]string, error) {
		return nil, errors.New("model unavailable")
	}

	e := newTestExpander(t, gen)
	cond := core.NewCondition(core.KindText, "speed")
	cond.Expansion = core.ExpandSynonyms

	res, err := e.Expand(context.Background(), []*core.Condition{cond}, nil)
	require.NoError(t, err)

	require.Len(t, res.Conditions, 1)
	assert.Same(t, cond, res.Conditions[0])
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "synonyms expansion failed")
}

func TestExpand_CustomStrategy(t *testing.T) {
	t.Run("passes instruction through", func(t *testing.T) {
		gen := mock.NewMockTermGenerator()
		gen.GenerateTermsFunc = func(ctx context.Context, term string, strategy core.ExpansionStrategy, hints []string) ([]string, error) {
			assert.Equal(t, "medical terminology for the concept", string(strategy))
			return []string{"tachycardia"}, nil
		}

		e := newTestExpander(t, gen)
		cond := core.NewCondition(core.KindText, "fast heartbeat")
		cond.Expansion = core.ExpandCustom
		cond.CustomStrategy = "medical terminology for the concept"

		res, err := e.Expand(context.Background(), []*core.Condition{cond}, nil)
		require.NoError(t, err)
		require.Len(t, res.Conditions, 2)
		assert.Equal(t, []string{"custom"}, res.Conditions[1].ExpansionUsed)
	})

	t.Run("missing instruction is a warning", func(t *testing.T) {
		gen := mock.NewMockTermGenerator()
		e := newTestExpander(t, gen)
		cond := core.NewCondition(core.KindText, "fast heartbeat")
		cond.Expansion = core.ExpandCustom

		res, err := e.Expand(context.Background(), []*core.Condition{cond}, nil)
		require.NoError(t, err)
		assert.Len(t, res.Conditions, 1)
		assert.Len(t, res.Warnings, 1)
		assert.Zero(t, gen.CallCount())
	})
}

func TestExpand_SkipsUnsupportedConditions(t *testing.T) {
	gen := mock.NewMockTermGenerator()
	e := newTestExpander(t, gen)

	negated := core.NewCondition(core.KindText, "speed")
	negated.Negate = true
	negated.Expansion = core.ExpandSynonyms

	regex := core.NewCondition(core.KindRegex, "spee?d")
	regex.Match = core.MatchRegex
	regex.Expansion = core.ExpandSynonyms

	res, err := e.Expand(context.Background(), []*core.Condition{negated, regex}, nil)
	require.NoError(t, err)
	assert.Len(t, res.Conditions, 2)
	assert.Zero(t, gen.CallCount())
}

func TestExpand_CancelledContext(t *testing.T) {
	gen := mock.NewMockTermGenerator()
	gen.GenerateTermsFunc = func(ctx context.Context, term string, strategy core.ExpansionStrategy, hints []string) ([]string, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	e := newTestExpander(t, gen)
	cond := core.NewCondition(core.KindText, "speed")
	cond.Expansion = core.ExpandSynonyms

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := e.Expand(ctx, []*core.Condition{cond}, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExpand_HintsReachGenerator(t *testing.T) {
	gen := mock.NewMockTermGenerator()
	gen.GenerateTermsFunc = func(ctx context.Context, term string, strategy core.ExpansionStrategy, hints []string) ([]string, error) {
		return nil, nil
	}

	e := newTestExpander(t, gen)
	cond := core.NewCondition(core.KindText, "burn rate")
	cond.Expansion = core.ExpandSynonyms

	_, err := e.Expand(context.Background(), []*core.Condition{cond}, []string{"quarterly finance review"})
	require.NoError(t, err)

	calls := gen.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "burn rate", calls[0].Term)
	assert.Equal(t, []string{"quarterly finance review"}, calls[0].Hints)
}
