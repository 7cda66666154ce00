package results

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/poiesic/gnosis/core"
)

func TestScoreItem(t *testing.T) {
	terms := []TermWeight{{Term: "rate", Weight: 1.0}}

	exact := &core.ResultItem{Content: "rate"}
	phrase := &core.ResultItem{Content: "the burn rate this quarter"}
	partial := &core.ResultItem{Content: "separate concerns cleanly"}
	miss := &core.ResultItem{Content: "unrelated text entirely"}

	t.Run("exact beats phrase beats partial", func(t *testing.T) {
		exactScore := ScoreItem(exact, terms)
		phraseScore := ScoreItem(phrase, terms)
		partialScore := ScoreItem(partial, terms)

		assert.Greater(t, exactScore, phraseScore)
		assert.Greater(t, phraseScore, partialScore)
		assert.Greater(t, partialScore, 0.0)
	})

	t.Run("no match scores zero", func(t *testing.T) {
		assert.Zero(t, ScoreItem(miss, terms))
	})

	t.Run("weight scales the match tier", func(t *testing.T) {
		full := ScoreItem(phrase, []TermWeight{{Term: "rate", Weight: 1.0}})
		decayed := ScoreItem(phrase, []TermWeight{{Term: "rate", Weight: 0.7}})
		assert.Greater(t, full, decayed)
	})

	t.Run("title matches count", func(t *testing.T) {
		item := &core.ResultItem{NodeTitle: "Burn Rate", Content: "numbers only"}
		assert.Greater(t, ScoreItem(item, terms), 0.0)
	})

	t.Run("deterministic", func(t *testing.T) {
		a := ScoreItem(phrase, terms)
		b := ScoreItem(phrase, terms)
		assert.Equal(t, a, b)
	})

	t.Run("term coverage adds a ratio bonus", func(t *testing.T) {
		pair := []TermWeight{{Term: "burn", Weight: 1.0}, {Term: "rate", Weight: 1.0}}
		both := &core.ResultItem{Content: "burn rate"}
		one := &core.ResultItem{Content: "rate only"}

		// Two phrase hits plus full coverage against one hit plus half.
		assert.InDelta(t, 2.0+2.0+1.0+lengthBonus(9), ScoreItem(both, pair), 1e-9)
		assert.InDelta(t, 2.0+0.5+lengthBonus(9), ScoreItem(one, pair), 1e-9)
	})

	t.Run("length bonus breaks ties but not tiers", func(t *testing.T) {
		short := &core.ResultItem{Content: "burn rate"}
		long := &core.ResultItem{Content: "burn rate with a much longer discussion of the quarterly finance picture and how the burn rate evolved"}
		assert.Greater(t, ScoreItem(long, terms), ScoreItem(short, terms))
	})
}

func TestMatchRatioBonus(t *testing.T) {
	assert.Zero(t, MatchRatioBonus(0, 3))
	assert.Zero(t, MatchRatioBonus(1, 0))
	assert.InDelta(t, 0.5, MatchRatioBonus(1, 2), 1e-9)
	assert.InDelta(t, 1.0, MatchRatioBonus(5, 3), 1e-9)
}

func TestWantsStructure(t *testing.T) {
	assert.True(t, wantsStructure("what are the children of this node"))
	assert.True(t, wantsStructure("show surrounding context"))
	assert.False(t, wantsStructure("find meeting notes about budget"))
	assert.False(t, wantsStructure(""))
}
