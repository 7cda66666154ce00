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
	"strings"

	"github.com/poiesic/gnosis/core"
)

// Match strength tiers. Exact beats phrase beats partial so a literal hit
// always outranks a substring hit at equal term weight.
const (
	exactMatchScore   = 3.0
	phraseMatchScore  = 2.0
	partialMatchScore = 1.0

	contentLengthBonusCap = 0.5
	contentLengthRef      = 500
)

// TermWeight is one search term with the weight of the condition that
// produced it. Expanded terms carry decayed weights so exact-condition
// matches rank first.
type TermWeight struct {
	Term   string
	Weight float64
}

// ScoreItem computes a deterministic relevance score for an item against
// the terms that the query matched on. The same inputs always produce the
// same score.
func ScoreItem(item *core.ResultItem, terms []TermWeight) float64 {
	content := strings.ToLower(item.Content)
	title := strings.ToLower(item.NodeTitle)

	score := 0.0
	matched, total := 0, 0
	for _, tw := range terms {
		term := strings.ToLower(strings.TrimSpace(tw.Term))
		if term == "" {
			continue
		}
		total++
		weight := tw.Weight
		if weight <= 0 {
			weight = 1.0
		}

		strength := matchStrength(content, term)
		if titleStrength := matchStrength(title, term); titleStrength > strength {
			strength = titleStrength
		}
		if strength > 0 {
			matched++
		}
		score += strength * weight
	}

	if score > 0 {
		score += MatchRatioBonus(matched, total)
		score += lengthBonus(len(item.Content))
	}
	return score
}

// matchStrength classifies how a term occurs in the text.
func matchStrength(text, term string) float64 {
	if text == term {
		return exactMatchScore
	}
	if !strings.Contains(text, term) {
		return 0
	}
	if containsPhrase(text, term) {
		return phraseMatchScore
	}
	return partialMatchScore
}

// containsPhrase reports whether term occurs in text bounded by non-word
// characters, so "rate" inside "separate" counts as partial, not phrase.
func containsPhrase(text, term string) bool {
	for start := 0; ; {
		idx := strings.Index(text[start:], term)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(term)
		before := idx == 0 || !isWordChar(text[idx-1])
		after := end == len(text) || !isWordChar(text[end])
		if before && after {
			return true
		}
		start = idx + 1
		if start >= len(text) {
			return false
		}
	}
}

func isWordChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// lengthBonus rewards substantive entries over stubs, capped so length can
// break ties but never outweigh a match tier.
func lengthBonus(length int) float64 {
	if length > contentLengthRef {
		length = contentLengthRef
	}
	return contentLengthBonusCap * float64(length) / contentLengthRef
}

// MatchRatioBonus rewards an item by the fraction of the term set it
// satisfied, so covering more of the query outranks matching a single
// term harder at equal strength.
func MatchRatioBonus(matched, total int) float64 {
	if total <= 0 || matched <= 0 {
		return 0
	}
	if matched > total {
		matched = total
	}
	return float64(matched) / float64(total)
}
