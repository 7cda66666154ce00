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


package expand

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/poiesic/gnosis/ai"
	"github.com/poiesic/gnosis/core"
)

const (
	// DefaultDecay is the weight multiplier applied to expanded terms so
	// ranking prefers matches on the original condition.
	DefaultDecay = 0.7

	// DefaultCallTimeout bounds a single term-generation call.
	DefaultCallTimeout = 15 * time.Second

	// DefaultAutoStrategy is used when automatic expansion fires without
	// a caller-chosen strategy.
	DefaultAutoStrategy = core.ExpandSynonyms
)

// Expander generates additional search terms for conditions and merges
// them back as weighted sibling conditions.
type Expander struct {
	generator   ai.TermGenerator
	limiter     *rate.Limiter
	logger      *slog.Logger
	decay       float64
	callTimeout time.Duration
}

// Option configures an Expander.
type Option func(*Expander) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Expander) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger.With("component", "expander")
		return nil
	}
}

// WithRateLimit replaces the default generation rate limit.
func WithRateLimit(limiter *rate.Limiter) Option {
	return func(e *Expander) error {
		if limiter != nil {
			e.limiter = limiter
		}
		return nil
	}
}

// WithDecay sets the weight decay factor for expanded terms.
func WithDecay(decay float64) Option {
	return func(e *Expander) error {
		if decay <= 0 || decay > 1 {
			return ErrInvalidDecay
		}
		e.decay = decay
		return nil
	}
}

// WithCallTimeout sets the per-call deadline for term generation.
func WithCallTimeout(timeout time.Duration) Option {
	return func(e *Expander) error {
		if timeout <= 0 {
			return ErrInvalidTimeout
		}
		e.callTimeout = timeout
		return nil
	}
}

// NewExpander creates a new expander.
func NewExpander(generator ai.TermGenerator, opts ...Option) (*Expander, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	e := &Expander{
		generator:   generator,
		limiter:     rate.NewLimiter(rate.Limit(5), 5),
		logger:      slog.Default().With("component", "expander"),
		decay:       DefaultDecay,
		callTimeout: DefaultCallTimeout,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// ShouldExpand reports whether expansion fires for a search. It fires
// when the caller explicitly chose a strategy, or when automatic mode is
// active and the unexpanded result count fell below the threshold.
func ShouldExpand(strategy core.ExpansionStrategy, autoMode bool, resultCount, minThreshold int) bool {
	if strategy != core.ExpandNone {
		return true
	}
	return autoMode && resultCount < minThreshold
}

// Result carries the merged condition list after one expansion pass.
type Result struct {
	// Conditions holds the original conditions, each immediately followed
	// by its expanded siblings.
	Conditions []*core.Condition

	// Calls is the number of generation requests actually issued.
	Calls int

	// Warnings describes generation failures that were recovered from.
	Warnings []string
}

// Expand runs one expansion pass over the conditions. Originals are
// always kept; generation failures become warnings, never errors. The
// returned error is non-nil only when ctx is cancelled.
func (e *Expander) Expand(ctx context.Context, conds []*core.Condition, hints []string) (*Result, error) {
	res := &Result{Conditions: make([]*core.Condition, 0, len(conds))}

	for _, cond := range conds {
		res.Conditions = append(res.Conditions, cond)

		if cond.Expansion == core.ExpandNone {
			continue
		}
		if !expandable(cond) {
			e.logger.Debug("skipping expansion for unsupported condition",
				"kind", cond.Kind.String(), "value", cond.Value)
			continue
		}

		siblings := e.expandCondition(ctx, cond, hints, res)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		res.Conditions = append(res.Conditions, siblings...)
	}

	return res, nil
}

// expandable reports whether a condition kind supports term expansion.
// Regex and attribute conditions are already precise, and broadening a
// negated condition would narrow the search instead of widening it.
func expandable(cond *core.Condition) bool {
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

// generated is one expanded term with the strategies that produced it.
type generated struct {
	term       string
	strategies []string
}

func (e *Expander) expandCondition(ctx context.Context, cond *core.Condition, hints []string, res *Result) []*core.Condition {
	strategies, warn := resolveStrategies(cond)
	if warn != "" {
		res.Warnings = append(res.Warnings, warn)
	}
	if len(strategies) == 0 {
		return nil
	}

	terms := e.generate(ctx, cond, strategies, hints, res)
	if len(terms) == 0 {
		return nil
	}

	return e.siblings(cond, terms)
}

// generate issues one rate-limited, time-boxed call per strategy and
// collects the deduplicated terms.
func (e *Expander) generate(ctx context.Context, cond *core.Condition, strategies []core.ExpansionStrategy, hints []string, res *Result) []generated {
	seen := make(map[string]int)
	var out []generated

	for _, strategy := range strategies {
		if err := e.limiter.Wait(ctx); err != nil {
			return out
		}

		label := strategyLabel(cond, strategy)
		callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
		terms, err := e.generator.GenerateTerms(callCtx, cond.Value, strategy, hints)
		cancel()
		res.Calls++

		if err != nil {
			e.logger.Warn("term generation failed, continuing unexpanded",
				"strategy", label, "term", cond.Value, "err", err)
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("%s expansion failed for %q: %v", label, cond.Value, err))
			continue
		}

		for _, term := range terms {
			term = strings.TrimSpace(term)
			key := strings.ToLower(term)
			if key == "" || key == strings.ToLower(cond.Value) {
				continue
			}
			if idx, ok := seen[key]; ok {
				out[idx].strategies = appendUnique(out[idx].strategies, label)
				continue
			}
			seen[key] = len(out)
			out = append(out, generated{term: term, strategies: []string{label}})
		}
	}

	return out
}

// siblings creates one sibling condition per expanded term. The sibling
// keeps the original's kind, so reference expansions still match
// reference syntax, and carries the term and strategies as provenance.
func (e *Expander) siblings(cond *core.Condition, terms []generated) []*core.Condition {
	out := make([]*core.Condition, 0, len(terms))
	for _, g := range terms {
		out = append(out, &core.Condition{
			Kind:          cond.Kind,
			Value:         g.term,
			Match:         core.MatchContains,
			Weight:        cond.Weight * e.decay,
			MatchedTerm:   g.term,
			ExpansionUsed: g.strategies,
		})
	}
	return out
}

// resolveStrategies maps a condition's strategy to the generation calls
// to issue. ExpandAll chains the three semantic strategies; ExpandCustom
// passes the caller-supplied instruction through verbatim.
func resolveStrategies(cond *core.Condition) ([]core.ExpansionStrategy, string) {
	switch cond.Expansion {
	case core.ExpandAll:
		return core.SemanticStrategies(), ""
	case core.ExpandCustom:
		if strings.TrimSpace(cond.CustomStrategy) == "" {
			return nil, fmt.Sprintf("custom expansion for %q has no instruction", cond.Value)
		}
		return []core.ExpansionStrategy{core.ExpansionStrategy(cond.CustomStrategy)}, ""
	default:
		return []core.ExpansionStrategy{cond.Expansion}, ""
	}
}

// strategyLabel is the provenance name recorded in ExpansionUsed.
func strategyLabel(cond *core.Condition, strategy core.ExpansionStrategy) string {
	if cond.Expansion == core.ExpandCustom {
		return string(core.ExpandCustom)
	}
	return string(strategy)
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
