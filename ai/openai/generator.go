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


package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/poiesic/gnosis/ai"
	"github.com/poiesic/gnosis/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// TermGenerator implements ai.TermGenerator using OpenAI-compatible chat APIs.
type TermGenerator struct {
	client   llms.Model
	maxTerms int
	logger   *slog.Logger
}

// expansion is the wrapper structure for the LLM's JSON response.
type expansion struct {
	Terms []string `json:"terms"`
}

// newTermGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newTermGenerator(config *ai.Config) (*TermGenerator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't
	// require authentication.
	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken("none"),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	return &TermGenerator{
		client:   client,
		maxTerms: config.MaxTerms,
		logger:   slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewTermGenerator creates a new term generator using the provided configuration.
//
// Returns ai.TermGenerator interface to enforce abstraction.
func NewTermGenerator(config *ai.Config) (ai.TermGenerator, error) {
	return newTermGenerator(config)
}

// GenerateTerms produces alternative search terms for the strategy.
// The model is asked for strict JSON; malformed responses are retried up to
// 3 times with light repair in between.
func (g *TermGenerator) GenerateTerms(ctx context.Context, term string, strategy core.ExpansionStrategy, hints []string) ([]string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []string{}, nil
	}

	systemPrompt, err := buildSystemPrompt(strategy, g.maxTerms)
	if err != nil {
		return nil, err
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(systemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(buildUserPrompt(term, hints)),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result expansion
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := g.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			g.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			g.logger.Debug("no choices returned from model")
			return []string{}, nil
		}

		choice := response.Choices[0]

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(choice.Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			g.logger.Warn("error parsing generator response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		// Success
		lastErr = nil
		break
	}

	if lastErr != nil {
		g.logger.Error("failed to parse generator response after retries", "err", lastErr)
		return nil, lastErr
	}

	// Deduplicate, drop the input term itself, cap at maxTerms.
	seen := map[string]bool{strings.ToLower(term): true}
	terms := make([]string, 0, len(result.Terms))
	for _, t := range result.Terms {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		terms = append(terms, t)
		if len(terms) >= g.maxTerms {
			break
		}
	}

	g.logger.Debug("generated terms",
		"term", term,
		"strategy", string(strategy),
		"count", len(terms))

	return terms, nil
}
