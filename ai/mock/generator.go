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


package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/poiesic/gnosis/ai"
	"github.com/poiesic/gnosis/core"
)

// MockTermGenerator is a test double for ai.TermGenerator.
type MockTermGenerator struct {
	// GenerateTermsFunc overrides the default behavior when set.
	GenerateTermsFunc func(ctx context.Context, term string, strategy core.ExpansionStrategy, hints []string) ([]string, error)

	mu        sync.Mutex
	callCount int
	calls     []GeneratorCall
}

// GeneratorCall records the arguments of one GenerateTerms invocation.
type GeneratorCall struct {
	Term     string
	Strategy core.ExpansionStrategy
	Hints    []string
}

// NewMockTermGenerator creates a mock generator with default behavior.
// Note: Returns concrete type to allow test assertions via CallCount().
func NewMockTermGenerator() *MockTermGenerator {
	return &MockTermGenerator{}
}

// GenerateTerms returns deterministic variants of the input term.
// Default behavior: lowercased, pluralized, and a strategy-suffixed
// variant, deduplicated against the input.
func (m *MockTermGenerator) GenerateTerms(ctx context.Context, term string, strategy core.ExpansionStrategy, hints []string) ([]string, error) {
	m.mu.Lock()
	m.callCount++
	m.calls = append(m.calls, GeneratorCall{Term: term, Strategy: strategy, Hints: hints})
	fn := m.GenerateTermsFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, term, strategy, hints)
	}

	lower := strings.ToLower(term)
	variants := []string{lower, lower + "s", lower + " " + string(strategy)}

	out := make([]string, 0, len(variants))
	for _, v := range variants {
		if !strings.EqualFold(v, term) {
			out = append(out, v)
		}
	}
	return out, nil
}

// CallCount returns the number of times GenerateTerms was called.
func (m *MockTermGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Calls returns a copy of the recorded invocations.
func (m *MockTermGenerator) Calls() []GeneratorCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]GeneratorCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Reset clears the call history and custom function.
func (m *MockTermGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.calls = nil
	m.GenerateTermsFunc = nil
}

var _ ai.TermGenerator = (*MockTermGenerator)(nil)
