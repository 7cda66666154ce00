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

import "github.com/poiesic/gnosis/ai"

// MockProvider is a test double for ai.Provider.
type MockProvider struct {
	generator *MockTermGenerator
}

// NewMockProvider creates a mock provider with a default mock generator.
//
// Returns ai.Provider interface for consistency with production
// constructors. Use GetMockGenerator() to access the concrete type for
// test assertions.
func NewMockProvider() ai.Provider {
	return &MockProvider{generator: NewMockTermGenerator()}
}

// NewMockProviderWithGenerator creates a mock provider around a custom
// mock generator.
func NewMockProviderWithGenerator(generator *MockTermGenerator) ai.Provider {
	return &MockProvider{generator: generator}
}

// TermGenerator returns the mock generator.
func (p *MockProvider) TermGenerator() ai.TermGenerator {
	return p.generator
}

// GetMockGenerator returns the concrete mock generator for assertions.
func (p *MockProvider) GetMockGenerator() *MockTermGenerator {
	return p.generator
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}
