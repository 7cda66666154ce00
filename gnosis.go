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


package gnosis

import (
	"log/slog"

	"github.com/poiesic/gnosis/ai"
	"github.com/poiesic/gnosis/ai/openai"
	"github.com/poiesic/gnosis/expand"
	"github.com/poiesic/gnosis/graph"
	"github.com/poiesic/gnosis/results"
	"github.com/poiesic/gnosis/search"
	"github.com/poiesic/gnosis/store"
	"github.com/poiesic/gnosis/store/badger"
)

// System wires the result store and the AI provider together and builds
// search engines over a caller-supplied graph store. The graph itself is
// external; gnosis only queries it.
type System struct {
	backend    *badger.Backend
	store      *store.Store
	provider   ai.Provider
	processors []*results.Processor
	logger     *slog.Logger
}

// SystemOption configures a System.
type SystemOption func(*systemOptions)

type systemOptions struct {
	aiConfig       *ai.Config
	provider       ai.Provider
	inMemory       bool
	conversationID string
}

// WithAIConfig sets the term-generation service configuration.
func WithAIConfig(cfg *ai.Config) SystemOption {
	return func(o *systemOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithProvider replaces the AI provider entirely, e.g. with a mock.
// Takes precedence over WithAIConfig.
func WithProvider(provider ai.Provider) SystemOption {
	return func(o *systemOptions) {
		o.provider = provider
	}
}

// WithInMemory opens the result store in memory, for tests and ephemeral
// sessions.
func WithInMemory() SystemOption {
	return func(o *systemOptions) {
		o.inMemory = true
	}
}

// WithConversationID resumes an existing conversation instead of starting
// a new one.
func WithConversationID(id string) SystemOption {
	return func(o *systemOptions) {
		o.conversationID = id
	}
}

// Open opens the result store at filePath and initializes the AI provider.
func Open(filePath string, opts ...SystemOption) (*System, error) {
	options := &systemOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	repo, err := badger.NewResultRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	storeOpts := []store.Option{}
	if options.conversationID != "" {
		storeOpts = append(storeOpts, store.WithConversationID(options.conversationID))
	}
	st, err := store.New(repo, storeOpts...)
	if err != nil {
		repo.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			st.Close()
			backend.Close()
			return nil, err
		}
	}

	return &System{
		backend:  backend,
		store:    st,
		provider: provider,
		logger:   slog.Default(),
	}, nil
}

// Store returns the result lifecycle store.
func (s *System) Store() *store.Store {
	return s.store
}

// Provider returns the AI provider.
func (s *System) Provider() ai.Provider {
	return s.provider
}

// NewEngine builds a search engine over the given graph store. The
// engine's processor is owned by the System and released on Close.
func (s *System) NewEngine(g graph.Store, opts ...search.Option) (*search.Engine, error) {
	processor, err := results.NewProcessor(g)
	if err != nil {
		return nil, err
	}

	expander, err := expand.NewExpander(s.provider.TermGenerator())
	if err != nil {
		processor.Release()
		return nil, err
	}

	engineOpts := append([]search.Option{search.WithExpander(expander)}, opts...)
	engine, err := search.NewEngine(g, processor, s.store, engineOpts...)
	if err != nil {
		processor.Release()
		return nil, err
	}

	s.processors = append(s.processors, processor)
	return engine, nil
}

// Close shuts the provider, processors, store and backend down.
func (s *System) Close() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	for _, processor := range s.processors {
		processor.Release()
	}

	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing result store", "err", err)
		return err
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
