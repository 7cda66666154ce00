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


package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/poiesic/gnosis/core"
)

// Store is the result lifecycle store for one conversation. The agent
// loop invokes tools sequentially, so cross-turn access is not
// concurrent; the internal lock only guards the turn counter against
// incidental concurrent reads.
type Store struct {
	repo           Repository
	logger         *slog.Logger
	conversationID string

	mu   sync.Mutex
	turn int
}

// Option configures a Store.
type Option func(*Store) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "store")
		return nil
	}
}

// WithConversationID resumes an existing conversation handle instead of
// generating a fresh one.
func WithConversationID(id string) Option {
	return func(s *Store) error {
		if id != "" {
			s.conversationID = id
		}
		return nil
	}
}

// New creates a store bound to a new conversation handle.
func New(repo Repository, opts ...Option) (*Store, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}

	s := &Store{
		repo:           repo,
		logger:         slog.Default().With("component", "store"),
		conversationID: uuid.NewString(),
		turn:           1,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// ConversationID returns the conversation handle.
func (s *Store) ConversationID() string {
	return s.conversationID
}

// Turn returns the current conversation turn.
func (s *Store) Turn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn
}

// BeginTurn advances the conversation to the next turn and returns it.
func (s *Store) BeginTurn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turn++
	return s.turn
}

// Put stores a result set and returns its stable identifier. Identifiers
// are monotonic per tool within the conversation: search_001, search_002.
func (s *Store) Put(ctx context.Context, toolName string, data []*core.ResultItem, purpose Purpose) (string, error) {
	return s.PutTruncated(ctx, toolName, data, purpose, false)
}

// PutTruncated stores a result set that is a capped subset of the true
// result set, preserving the truncation marker for later views.
func (s *Store) PutTruncated(ctx context.Context, toolName string, data []*core.ResultItem, purpose Purpose, truncated bool) (string, error) {
	if toolName == "" {
		return "", ErrEmptyToolName
	}
	if purpose != PurposeIntermediate && purpose != PurposeFinal {
		return "", ErrInvalidPurpose
	}

	seq, err := s.repo.NextSequence(ctx, s.conversationID, toolName)
	if err != nil {
		return "", err
	}

	entry := &Entry{
		ResultID:       fmt.Sprintf("%s_%03d", toolName, seq),
		ConversationID: s.conversationID,
		ToolName:       toolName,
		Purpose:        purpose,
		Status:         StatusActive,
		Turn:           s.Turn(),
		Timestamp:      time.Now().UTC(),
		Truncated:      truncated,
		Data:           data,
	}

	if err := s.repo.SaveEntry(ctx, entry); err != nil {
		return "", err
	}

	s.logger.Debug("stored result set",
		"resultId", entry.ResultID, "items", len(data), "purpose", purpose.String())
	return entry.ResultID, nil
}

// Get retrieves a stored entry by its identifier.
func (s *Store) Get(ctx context.Context, resultID string) (*Entry, error) {
	return s.repo.GetEntry(ctx, s.conversationID, resultID)
}

// List returns every entry of the conversation in insertion order.
func (s *Store) List(ctx context.Context) ([]*Entry, error) {
	return s.repo.ListEntries(ctx, s.conversationID)
}

// ScopeFrom resolves a stored result set into the node and entry ids it
// references, for narrowing a follow-up query to "those results" without
// re-scanning the graph.
func (s *Store) ScopeFrom(ctx context.Context, resultID string) (nodeIDs, entryIDs []core.ID, err error) {
	entry, err := s.Get(ctx, resultID)
	if err != nil {
		return nil, nil, err
	}

	seenNodes := make(map[core.ID]bool)
	seenEntries := make(map[core.ID]bool)
	for _, item := range entry.Data {
		nodeID := item.ParentNodeId
		if !item.IsEntry {
			nodeID = item.Id
		} else if !seenEntries[item.Id] {
			seenEntries[item.Id] = true
			entryIDs = append(entryIDs, item.Id)
		}
		if nodeID != 0 && !seenNodes[nodeID] {
			seenNodes[nodeID] = true
			nodeIDs = append(nodeIDs, nodeID)
		}
	}
	return nodeIDs, entryIDs, nil
}

// MarkTurnStale marks every entry produced in the given turn as stale.
// Used when a new turn invalidates the selection earlier entries were
// built from. Entries are never deleted; stale entries simply stop being
// offered as scopes.
func (s *Store) MarkTurnStale(ctx context.Context, turn int) error {
	entries, err := s.repo.ListEntries(ctx, s.conversationID)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.Turn != turn || entry.Status == StatusStale {
			continue
		}
		if err := s.repo.SetStatus(ctx, s.conversationID, entry.ResultID, StatusStale); err != nil {
			return err
		}
		s.logger.Debug("marked entry stale", "resultId", entry.ResultID, "turn", turn)
	}
	return nil
}

// Close closes the underlying repository.
func (s *Store) Close() error {
	return s.repo.Close()
}
