package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/gnosis/core"
	"github.com/poiesic/gnosis/store"
)

func setupRepo(t *testing.T) store.Repository {
	t.Helper()
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func makeEntry(conversationID, resultID string, turn int) *store.Entry {
	return &store.Entry{
		ResultID:       resultID,
		ConversationID: conversationID,
		ToolName:       "search",
		Purpose:        store.PurposeFinal,
		Status:         store.StatusActive,
		Turn:           turn,
		Timestamp:      time.Now().UTC(),
		Data: []*core.ResultItem{
			{Id: 11, ParentNodeId: 10, IsEntry: true, Content: "stored content"},
		},
	}
}

func TestResultRepositoryBasics(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	entry := makeEntry("conv-1", "search_001", 1)
	if err := repo.SaveEntry(ctx, entry); err != nil {
		t.Fatalf("Failed to save entry: %v", err)
	}

	retrieved, err := repo.GetEntry(ctx, "conv-1", "search_001")
	if err != nil {
		t.Fatalf("Failed to get entry: %v", err)
	}
	if retrieved.ToolName != "search" {
		t.Fatalf("Expected tool 'search', got %q", retrieved.ToolName)
	}
	if len(retrieved.Data) != 1 || retrieved.Data[0].Content != "stored content" {
		t.Fatalf("Stored data did not round-trip: %+v", retrieved.Data)
	}

	if _, err := repo.GetEntry(ctx, "conv-1", "search_999"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetEntry(ctx, "conv-2", "search_001"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Conversations must not share entries, got %v", err)
	}
}

func TestResultRepositoryListOrder(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	base := time.Now().UTC()
	ids := []string{"search_001", "combine_001", "search_002"}
	for i, id := range ids {
		entry := makeEntry("conv-1", id, 1)
		entry.Timestamp = base.Add(time.Duration(i) * time.Second)
		if err := repo.SaveEntry(ctx, entry); err != nil {
			t.Fatalf("Failed to save %s: %v", id, err)
		}
	}

	entries, err := repo.ListEntries(ctx, "conv-1")
	if err != nil {
		t.Fatalf("Failed to list entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	for i, id := range ids {
		if entries[i].ResultID != id {
			t.Fatalf("Expected %s at position %d, got %s", id, i, entries[i].ResultID)
		}
	}
}

func TestResultRepositorySetStatus(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if err := repo.SaveEntry(ctx, makeEntry("conv-1", "search_001", 1)); err != nil {
		t.Fatalf("Failed to save entry: %v", err)
	}

	if err := repo.SetStatus(ctx, "conv-1", "search_001", store.StatusStale); err != nil {
		t.Fatalf("Failed to set status: %v", err)
	}

	entry, err := repo.GetEntry(ctx, "conv-1", "search_001")
	if err != nil {
		t.Fatalf("Failed to get entry: %v", err)
	}
	if entry.Status != store.StatusStale {
		t.Fatalf("Expected stale status, got %v", entry.Status)
	}

	if err := repo.SetStatus(ctx, "conv-1", "search_999", store.StatusStale); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestResultRepositorySequences(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	for want := uint64(1); want <= 3; want++ {
		got, err := repo.NextSequence(ctx, "conv-1", "search")
		if err != nil {
			t.Fatalf("Failed to get sequence: %v", err)
		}
		if got != want {
			t.Fatalf("Expected sequence %d, got %d", want, got)
		}
	}

	// Separate tool and conversation sequences are independent
	got, err := repo.NextSequence(ctx, "conv-1", "combine")
	if err != nil {
		t.Fatalf("Failed to get sequence: %v", err)
	}
	if got != 1 {
		t.Fatalf("Expected combine sequence 1, got %d", got)
	}

	got, err = repo.NextSequence(ctx, "conv-2", "search")
	if err != nil {
		t.Fatalf("Failed to get sequence: %v", err)
	}
	if got != 1 {
		t.Fatalf("Expected conv-2 sequence 1, got %d", got)
	}
}
