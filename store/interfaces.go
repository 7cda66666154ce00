package store

import "context"

// Repository persists result entries for one or more conversations.
// Implementations must be safe for concurrent use.
type Repository interface {
	// SaveEntry writes an entry. The entry's ResultID and ConversationID
	// must be set.
	SaveEntry(ctx context.Context, entry *Entry) error

	// GetEntry retrieves an entry by conversation and result id.
	// Returns ErrNotFound if the entry doesn't exist.
	GetEntry(ctx context.Context, conversationID, resultID string) (*Entry, error)

	// ListEntries returns all entries of a conversation in insertion
	// order.
	ListEntries(ctx context.Context, conversationID string) ([]*Entry, error)

	// SetStatus transitions an entry's lifecycle status.
	// Returns ErrNotFound if the entry doesn't exist.
	SetStatus(ctx context.Context, conversationID, resultID string, status Status) error

	// NextSequence returns the next monotonic sequence number for a tool
	// within a conversation, starting at 1.
	NextSequence(ctx context.Context, conversationID, toolName string) (uint64, error)

	// Close closes the repository and releases resources.
	Close() error
}
