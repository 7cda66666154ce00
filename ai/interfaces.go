package ai

import (
	"context"

	"github.com/poiesic/gnosis/core"
)

// TermGenerator produces alternative search terms for a given term and
// expansion strategy. Implementations must be thread-safe for concurrent use.
type TermGenerator interface {
	// GenerateTerms returns candidate terms for the strategy: typo and
	// morphological variants for fuzzy, synonyms, related concepts or
	// broader categories for the semantic strategies. hints carries
	// conversation context that helps disambiguate the term; it may be
	// empty. The input term itself is never included in the result.
	// Returns an empty slice when no useful terms exist.
	GenerateTerms(ctx context.Context, term string, strategy core.ExpansionStrategy, hints []string) ([]string, error)
}

// Provider aggregates AI services for convenient initialization and
// lifecycle management.
type Provider interface {
	// TermGenerator returns the term-generation service.
	// The returned generator is safe for concurrent use.
	TermGenerator() TermGenerator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
