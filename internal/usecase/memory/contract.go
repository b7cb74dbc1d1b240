package memory

import (
	"context"

	"github.com/origenlabs/origen/internal/domain"
)

// Store defines the persistence contract for the answer cache.
type Store interface {
	Load(ctx context.Context) ([]domain.MemoryEntry, error)
	Save(ctx context.Context, entries []domain.MemoryEntry) error
	Drop(ctx context.Context) error
}

// Embedder vectorizes questions for cache lookup and insertion.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
