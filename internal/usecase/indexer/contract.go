package indexer

import (
	"context"

	"github.com/origenlabs/origen/internal/domain"
)

// Store defines the persistence contract for the embedding index.
type Store interface {
	Load(ctx context.Context) (domain.Index, bool, error)
	Save(ctx context.Context, ix domain.Index) error
}

// Embedder vectorizes chunk text. Implementations supporting
// domain.BatchEmbedder are used with one call per rebuild.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
