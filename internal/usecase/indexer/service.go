// Package indexer owns the embedding index: chunking, staleness detection,
// regeneration, and persistence.
package indexer

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/origenlabs/origen/internal/domain"
)

// StrategyTag identifies the current chunking strategy. An index persisted
// under a different tag is stale regardless of its parameters.
const StrategyTag = "chunks_v1"

// Service builds and serves the embedding index.
type Service struct {
	// mu serializes load-or-regenerate sequences: staleness check plus
	// persistence write must be atomic with respect to concurrent readers.
	mu sync.Mutex

	store Store
	embed Embedder

	chunkSize    int
	chunkOverlap int

	cached *domain.Index
	logger *zap.Logger
}

// New creates an index service with the given chunking configuration.
func New(store Store, embed Embedder, chunkSize, chunkOverlap int, logger *zap.Logger) *Service {
	return &Service{
		store:        store,
		embed:        embed,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		logger:       logger,
	}
}

// GetOrBuild returns a fresh index for the given documents, regenerating and
// persisting it when the stored one is absent, was built with different
// chunking parameters, or no longer covers the current document set. The
// persistence write happens only on regeneration, never on a fresh-hit read.
func (s *Service) GetOrBuild(ctx context.Context, docs []domain.Document) (*domain.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && s.cached.Fresh(StrategyTag, s.chunkSize, s.chunkOverlap, docs) {
		return s.cached, nil
	}

	stored, ok, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("Failed to load persisted index, rebuilding", zap.Error(err))
	} else if ok && stored.Fresh(StrategyTag, s.chunkSize, s.chunkOverlap, docs) {
		s.logger.Info("Using persisted embedding index", zap.Int("fragments", len(stored.Fragments)))
		s.cached = &stored
		return s.cached, nil
	}

	ix, err := s.rebuild(ctx, docs)
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, *ix); err != nil {
		// The in-memory index is still valid; persistence catches up on the
		// next regeneration.
		s.logger.Warn("Failed to persist embedding index", zap.Error(err))
	}

	s.cached = ix
	return ix, nil
}

// Invalidate drops the in-memory copy so the next GetOrBuild revalidates
// against the store and the current document set.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
}

// rebuild chunks every document and embeds all chunks in one batch.
func (s *Service) rebuild(ctx context.Context, docs []domain.Document) (*domain.Index, error) {
	var texts []string
	var sourceIDs []string
	for _, doc := range docs {
		for _, c := range Chunk(doc.Text, s.chunkSize, s.chunkOverlap) {
			texts = append(texts, c)
			sourceIDs = append(sourceIDs, doc.ID)
		}
	}

	ix := &domain.Index{
		StrategyTag:  StrategyTag,
		ChunkSize:    s.chunkSize,
		ChunkOverlap: s.chunkOverlap,
	}

	if len(texts) == 0 {
		s.logger.Warn("No documents to index")
		return ix, nil
	}

	s.logger.Info("Regenerating embedding index",
		zap.Int("documents", len(docs)), zap.Int("chunks", len(texts)))

	var res domain.BatchEmbeddingResult
	var err error
	if be, ok := s.embed.(domain.BatchEmbedder); ok {
		res, err = be.BatchEmbed(ctx, texts)
	} else {
		res, err = domain.BatchFallback(ctx, s.embed, texts)
	}
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w: %w", err, domain.ErrIndexUnavailable)
	}

	ix.Fragments = make([]domain.Fragment, len(texts))
	for i := range texts {
		ix.Fragments[i] = domain.Fragment{
			SourceID: sourceIDs[i],
			Text:     texts[i],
			Vector:   res.Embeddings[i],
		}
	}

	return ix, nil
}
