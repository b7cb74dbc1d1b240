// Package memory implements the semantic answer cache: near-duplicate
// questions are answered from previously generated answers instead of a new
// generation round trip.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/origenlabs/origen/internal/domain"
	"github.com/origenlabs/origen/internal/metrics"
)

// Params holds cache tuning.
type Params struct {
	// SimilarityThreshold is the minimum cosine similarity for a hit.
	SimilarityThreshold float64
	// NegativeMarkers are lowercase substrings identifying non-answers;
	// answers containing one are never cached.
	NegativeMarkers []string
}

// Stats is a point-in-time cache summary.
type Stats struct {
	Entries   int     `json:"entries"`
	TotalHits int     `json:"total_hits"`
	Threshold float64 `json:"threshold"`
}

// Service is the semantic answer cache.
type Service struct {
	// mu guards entries: lookups mutate usage accounting in place.
	mu sync.Mutex

	store  Store
	embed  Embedder
	params Params
	logger *zap.Logger

	// entries is lazily loaded on first use and kept authoritative in
	// memory; the store only sees full-blob writes.
	entries []domain.MemoryEntry
	loaded  bool
}

// New creates an answer cache service.
func New(store Store, embed Embedder, params Params, logger *zap.Logger) *Service {
	return &Service{store: store, embed: embed, params: params, logger: logger}
}

// Lookup returns the cached answer whose question vector is most similar to
// the incoming question, provided the similarity clears the threshold. A hit
// bumps the entry's usage accounting and persists it; accounting failures are
// logged, never surfaced.
func (s *Service) Lookup(ctx context.Context, question string) (answer string, score float64, hit bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return "", 0, false, err
	}
	if len(s.entries) == 0 {
		metrics.MemoryCacheTotal.WithLabelValues("miss").Inc()
		return "", 0, false, nil
	}

	res, err := s.embed.Embed(ctx, question)
	if err != nil {
		return "", 0, false, err
	}
	qv := normalize(res.Embedding)
	if qv == nil {
		metrics.MemoryCacheTotal.WithLabelValues("miss").Inc()
		return "", 0, false, nil
	}

	best := -1
	bestScore := -1.0
	for i := range s.entries {
		if sc := dot(qv, s.entries[i].Vector); sc > bestScore {
			bestScore = sc
			best = i
		}
	}

	if best < 0 || bestScore < s.params.SimilarityThreshold {
		metrics.MemoryCacheTotal.WithLabelValues("miss").Inc()
		return "", bestScore, false, nil
	}

	e := &s.entries[best]
	e.UsageCount++
	e.LastUsedAt = time.Now().UTC()
	e.LastScore = bestScore
	if err := s.store.Save(ctx, s.entries); err != nil {
		s.logger.Warn("Failed to persist cache usage accounting", zap.Error(err))
	}

	metrics.MemoryCacheTotal.WithLabelValues("hit").Inc()
	s.logger.Debug("Answer cache hit",
		zap.Float64("score", bestScore), zap.String("cached_question", e.Question))
	return e.Answer, bestScore, true, nil
}

// Insert caches an answer for a question. Empty answers and answers carrying
// a negative marker are silently dropped so refusals and failures never
// become reusable answers. An entry for the same exact question is replaced.
func (s *Service) Insert(ctx context.Context, question, answer string) error {
	if s.IsNegative(answer) {
		metrics.MemoryCacheTotal.WithLabelValues("negative").Inc()
		s.logger.Debug("Skipping cache insert of negative answer")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	res, err := s.embed.Embed(ctx, question)
	if err != nil {
		return err
	}
	qv := normalize(res.Embedding)
	if qv == nil {
		return nil
	}

	now := time.Now().UTC()
	entry := domain.MemoryEntry{
		Question:  strings.TrimSpace(question),
		Answer:    answer,
		Vector:    qv,
		CreatedAt: now,
	}

	replaced := false
	for i := range s.entries {
		if s.entries[i].Question == entry.Question {
			entry.CreatedAt = s.entries[i].CreatedAt
			entry.UsageCount = s.entries[i].UsageCount
			s.entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		s.entries = append(s.entries, entry)
	}

	return s.store.Save(ctx, s.entries)
}

// IsNegative reports whether an answer must never be cached: empty text or
// any configured negative marker as a case-insensitive substring.
func (s *Service) IsNegative(answer string) bool {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, marker := range s.params.NegativeMarkers {
		if marker != "" && strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Stats summarizes the current cache contents.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return Stats{}, err
	}
	st := Stats{Entries: len(s.entries), Threshold: s.params.SimilarityThreshold}
	for i := range s.entries {
		st.TotalHits += s.entries[i].UsageCount
	}
	return st, nil
}

// Clear empties the cache in memory and in the store.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	s.loaded = true
	return s.store.Drop(ctx)
}

func (s *Service) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	entries, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	// Entries persisted by older builds may carry unnormalized vectors.
	kept := entries[:0]
	for _, e := range entries {
		if v := normalize(e.Vector); v != nil {
			e.Vector = v
			kept = append(kept, e)
		}
	}
	s.entries = kept
	s.loaded = true
	return nil
}
