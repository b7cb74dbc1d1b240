// Package memstore persists the semantic answer cache as a single JSON blob.
// Every mutation rewrites the whole blob; the cache is bounded by distinct
// question volume, not request volume.
package memstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/origenlabs/origen/internal/db"
	"github.com/origenlabs/origen/internal/domain"
)

// store is the consumer interface for cache persistence.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
}

// Store reads and writes the answer cache blob.
type Store struct {
	kv     store
	key    string
	logger *zap.Logger
}

// New creates a memory store under keyPrefix.
func New(kv store, keyPrefix string, logger *zap.Logger) *Store {
	return &Store{kv: kv, key: keyPrefix + "memory", logger: logger}
}

// Load returns all persisted entries. A missing or corrupt blob yields an
// empty cache: the service logs and continues rather than failing requests.
func (s *Store) Load(ctx context.Context) ([]domain.MemoryEntry, error) {
	data, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load memory blob: %w", err)
	}

	var entries []domain.MemoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn("Discarding corrupt memory blob",
			zap.String("key", s.key), zap.Error(fmt.Errorf("%w: %w", domain.ErrCacheCorrupt, err)))
		return nil, nil
	}
	return entries, nil
}

// Save overwrites the cache blob with the full entry list.
func (s *Store) Save(ctx context.Context, entries []domain.MemoryEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal memory entries: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("save memory blob: %w", err)
	}
	return nil
}

// Drop removes the persisted cache.
func (s *Store) Drop(ctx context.Context) error {
	if err := s.kv.Del(ctx, s.key); err != nil {
		return fmt.Errorf("drop memory blob: %w", err)
	}
	return nil
}
