// Package indexstore persists the embedding index as a single JSON blob.
package indexstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/origenlabs/origen/internal/db"
	"github.com/origenlabs/origen/internal/domain"
)

// store is the consumer interface for index persistence.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
}

// Store reads and writes the index blob.
type Store struct {
	kv     store
	key    string
	logger *zap.Logger
}

// New creates an index store under keyPrefix.
func New(kv store, keyPrefix string, logger *zap.Logger) *Store {
	return &Store{kv: kv, key: keyPrefix + "index", logger: logger}
}

// Load returns the persisted index, or ok=false when absent. A corrupt blob
// is treated as absent so the caller regenerates instead of crashing.
func (s *Store) Load(ctx context.Context) (domain.Index, bool, error) {
	data, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Index{}, false, nil
		}
		return domain.Index{}, false, fmt.Errorf("load index blob: %w", err)
	}

	var ix domain.Index
	if err := json.Unmarshal(data, &ix); err != nil {
		s.logger.Warn("Discarding corrupt index blob",
			zap.String("key", s.key), zap.Error(fmt.Errorf("%w: %w", domain.ErrCacheCorrupt, err)))
		return domain.Index{}, false, nil
	}
	return ix, true, nil
}

// Save overwrites the index blob.
func (s *Store) Save(ctx context.Context, ix domain.Index) error {
	data, err := json.Marshal(ix)
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("save index blob: %w", err)
	}
	return nil
}

// Drop removes the persisted index.
func (s *Store) Drop(ctx context.Context) error {
	if err := s.kv.Del(ctx, s.key); err != nil {
		return fmt.Errorf("drop index blob: %w", err)
	}
	return nil
}
