// Package file implements db.Store on the local filesystem. Each key maps to
// one file under the data directory; writes go through a temp file and rename
// so readers never observe a torn blob.
package file

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/origenlabs/origen/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Store persists blobs as files under a single directory.
type Store struct {
	dir string
}

// NewStore creates the data directory if needed and returns a file store.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Get reads the blob stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return data, nil
}

// Set writes the blob atomically via temp file + rename.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	target := s.path(key)
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	tmpName := tmp.Name()
	if _, err = tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &db.Error{Op: db.OpSet, Err: err}
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &db.Error{Op: db.OpSet, Err: err}
	}
	if err = os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// Del removes the blob. Deleting a missing key is not an error.
func (s *Store) Del(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// Ping checks that the data directory is still accessible.
func (s *Store) Ping(_ context.Context) error {
	if _, err := os.Stat(s.dir); err != nil {
		return fmt.Errorf("stat data directory: %w", err)
	}
	return nil
}

// Close is a no-op for the file store.
func (s *Store) Close() {}

// WaitForReady checks directory accessibility once; the filesystem has no
// startup latency worth polling for.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// path maps a key to a file name. Keys containing path separators or other
// unsafe characters are hashed instead of used verbatim.
func (s *Store) path(key string) string {
	if strings.ContainsAny(key, "/\\:") || key == "" || key == "." || key == ".." {
		h := sha256.Sum256([]byte(key))
		key = hex.EncodeToString(h[:])
	}
	return filepath.Join(s.dir, key)
}
