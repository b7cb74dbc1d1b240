// Package docs loads plain-text knowledge documents from a directory.
// Format extraction (PDF, DOCX, OCR) is an upstream concern; this store only
// reads text that is already plain.
package docs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/origenlabs/origen/internal/domain"
)

// textExtensions are the file types read as plain text.
var textExtensions = map[string]struct{}{
	".txt": {},
	".md":  {},
}

// Store reads documents from a knowledge directory.
type Store struct {
	dir    string
	logger *zap.Logger
}

// New creates a document store over dir.
func New(dir string, logger *zap.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// Load reads all text documents, sorted by file name for a stable id order.
// A missing directory yields an empty set, not an error.
func (s *Store) Load() ([]domain.Document, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("Knowledge directory does not exist", zap.String("dir", s.dir))
			return nil, nil
		}
		return nil, fmt.Errorf("read knowledge directory: %w", err)
	}

	var docs []domain.Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := textExtensions[ext]; !ok {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			s.logger.Warn("Skipping unreadable document",
				zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			continue
		}
		docs = append(docs, domain.Document{ID: entry.Name(), Text: text})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}
