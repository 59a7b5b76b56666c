package flat

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/custodia-labs/wikichat/internal/core/ports/driven"
	"github.com/custodia-labs/wikichat/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorIndexStore = (*Store)(nil)

// Store creates flat indexes and manages their files.
type Store struct{}

// NewStore returns a flat index store.
func NewStore() *Store {
	return &Store{}
}

// New returns an empty index.
func (s *Store) New(dimensions int) (driven.VectorIndex, error) {
	return New(dimensions)
}

// Load reads the index file at path. A dimensions value of zero accepts
// whatever the file holds.
func (s *Store) Load(ctx context.Context, path string, dimensions int) (driven.VectorIndex, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dims, entries, err := readFile(path, dimensions)
	if err != nil {
		return nil, err
	}

	logger.Debug("flat: loaded %d vectors of %d dimensions from %s", len(entries), dims, path)
	return &Index{dimension: dims, entries: entries}, nil
}

// Exists reports whether an index file is present at path.
func (s *Store) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Delete removes the index file at path.
func (s *Store) Delete(path string) (bool, error) {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("deleting index: %w", err)
	}
	return true, nil
}
