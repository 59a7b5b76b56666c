package driven

import (
	"context"

	"github.com/custodia-labs/wikichat/internal/core/domain"
)

// VectorIndex provides exact nearest neighbour search over embedded chunks.
// An index holds vectors of a single dimensionality.
type VectorIndex interface {
	// Add appends entries in order. Entries whose vector length differs
	// from Dimensions fail with domain.ErrDimensionMismatch.
	Add(ctx context.Context, entries []domain.EmbeddedChunk) error

	// Search returns up to k chunks nearest to the query vector, nearest
	// first. Equal scores keep insertion order.
	Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error)

	// Len returns the number of indexed entries.
	Len() int

	// Dimensions returns the vector size of the index.
	Dimensions() int

	// Save persists the index to a single file at path.
	Save(ctx context.Context, path string) error

	// Close releases resources.
	Close() error
}

// VectorIndexStore creates and manages persisted vector indexes.
type VectorIndexStore interface {
	// New returns an empty index for vectors of the given size.
	New(dimensions int) (VectorIndex, error)

	// Load reads the index at path. It fails with domain.ErrIndexNotFound
	// when nothing exists there and domain.ErrDimensionMismatch when the
	// stored vectors do not have the expected size.
	Load(ctx context.Context, path string, dimensions int) (VectorIndex, error)

	// Exists returns true if an index file exists at path.
	Exists(path string) bool

	// Delete removes the index at path. Returns false if nothing existed.
	Delete(path string) (bool, error)
}
