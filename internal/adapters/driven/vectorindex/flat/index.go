// Package flat provides an exact, in-memory vector index persisted as a
// single binary file.
//
// Search compares the query against every stored vector with cosine
// similarity. Results are ordered by score, and equal scores keep the order
// in which entries were added, so searches are deterministic.
package flat

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/wikichat/internal/core/domain"
	"github.com/custodia-labs/wikichat/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// errClosed is returned by operations on a closed index.
var errClosed = errors.New("flat: index is closed")

type entry struct {
	chunk  domain.Chunk
	vector []float32
	norm   float64
}

// Index is an exact cosine-similarity index.
type Index struct {
	mu        sync.RWMutex
	dimension int
	entries   []entry
	closed    bool
}

// New creates an empty index for vectors of the given dimension.
func New(dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", domain.ErrInvalidInput, dimension)
	}
	return &Index{dimension: dimension}, nil
}

// Add appends entries in order. Either all entries are added or none.
func (idx *Index) Add(ctx context.Context, entries []domain.EmbeddedChunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	batch := make([]entry, 0, len(entries))
	for _, e := range entries {
		if len(e.Vector) != idx.dimension {
			return &domain.DimensionMismatchError{Expected: idx.dimension, Actual: len(e.Vector)}
		}
		vec := make([]float32, len(e.Vector))
		copy(vec, e.Vector)
		batch = append(batch, entry{chunk: e.Chunk, vector: vec, norm: norm(vec)})
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return errClosed
	}
	idx.entries = append(idx.entries, batch...)
	return nil
}

// Search returns the min(k, Len()) entries most similar to query.
func (idx *Index) Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(query) != idx.dimension {
		return nil, &domain.DimensionMismatchError{Expected: idx.dimension, Actual: len(query)}
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.closed {
		return nil, errClosed
	}
	if k <= 0 || len(idx.entries) == 0 {
		return nil, nil
	}

	qnorm := norm(query)
	scored := make([]domain.ScoredChunk, len(idx.entries))
	for i, e := range idx.entries {
		scored[i] = domain.ScoredChunk{
			Chunk: e.chunk,
			Score: cosine(query, qnorm, e.vector, e.norm),
		}
	}

	// Stable sort keeps insertion order among equal scores
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k < len(scored) {
		scored = scored[:k]
	}
	return scored, nil
}

// Len returns the number of indexed entries.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Dimensions returns the vector size.
func (idx *Index) Dimensions() int {
	return idx.dimension
}

// Save writes the index to path.
func (idx *Index) Save(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.closed {
		return errClosed
	}
	return writeFile(path, idx.dimension, idx.entries)
}

// Close releases the stored vectors.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.entries = nil
	idx.closed = true
	return nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosine returns 0 when either vector has zero length.
func cosine(a []float32, anorm float64, b []float32, bnorm float64) float64 {
	if anorm == 0 || bnorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (anorm * bnorm)
}
