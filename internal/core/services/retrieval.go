package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/wikichat/internal/core/domain"
	"github.com/custodia-labs/wikichat/internal/core/ports/driven"
	"github.com/custodia-labs/wikichat/internal/core/ports/driving"
	"github.com/custodia-labs/wikichat/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService answers similarity queries against the active index.
// The index can be swapped at runtime with Reload.
type RetrievalService struct {
	embedder driven.EmbeddingService
	indexes  driven.VectorIndexStore
	path     string
	k        int

	mu    sync.RWMutex
	index driven.VectorIndex
}

// NewRetrievalService creates a retrieval service for the index at path.
// No index is loaded until Reload is called.
func NewRetrievalService(
	embedder driven.EmbeddingService,
	indexes driven.VectorIndexStore,
	path string,
	k int,
) *RetrievalService {
	if k <= 0 {
		k = domain.DefaultRetrievalK
	}
	if path == "" {
		path = domain.DefaultIndexPath
	}
	return &RetrievalService{
		embedder: embedder,
		indexes:  indexes,
		path:     path,
		k:        k,
	}
}

// Retrieve returns the k nearest chunks to query.
func (s *RetrievalService) Retrieve(ctx context.Context, query string) ([]domain.Chunk, error) {
	scored, err := s.SimilaritySearch(ctx, query, s.k)
	if err != nil {
		return nil, err
	}
	chunks := make([]domain.Chunk, len(scored))
	for i := range scored {
		chunks[i] = scored[i].Chunk
	}
	return chunks, nil
}

// SimilaritySearch embeds query and searches the active index.
func (s *RetrievalService) SimilaritySearch(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	if !s.loaded() {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if k <= 0 {
		k = s.k
	}

	// Embed outside the lock; Reload may swap the index meanwhile.
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	results, err := s.index.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	logger.Debug("Retrieved %d chunks for %q", len(results), query)
	return results, nil
}

// Reload loads the index from disk and replaces the active one.
// On failure the previous index stays active.
func (s *RetrievalService) Reload(ctx context.Context) error {
	if s.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}

	index, err := s.indexes.Load(ctx, s.path, s.embedder.Dimensions())
	if err != nil {
		return fmt.Errorf("load index %s: %w", s.path, err)
	}

	s.mu.Lock()
	old := s.index
	s.index = index
	s.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	logger.Info("Loaded index %s (%d chunks)", s.path, index.Len())
	return nil
}

func (s *RetrievalService) loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index != nil
}

// Size returns the number of chunks in the active index.
func (s *RetrievalService) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return 0
	}
	return s.index.Len()
}

// Path returns the index location this service loads from.
func (s *RetrievalService) Path() string {
	return s.path
}

// Close releases the active index.
func (s *RetrievalService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return nil
	}
	err := s.index.Close()
	s.index = nil
	return err
}
