package driving

import (
	"context"

	"github.com/custodia-labs/wikichat/internal/core/domain"
)

// RetrievalService finds chunks relevant to a query.
type RetrievalService interface {
	// Retrieve returns the configured number of nearest chunks, nearest first.
	Retrieve(ctx context.Context, query string) ([]domain.Chunk, error)

	// SimilaritySearch returns up to k nearest chunks with their scores.
	SimilaritySearch(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error)

	// Reload replaces the active index with the one on disk.
	Reload(ctx context.Context) error

	// Size returns the number of indexed chunks, or zero if no index is loaded.
	Size() int
}
