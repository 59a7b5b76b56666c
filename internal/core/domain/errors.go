package domain

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyQuestion is returned when a question is blank after trimming.
	// The message is shown to end users verbatim.
	ErrEmptyQuestion = fmt.Errorf("%w: Please provide a valid question.", ErrInvalidInput)

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates no vector index has been loaded.
	// Run the ingest command to build one.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrDatasetUnavailable indicates the external dataset could not be read.
	ErrDatasetUnavailable = errors.New("dataset unavailable")

	// ErrRateLimited indicates a remote API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Vector Index Errors.

	// ErrIndexNotFound indicates no persisted index exists at the given location.
	ErrIndexNotFound = errors.New("vector index not found")

	// ErrIndexCorrupt indicates the persisted index failed validation.
	ErrIndexCorrupt = errors.New("vector index corrupt")

	// ErrNothingIndexed indicates an ingestion batch produced no chunks.
	// Any existing index is left untouched.
	ErrNothingIndexed = errors.New("no chunks indexed")

	// ErrDimensionMismatch indicates vectors whose size differs from the index
	// or the configured embedding model.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// DimensionMismatchError reports the expected and actual vector sizes.
// It matches ErrDimensionMismatch with errors.Is.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %d, got %d", ErrDimensionMismatch, e.Expected, e.Actual)
}

// Is reports whether target is ErrDimensionMismatch.
func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

// RateLimitError carries the provider's retry hint, if any.
// It matches ErrRateLimited with errors.Is.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: %s (retry after %s)", e.Provider, ErrRateLimited, e.RetryAfter)
	}
	return fmt.Sprintf("%s: %s", e.Provider, ErrRateLimited)
}

// Is reports whether target is ErrRateLimited.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}
