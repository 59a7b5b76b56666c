package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrEmptyQuestion", ErrEmptyQuestion},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrVectorIndexUnavailable", ErrVectorIndexUnavailable},
		{"ErrDatasetUnavailable", ErrDatasetUnavailable},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrIndexNotFound", ErrIndexNotFound},
		{"ErrIndexCorrupt", ErrIndexCorrupt},
		{"ErrNothingIndexed", ErrNothingIndexed},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrEmptyQuestion_WrapsInvalidInput(t *testing.T) {
	assert.True(t, errors.Is(ErrEmptyQuestion, ErrInvalidInput))
	assert.Contains(t, ErrEmptyQuestion.Error(), "Please provide a valid question.")
}

func TestErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("load index: %w", ErrIndexNotFound)

	assert.True(t, errors.Is(wrapped, ErrIndexNotFound))
	assert.False(t, errors.Is(wrapped, ErrIndexCorrupt))
}

func TestDimensionMismatchError(t *testing.T) {
	err := &DimensionMismatchError{Expected: 1536, Actual: 768}

	assert.True(t, errors.Is(err, ErrDimensionMismatch))
	assert.False(t, errors.Is(err, ErrIndexCorrupt))
	assert.Equal(t, "embedding dimension mismatch: expected 1536, got 768", err.Error())

	wrapped := fmt.Errorf("load: %w", err)
	assert.True(t, errors.Is(wrapped, ErrDimensionMismatch))

	var target *DimensionMismatchError
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, 768, target.Actual)
}

func TestRateLimitError(t *testing.T) {
	err := &RateLimitError{Provider: "openai", RetryAfter: 20 * time.Second}

	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.Equal(t, "openai: rate limited (retry after 20s)", err.Error())
	assert.Equal(t, "openai: rate limited", (&RateLimitError{Provider: "openai"}).Error())

	var target *RateLimitError
	assert.True(t, errors.As(fmt.Errorf("embed: %w", err), &target))
	assert.Equal(t, 20*time.Second, target.RetryAfter)
}
