package ratelimit

import (
	"context"
	"errors"

	"github.com/custodia-labs/wikichat/internal/core/domain"
	"github.com/custodia-labs/wikichat/internal/core/ports/driven"
	"github.com/custodia-labs/wikichat/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService throttles an embedding provider. Failed calls are not
// retried; a rate limit error only delays the calls that follow it.
type EmbeddingService struct {
	driven.EmbeddingService
	limiter *Limiter
}

// WrapEmbedding returns next throttled by limiter.
func WrapEmbedding(next driven.EmbeddingService, limiter *Limiter) *EmbeddingService {
	return &EmbeddingService{EmbeddingService: next, limiter: limiter}
}

// Embed waits for a token then embeds text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	vec, err := s.EmbeddingService.Embed(ctx, text)
	s.observe(err)
	return vec, err
}

// EmbedBatch waits for a single token then embeds texts in one call.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	vecs, err := s.EmbeddingService.EmbedBatch(ctx, texts)
	s.observe(err)
	return vecs, err
}

func (s *EmbeddingService) observe(err error) {
	if err == nil {
		return
	}

	var rl *domain.RateLimitError
	switch {
	case errors.As(err, &rl):
		logger.Warn("embedding provider rate limited, backing off %s", rl.RetryAfter)
		s.limiter.Backoff(rl.RetryAfter)
	case errors.Is(err, domain.ErrRateLimited):
		logger.Warn("embedding provider rate limited, backing off %s", DefaultBackoff)
		s.limiter.Backoff(0)
	}
}
