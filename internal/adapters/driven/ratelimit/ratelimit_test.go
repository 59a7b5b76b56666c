package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wikichat/internal/core/domain"
)

func TestNew_ZeroRateIsUnlimited(t *testing.T) {
	l := New(Config{})

	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow())
	}
}

func TestLimiter_BurstThenThrottle(t *testing.T) {
	l := New(Config{RequestsPerSecond: 1, Burst: 2})

	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
}

func TestLimiter_WaitHonoursContext(t *testing.T) {
	l := New(Config{RequestsPerSecond: 0.01, Burst: 1})
	require.True(t, l.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.Error(t, l.Wait(ctx))
}

func TestLimiter_Backoff(t *testing.T) {
	l := New(Config{})
	l.Backoff(time.Hour)

	assert.False(t, l.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.DeadlineExceeded)
}

func TestLimiter_BackoffExpires(t *testing.T) {
	l := New(Config{})
	base := time.Now()
	l.now = func() time.Time { return base }

	l.Backoff(time.Second)
	assert.False(t, l.Allow())

	l.now = func() time.Time { return base.Add(2 * time.Second) }
	assert.True(t, l.Allow())
	assert.NoError(t, l.Wait(context.Background()))
}

func TestLimiter_BackoffDefaultAndNoShortening(t *testing.T) {
	l := New(Config{})
	base := time.Now()
	l.now = func() time.Time { return base }

	l.Backoff(0)
	assert.Equal(t, base.Add(DefaultBackoff), l.retryAt)

	l.Backoff(time.Second)
	assert.Equal(t, base.Add(DefaultBackoff), l.retryAt)
}

// stubEmbedder returns err from every call and counts calls.
type stubEmbedder struct {
	err   error
	calls int
}

func (s *stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	s.calls++
	return []float32{1}, s.err
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1}
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int            { return 1 }
func (s *stubEmbedder) ModelName() string          { return "stub" }
func (s *stubEmbedder) Ping(context.Context) error { return nil }
func (s *stubEmbedder) Close() error               { return nil }

func TestEmbeddingService_PassesThrough(t *testing.T) {
	next := &stubEmbedder{}
	svc := WrapEmbedding(next, New(Config{}))

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)

	_, err = svc.Embed(context.Background(), "c")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
	assert.Equal(t, "stub", svc.ModelName())
	assert.Equal(t, 1, svc.Dimensions())
}

func TestEmbeddingService_RateLimitSetsBackoff(t *testing.T) {
	next := &stubEmbedder{err: fmt.Errorf("embed: %w", &domain.RateLimitError{Provider: "openai", RetryAfter: time.Hour})}
	limiter := New(Config{})
	svc := WrapEmbedding(next, limiter)

	_, err := svc.Embed(context.Background(), "a")
	require.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, 1, next.calls, "rate limited calls are not retried")
	assert.False(t, limiter.Allow())
}

func TestEmbeddingService_PlainRateLimitUsesDefaultBackoff(t *testing.T) {
	next := &stubEmbedder{err: domain.ErrRateLimited}
	limiter := New(Config{})
	base := time.Now()
	limiter.now = func() time.Time { return base }
	svc := WrapEmbedding(next, limiter)

	_, err := svc.EmbedBatch(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Equal(t, base.Add(DefaultBackoff), limiter.retryAt)
}

func TestEmbeddingService_OtherErrorsNoBackoff(t *testing.T) {
	next := &stubEmbedder{err: errors.New("boom")}
	limiter := New(Config{})
	svc := WrapEmbedding(next, limiter)

	_, err := svc.Embed(context.Background(), "a")
	require.Error(t, err)
	assert.True(t, limiter.Allow())
}

func TestEmbeddingService_WaitCancelled(t *testing.T) {
	next := &stubEmbedder{}
	limiter := New(Config{})
	limiter.Backoff(time.Hour)
	svc := WrapEmbedding(next, limiter)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Embed(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, next.calls)
}
