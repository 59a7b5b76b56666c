package services

import (
	"context"
	"errors"
	"strings"
	stdsync "sync"

	"github.com/custodia-labs/wikichat/internal/core/domain"
	"github.com/custodia-labs/wikichat/internal/core/ports/driven"
)

// stubEmbedder maps text onto three axes by keyword.
type stubEmbedder struct {
	mu     stdsync.Mutex
	failOn string
	err    error
	calls  int
}

func (e *stubEmbedder) vector(text string) []float32 {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "cat"):
		return []float32{1, 0, 0}
	case strings.Contains(lower, "dog"):
		return []float32{0, 1, 0}
	default:
		return []float32{0, 0, 1}
	}
}

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	return e.vector(text), nil
}

func (e *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if e.failOn != "" && strings.Contains(t, e.failOn) {
			return nil, domain.ErrEmbeddingUnavailable
		}
		out[i] = e.vector(t)
	}
	return out, nil
}

func (e *stubEmbedder) Dimensions() int            { return 3 }
func (e *stubEmbedder) ModelName() string          { return "stub-embed" }
func (e *stubEmbedder) Ping(context.Context) error { return nil }
func (e *stubEmbedder) Close() error               { return nil }

func (e *stubEmbedder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// stubLLM records chat requests and returns a canned answer.
type stubLLM struct {
	mu        stdsync.Mutex
	answer    string
	err       error
	summary   string
	messages  [][]driven.ChatMessage
	options   []driven.ChatOptions
	summaries []string
	hook      func()
}

func (l *stubLLM) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	return l.answer, l.err
}

func (l *stubLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if l.hook != nil {
		l.hook()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, messages)
	l.options = append(l.options, opts)
	if l.err != nil {
		return "", l.err
	}
	return l.answer, nil
}

func (l *stubLLM) Summarise(_ context.Context, existing, content string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.summaries = append(l.summaries, content)
	if l.summary == "" {
		return "", errors.New("no summary configured")
	}
	return l.summary, nil
}

func (l *stubLLM) ModelName() string          { return "stub-llm" }
func (l *stubLLM) Ping(context.Context) error { return nil }
func (l *stubLLM) Close() error               { return nil }

func (l *stubLLM) chatCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages)
}

// stubDataset returns fixed rows.
type stubDataset struct {
	articles []domain.Article
	err      error
	query    driven.DatasetQuery
}

func (d *stubDataset) Fetch(_ context.Context, q driven.DatasetQuery) ([]domain.Article, error) {
	d.query = q
	if d.err != nil {
		return nil, d.err
	}
	if q.Limit < len(d.articles) {
		return append([]domain.Article(nil), d.articles[:q.Limit]...), nil
	}
	return append([]domain.Article(nil), d.articles...), nil
}

// stubRetriever returns fixed chunks.
type stubRetriever struct {
	chunks []domain.Chunk
	err    error
	calls  int
}

func (r *stubRetriever) Retrieve(context.Context, string) ([]domain.Chunk, error) {
	r.calls++
	return r.chunks, r.err
}

var errStore = errors.New("store failure")

// failingArticleStore fails every call.
type failingArticleStore struct{}

func (failingArticleStore) SaveArticles(context.Context, []domain.Article) (int, error) {
	return 0, errStore
}

func (failingArticleStore) GetArticle(context.Context, string) (*domain.Article, error) {
	return nil, errStore
}

func (failingArticleStore) ListArticles(context.Context, int) ([]domain.Article, error) {
	return nil, errStore
}

func (failingArticleStore) CountArticles(context.Context) (int, error)     { return 0, errStore }
func (failingArticleStore) DeleteAllArticles(context.Context) (int, error) { return 0, errStore }
