package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/wikichat/internal/core/domain"
	"github.com/custodia-labs/wikichat/internal/core/ports/driven"
)

// Ensure ArticleStore implements the interface.
var _ driven.ArticleStore = (*ArticleStore)(nil)

// ArticleStore is an in-memory implementation of driven.ArticleStore.
type ArticleStore struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]domain.Article
}

// NewArticleStore creates a new in-memory article store.
func NewArticleStore() *ArticleStore {
	return &ArticleStore{
		byID: make(map[string]domain.Article),
	}
}

// SaveArticles stores articles, replacing any with the same ID in place.
func (s *ArticleStore) SaveArticles(ctx context.Context, articles []domain.Article) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range articles {
		if a.ID == "" {
			a.ID = uuid.New().String()
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now()
		}
		if _, exists := s.byID[a.ID]; !exists {
			s.order = append(s.order, a.ID)
		}
		s.byID[a.ID] = a
	}
	return len(articles), nil
}

// GetArticle retrieves an article by ID.
func (s *ArticleStore) GetArticle(_ context.Context, id string) (*domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

// ListArticles returns articles in insertion order.
func (s *ArticleStore) ListArticles(_ context.Context, limit int) ([]domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.order)
	if limit > 0 && limit < n {
		n = limit
	}

	result := make([]domain.Article, 0, n)
	for _, id := range s.order[:n] {
		result = append(result, s.byID[id])
	}
	return result, nil
}

// CountArticles returns the number of stored articles.
func (s *ArticleStore) CountArticles(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order), nil
}

// DeleteAllArticles removes every article.
func (s *ArticleStore) DeleteAllArticles(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.order)
	s.order = nil
	s.byID = make(map[string]domain.Article)
	return n, nil
}
