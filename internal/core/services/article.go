package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/wikichat/internal/core/domain"
	"github.com/custodia-labs/wikichat/internal/core/ports/driven"
	"github.com/custodia-labs/wikichat/internal/core/ports/driving"
	"github.com/custodia-labs/wikichat/internal/logger"
)

// Ensure ArticleService implements the interface.
var _ driving.ArticleService = (*ArticleService)(nil)

// ArticleService manages stored articles and loads new ones from a dataset.
type ArticleService struct {
	store   driven.ArticleStore
	dataset driven.DatasetSource
	split   string
}

// NewArticleService creates a new article service.
// dataset may be nil when only listing and deleting are needed.
func NewArticleService(store driven.ArticleStore, dataset driven.DatasetSource, split string) *ArticleService {
	return &ArticleService{
		store:   store,
		dataset: dataset,
		split:   split,
	}
}

// List returns all stored articles in insertion order.
func (s *ArticleService) List(ctx context.Context) ([]domain.Article, error) {
	articles, err := s.store.ListArticles(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

// Get returns the article with the given ID.
func (s *ArticleService) Get(ctx context.Context, id string) (*domain.Article, error) {
	article, err := s.store.GetArticle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get article %s: %w", id, err)
	}
	return article, nil
}

// DeleteAll removes every stored article.
func (s *ArticleService) DeleteAll(ctx context.Context) (int, error) {
	n, err := s.store.DeleteAllArticles(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete articles: %w", err)
	}
	logger.Info("Deleted %d articles", n)
	return n, nil
}

// Load fetches the first opts.Limit rows of the dataset and stores them
// in one batch. Rows with neither title nor text are dropped.
func (s *ArticleService) Load(ctx context.Context, opts driving.LoadOptions) (int, error) {
	if opts.Limit <= 0 {
		return 0, fmt.Errorf("%w: limit must be positive", domain.ErrInvalidInput)
	}
	if s.dataset == nil {
		return 0, errors.New("dataset source not configured")
	}

	logger.Section("Dataset Load")
	logger.Debug("Dataset %s, subset %s, limit %d", opts.Dataset, opts.Subset, opts.Limit)

	articles, err := s.dataset.Fetch(ctx, driven.DatasetQuery{
		Dataset: opts.Dataset,
		Subset:  opts.Subset,
		Split:   s.split,
		Limit:   opts.Limit,
	})
	if err != nil {
		return 0, fmt.Errorf("fetch dataset: %w", err)
	}

	kept := articles[:0]
	for _, a := range articles {
		if a.IsBlank() {
			logger.Warn("Skipping blank dataset row %q", a.URL)
			continue
		}
		kept = append(kept, a)
	}
	if len(kept) == 0 {
		return 0, nil
	}

	n, err := s.store.SaveArticles(ctx, kept)
	if err != nil {
		return 0, fmt.Errorf("save articles: %w", err)
	}
	logger.Info("Saved %d articles", n)
	return n, nil
}
