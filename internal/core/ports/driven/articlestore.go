package driven

import (
	"context"

	"github.com/custodia-labs/wikichat/internal/core/domain"
)

// ArticleStore persists raw articles.
// Backed by SQLite for production use.
type ArticleStore interface {
	// SaveArticles inserts articles in a single batch. Articles without an
	// ID are assigned one. Returns the number saved.
	SaveArticles(ctx context.Context, articles []domain.Article) (int, error)

	// GetArticle retrieves an article by ID.
	GetArticle(ctx context.Context, id string) (*domain.Article, error)

	// ListArticles returns articles in insertion order.
	// A limit of zero or less returns all articles.
	ListArticles(ctx context.Context, limit int) ([]domain.Article, error)

	// CountArticles returns the number of stored articles.
	CountArticles(ctx context.Context) (int, error)

	// DeleteAllArticles removes every article and returns how many were removed.
	DeleteAllArticles(ctx context.Context) (int, error)
}
