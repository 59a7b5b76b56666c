package driving

import (
	"context"

	"github.com/custodia-labs/wikichat/internal/core/domain"
)

// LoadOptions selects which dataset rows to load.
type LoadOptions struct {
	// Dataset is the external dataset identifier.
	Dataset string

	// Subset is the dataset configuration.
	Subset string

	// Limit is the number of rows to load.
	Limit int
}

// ArticleService manages the article store.
type ArticleService interface {
	// List returns all stored articles.
	List(ctx context.Context) ([]domain.Article, error)

	// Get returns one article. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.Article, error)

	// DeleteAll removes every stored article and returns the count removed.
	DeleteAll(ctx context.Context) (int, error)

	// Load fetches rows from an external dataset and stores them.
	// Returns the number of articles saved.
	Load(ctx context.Context, opts LoadOptions) (int, error)
}
