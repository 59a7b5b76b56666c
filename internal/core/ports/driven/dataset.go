package driven

import (
	"context"

	"github.com/custodia-labs/wikichat/internal/core/domain"
)

// DatasetQuery selects rows from an external dataset.
type DatasetQuery struct {
	// Dataset is the dataset identifier.
	Dataset string

	// Subset is the dataset configuration.
	Subset string

	// Split is the dataset split.
	Split string

	// Limit is the number of rows to read from the start of the split.
	Limit int
}

// DatasetSource reads articles from an external corpus.
type DatasetSource interface {
	// Fetch returns up to query.Limit articles in dataset order.
	Fetch(ctx context.Context, query DatasetQuery) ([]domain.Article, error)
}
