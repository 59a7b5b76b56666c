package driving

import (
	"context"

	"github.com/custodia-labs/wikichat/internal/core/domain"
)

// IngestOptions configures an ingestion run.
type IngestOptions struct {
	// Limit is the maximum number of articles to index.
	Limit int

	// Path is where the index is saved.
	Path string

	// OnArticle is called before each article is processed. Optional.
	OnArticle func(article domain.Article)
}

// IngestService builds the vector index from stored articles.
type IngestService interface {
	// Ingest chunks, embeds, and indexes up to opts.Limit articles and saves
	// the index. Per-article failures are recorded in the report and do not
	// stop the batch. Returns domain.ErrNotFound when there are no articles.
	Ingest(ctx context.Context, opts IngestOptions) (*domain.BatchReport, error)

	// IndexExists returns true if an index exists at path.
	IndexExists(path string) bool

	// DeleteIndex removes the index at path. Returns false if nothing existed.
	DeleteIndex(path string) (bool, error)
}
