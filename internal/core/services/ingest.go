package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/wikichat/internal/core/domain"
	"github.com/custodia-labs/wikichat/internal/core/ports/driven"
	"github.com/custodia-labs/wikichat/internal/core/ports/driving"
	"github.com/custodia-labs/wikichat/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService chunks stored articles, embeds the chunks and writes the
// resulting vector index to disk.
type IngestService struct {
	articles  driven.ArticleStore
	pipeline  driven.PostProcessorPipeline
	embedder  driven.EmbeddingService
	indexes   driven.VectorIndexStore
	onIndexed func(path string)
}

// NewIngestService creates a new ingestion service.
func NewIngestService(
	articles driven.ArticleStore,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	indexes driven.VectorIndexStore,
) *IngestService {
	return &IngestService{
		articles: articles,
		pipeline: pipeline,
		embedder: embedder,
		indexes:  indexes,
	}
}

// OnIndexed registers a callback run after an index has been saved.
func (s *IngestService) OnIndexed(fn func(path string)) {
	s.onIndexed = fn
}

// Ingest indexes up to opts.Limit stored articles and saves the index to
// opts.Path, replacing any existing file. A batch that indexes no chunks
// returns its report with ErrNothingIndexed and saves nothing.
func (s *IngestService) Ingest(ctx context.Context, opts driving.IngestOptions) (*domain.BatchReport, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if opts.Path == "" {
		opts.Path = domain.DefaultIndexPath
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 1
	}

	logger.Section("Ingest")
	start := time.Now()

	articles, err := s.articles.ListArticles(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	if len(articles) == 0 {
		return nil, fmt.Errorf("no articles: %w", domain.ErrNotFound)
	}

	index, err := s.indexes.New(s.embedder.Dimensions())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	defer index.Close()

	report := &domain.BatchReport{}
	for i := range articles {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		article := articles[i]
		if opts.OnArticle != nil {
			opts.OnArticle(article)
		}
		item := articleLabel(article)

		n, err := s.indexArticle(ctx, index, &article)
		if err != nil {
			// Cancellation stops the batch; other errors only skip the article.
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return report, err
			}
			logger.Warn("Skipping article %q: %v", item, err)
			report.AddFailure(item, err)
			continue
		}

		report.AddSuccess(item)
		report.Chunks += n
		logger.Debug("Indexed %d chunks for %q", n, item)
	}

	if report.Chunks == 0 {
		logger.Warn("No chunks indexed; keeping existing index at %s", opts.Path)
		return report, fmt.Errorf("ingest %d articles: %w", len(articles), domain.ErrNothingIndexed)
	}

	if err := index.Save(ctx, opts.Path); err != nil {
		return report, fmt.Errorf("save index: %w", err)
	}

	logger.Info("Indexed %d chunks from %d articles in %s",
		report.Chunks, len(report.Succeeded), time.Since(start).Round(time.Millisecond))

	if s.onIndexed != nil {
		s.onIndexed(opts.Path)
	}
	return report, nil
}

func (s *IngestService) indexArticle(ctx context.Context, index driven.VectorIndex, article *domain.Article) (int, error) {
	if article.IsBlank() {
		return 0, errors.New("article has no title or text")
	}

	chunks, err := s.pipeline.Process(ctx, article)
	if err != nil {
		return 0, fmt.Errorf("chunk: %w", err)
	}
	if len(chunks) == 0 {
		return 0, errors.New("article produced no chunks")
	}

	return s.Build(ctx, index, chunks)
}

// Build embeds chunks in one batch and appends them to index.
// Nothing is added when embedding fails.
func (s *IngestService) Build(ctx context.Context, index driven.VectorIndex, chunks []domain.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embed: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	entries := make([]domain.EmbeddedChunk, len(chunks))
	for i := range chunks {
		entries[i] = domain.EmbeddedChunk{Chunk: chunks[i], Vector: vectors[i]}
	}
	if err := index.Add(ctx, entries); err != nil {
		return 0, fmt.Errorf("add to index: %w", err)
	}
	return len(entries), nil
}

// IndexExists returns true if an index file exists at path.
func (s *IngestService) IndexExists(path string) bool {
	return s.indexes.Exists(path)
}

// DeleteIndex removes the index file at path.
func (s *IngestService) DeleteIndex(path string) (bool, error) {
	deleted, err := s.indexes.Delete(path)
	if err != nil {
		return false, fmt.Errorf("delete index: %w", err)
	}
	if deleted {
		logger.Info("Deleted index %s", path)
	}
	return deleted, nil
}

func articleLabel(a domain.Article) string {
	if a.Title != "" {
		return a.Title
	}
	return a.ID
}
