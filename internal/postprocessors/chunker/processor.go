// Package chunker provides a separator-aware, fixed-size text chunking processor.
package chunker

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/wikichat/internal/core/domain"
)

// DefaultChunkSize is the default maximum number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// DefaultSeparator is the preferred split boundary.
const DefaultSeparator = domain.DefaultChunkSeparator

// Processor splits article fields into overlapping chunks.
// It implements the PostProcessor interface.
//
// Lengths are counted in characters (runes). Each chunk holds at most
// chunkSize characters and starts with the last overlap characters of the
// previous chunk from the same field. Cuts are placed at the last separator
// inside the window when one exists past the overlap region.
type Processor struct {
	chunkSize int
	overlap   int
	separator string
	clean     func(string) string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSeparator sets the preferred split boundary.
func WithSeparator(sep string) Option {
	return func(p *Processor) {
		if sep != "" {
			p.separator = sep
		}
	}
}

// WithCleaner sets a function applied to each field before it is split.
func WithCleaner(clean func(string) string) Option {
	return func(p *Processor) {
		p.clean = clean
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		separator: DefaultSeparator,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the article title and text into chunks, title first.
// The cleaner, when set, runs on the whole field before it is cut.
// Input chunks are ignored; this processor creates new chunks from article content.
func (p *Processor) Process(ctx context.Context, article *domain.Article, _ []domain.Chunk) ([]domain.Chunk, error) {
	if article == nil {
		return nil, errors.New("article is nil")
	}

	var chunks []domain.Chunk
	fields := []struct {
		field domain.ChunkField
		text  string
	}{
		{domain.ChunkFieldTitle, article.Title},
		{domain.ChunkFieldText, article.Text},
	}

	for _, f := range fields {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := f.text
		if p.clean != nil {
			text = p.clean(text)
		}
		for _, content := range p.Split(text) {
			chunks = append(chunks, domain.Chunk{
				ID:        uuid.New().String(),
				ArticleID: article.ID,
				Content:   content,
				Position:  len(chunks),
				Metadata: domain.ChunkMetadata{
					SourceURL: article.URL,
					Title:     article.Title,
					Field:     f.field,
				},
			})
		}
	}

	return chunks, nil
}

// Split cuts text into chunks. Blank text yields no chunks.
func (p *Processor) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	n := len(runes)

	// Estimate number of chunks
	estimatedChunks := (n / (p.chunkSize - p.overlap)) + 1
	chunks := make([]string, 0, estimatedChunks)

	start := 0
	for {
		end := start + p.chunkSize
		if end >= n {
			end = n
		} else if cut := p.lastSeparator(runes[start:end]); cut > p.overlap {
			end = start + cut
		}

		if content := string(runes[start:end]); strings.TrimSpace(content) != "" {
			chunks = append(chunks, content)
		}

		if end == n {
			break
		}

		// The next chunk repeats the tail of this one
		start = end - p.overlap
	}

	return chunks
}

// lastSeparator returns the rune offset of the last separator in window,
// or -1 if there is none.
func (p *Processor) lastSeparator(window []rune) int {
	s := string(window)
	idx := strings.LastIndex(s, p.separator)
	if idx < 0 {
		return -1
	}
	return utf8.RuneCountInString(s[:idx])
}
