// Package normaliser tidies article text before splitting and drops
// chunks that carry too little text afterwards.
package normaliser

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/wikichat/internal/core/domain"
	"github.com/custodia-labs/wikichat/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// DefaultMinLength drops chunks with no visible text.
const DefaultMinLength = 1

// Processor drops chunks whose trimmed text is shorter than the minimum
// length. Chunk content is never rewritten, so the overlap between
// neighbouring chunks survives. Surviving chunks are renumbered so
// positions stay contiguous. Text cleanup belongs before the split; see Clean.
type Processor struct {
	minLength int
}

// Option configures the processor.
type Option func(*Processor)

// WithMinLength sets the minimum chunk length in runes.
func WithMinLength(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.minLength = n
		}
	}
}

// New creates a normaliser processor.
func New(opts ...Option) *Processor {
	p := &Processor{minLength: DefaultMinLength}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "normaliser"
}

// Process filters the chunks produced earlier in the pipeline.
func (p *Processor) Process(ctx context.Context, _ *domain.Article, chunks []domain.Chunk) ([]domain.Chunk, error) {
	out := chunks[:0:0]
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if utf8.RuneCountInString(strings.TrimSpace(c.Content)) < p.minLength {
			continue
		}
		c.Position = len(out)
		out = append(out, c)
	}
	return out, nil
}

// Clean normalises line endings, collapses spaces and tabs within each
// line and trims the result. Newlines are preserved.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var b strings.Builder
	b.Grow(len(text))
	space := false
	for _, r := range text {
		switch {
		case r == '\n':
			space = false
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\u00a0':
			if !space {
				b.WriteByte(' ')
				space = true
			}
		case unicode.IsControl(r):
			// dropped
		default:
			space = false
			b.WriteRune(r)
		}
	}

	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
