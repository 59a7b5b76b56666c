package postprocessors

import (
	"github.com/custodia-labs/wikichat/internal/core/domain"
	"github.com/custodia-labs/wikichat/internal/core/ports/driven"
	"github.com/custodia-labs/wikichat/internal/postprocessors/chunker"
	"github.com/custodia-labs/wikichat/internal/postprocessors/normaliser"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
	r.Register("normaliser", buildNormaliser)
}

// ChunkerConfig converts chunker settings into generic processor config.
func ChunkerConfig(s domain.ChunkerSettings) map[string]any {
	return map[string]any{
		"chunk_size": s.Size,
		"overlap":    s.Overlap,
		"separator":  s.Separator,
	}
}

// NewDefaultPipeline builds the standard article pipeline from settings.
func NewDefaultPipeline(s domain.ChunkerSettings) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)

	split, err := r.Build("chunker", ChunkerConfig(s))
	if err != nil {
		return nil, err
	}
	filter, err := r.Build("normaliser", nil)
	if err != nil {
		return nil, err
	}
	return NewPipeline(split, filter), nil
}

// buildChunker creates a chunker processor from generic config.
// Article fields are passed through normaliser.Clean before splitting.
// Supported config keys:
//   - chunk_size (int): Maximum characters per chunk (default: 600)
//   - overlap (int): Overlapping characters between chunks (default: 100)
//   - separator (string): Preferred split boundary (default: blank line)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	opts := []chunker.Option{chunker.WithCleaner(normaliser.Clean)}

	if size, ok := getIntFromConfig(cfg, "chunk_size"); ok && size > 0 {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap, ok := getIntFromConfig(cfg, "overlap"); ok && overlap >= 0 {
		opts = append(opts, chunker.WithOverlap(overlap))
	}
	if sep, ok := cfg["separator"].(string); ok {
		opts = append(opts, chunker.WithSeparator(sep))
	}

	return chunker.New(opts...), nil
}

// buildNormaliser creates the short-chunk filter.
// Supported config keys:
//   - min_length (int): Minimum runes a chunk needs to survive (default: 1)
func buildNormaliser(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []normaliser.Option
	if n, ok := getIntFromConfig(cfg, "min_length"); ok {
		opts = append(opts, normaliser.WithMinLength(n))
	}
	return normaliser.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
