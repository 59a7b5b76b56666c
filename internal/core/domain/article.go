package domain

import "time"

// Article is a raw document loaded from an external dataset.
// Articles are read-only once stored; they are removed only by bulk delete.
type Article struct {
	// ID is the unique identifier for the article.
	ID string

	// Title is the human-readable title.
	Title string

	// URL is the canonical source location.
	URL string

	// Text is the full article body.
	Text string

	// CreatedAt is when the article was stored.
	CreatedAt time.Time
}

// IsBlank returns true if the article has neither a title nor a body.
func (a Article) IsBlank() bool {
	return isBlank(a.Title) && isBlank(a.Text)
}

// ChunkField identifies which article field a chunk was cut from.
type ChunkField string

// Article fields that are chunked.
const (
	ChunkFieldTitle ChunkField = "title"
	ChunkFieldText  ChunkField = "text"
)

// IsValid returns true if the field is recognised.
func (f ChunkField) IsValid() bool {
	return f == ChunkFieldTitle || f == ChunkFieldText
}

// String returns the string representation.
func (f ChunkField) String() string {
	return string(f)
}

// ChunkMetadata records where a chunk came from.
type ChunkMetadata struct {
	// SourceURL is the URL of the originating article.
	SourceURL string `json:"source_url"`

	// Title is the title of the originating article.
	Title string `json:"title"`

	// Field is the article field the chunk was cut from.
	Field ChunkField `json:"field"`
}

// Chunk is a bounded slice of an article field.
// Chunks are derived at ingestion time and are not persisted on their own;
// only the vector index keeps them alongside their embeddings.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// ArticleID links to the parent Article.
	ArticleID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the article.
	Position int

	// Metadata holds the chunk provenance.
	Metadata ChunkMetadata
}

// EmbeddedChunk pairs a chunk with its embedding vector.
type EmbeddedChunk struct {
	Chunk  Chunk
	Vector []float32
}

// ScoredChunk is a chunk returned by a similarity search.
type ScoredChunk struct {
	Chunk Chunk

	// Score is the cosine similarity between the query and the chunk.
	Score float64
}

func isBlank(s string) bool {
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\v', '\f':
		default:
			return false
		}
	}
	return true
}
