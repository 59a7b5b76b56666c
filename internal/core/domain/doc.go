// Package domain defines the core business entities for wikichat.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Article: A raw document loaded from an external dataset
//   - Chunk: A bounded slice of an article field with provenance metadata
//   - EmbeddedChunk: A chunk paired with its embedding vector
//   - Conversation: The summarised history of one chat session
//   - BatchReport: The outcome of a batch ingestion
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
