// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ArticleStore: Raw article persistence (SQLite)
//   - ConfigStore: Application configuration
//   - ConversationStore: Session-scoped conversation memory (in-process or Redis)
//   - VectorIndexStore: Creates, loads, and deletes persisted vector indexes
//   - PostProcessor: Turns articles into chunks
//
// # Remote Services
//
// These talk to external APIs and are constructed once per process:
//
//   - EmbeddingService: Generates vector embeddings
//   - LLMService: Answers questions and summarises conversation history
//   - DatasetSource: Reads articles from an external dataset
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or driving package
package driven
