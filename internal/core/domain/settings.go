package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// RequestsPerSecond throttles embedding calls during ingestion.
	// Zero disables throttling.
	RequestsPerSecond float64

	// Burst is the rate limiter bucket size.
	Burst int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChunkerSettings controls how articles are split.
type ChunkerSettings struct {
	// Size is the maximum chunk length in characters.
	Size int

	// Overlap is the number of characters carried between consecutive chunks.
	Overlap int

	// Separator is the preferred split boundary.
	Separator string
}

// RetrievalSettings controls similarity search.
type RetrievalSettings struct {
	// K is the number of chunks retrieved per question.
	K int
}

// MemoryBackend selects where conversation memory is kept.
type MemoryBackend string

// Available memory backends.
const (
	// MemoryBackendLocal keeps sessions in process with idle expiry.
	MemoryBackendLocal MemoryBackend = "memory"

	// MemoryBackendRedis keeps sessions in Redis so several servers can share them.
	MemoryBackendRedis MemoryBackend = "redis"
)

// IsValid returns true if the backend is recognised.
func (b MemoryBackend) IsValid() bool {
	return b == MemoryBackendLocal || b == MemoryBackendRedis
}

// String returns the string representation.
func (b MemoryBackend) String() string {
	return string(b)
}

// MemorySettings controls conversation memory.
type MemorySettings struct {
	// Budget is the rendered history length, in characters, above which
	// older turns are summarised.
	Budget int

	// Backend selects the session store.
	Backend MemoryBackend

	// SessionTTL is how long an idle session is kept.
	SessionTTL time.Duration

	// RedisAddr is the host:port of the Redis server.
	RedisAddr string

	// RedisPassword authenticates to Redis.
	RedisPassword string

	// RedisDB selects the Redis database.
	RedisDB int
}

// IndexSettings controls the persisted vector index.
type IndexSettings struct {
	// Path is the index file location.
	Path string
}

// DatasetSettings identifies the external article dataset.
type DatasetSettings struct {
	// Name is the dataset identifier (e.g. "wikipedia").
	Name string

	// Subset is the dataset configuration (e.g. "20220301.simple").
	Subset string

	// Split is the dataset split to read.
	Split string

	// BaseURL is the datasets-server endpoint.
	BaseURL string
}

// TopicSettings controls topic suggestion and question generation.
type TopicSettings struct {
	// Query is the default exploration query.
	Query string

	// K is the number of chunks searched for topics.
	K int

	// MinWords is the minimum number of words a topic must have.
	MinWords int

	// Denylist drops topics containing any of these terms.
	Denylist []string

	// Templates are question templates; "{}" is replaced by the topic.
	Templates []string

	// PerTopic is the maximum number of templates applied per topic.
	PerTopic int

	// OutputPath is where generated questions are written.
	OutputPath string
}

// ServerSettings controls the HTTP server.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string

	// LogFile receives rotated JSON logs when set.
	LogFile string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Chunker   ChunkerSettings
	Retrieval RetrievalSettings
	Memory    MemorySettings
	Index     IndexSettings
	Dataset   DatasetSettings
	Topics    TopicSettings
	Server    ServerSettings
}

// Defaults used when no configuration is present.
const (
	DefaultChunkSize      = 600
	DefaultChunkOverlap   = 100
	DefaultChunkSeparator = "\n\n"
	DefaultRetrievalK     = 4
	DefaultMemoryBudget   = 8000
	DefaultSessionTTL     = 30 * time.Minute
	DefaultIndexPath      = "./wiki_embeddings.idx"
	DefaultDatasetName    = "wikipedia"
	DefaultDatasetSubset  = "20220301.simple"
	DefaultDatasetSplit   = "train"
	DefaultDatasetBaseURL = "https://datasets-server.huggingface.co"
	DefaultTopicQuery     = "Key topics in the articles"
	DefaultTopicK         = 10
	DefaultTopicMinWords  = 3
	DefaultTopicPerTopic  = 2
	DefaultQuestionsPath  = "generated_questions.txt"
	DefaultServerAddr     = ":8000"
)

// DefaultTopicDenylist returns the terms that mark boilerplate chunks.
func DefaultTopicDenylist() []string {
	return []string{"Pages", "Books", "Sources", "Other websites"}
}

// DefaultQuestionTemplates returns the built-in question templates.
func DefaultQuestionTemplates() []string {
	return []string{
		"What is {}?",
		"Can you explain {}?",
		"What are the main points about {}?",
		"Why is {} important?",
	}
}

// DefaultAppSettings returns settings with sensible defaults.
// API keys are left empty; they come from the config file or environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultEmbeddingModels()[AIProviderOpenAI],
		},
		LLM: LLMSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultLLMModels()[AIProviderOpenAI],
		},
		Chunker: ChunkerSettings{
			Size:      DefaultChunkSize,
			Overlap:   DefaultChunkOverlap,
			Separator: DefaultChunkSeparator,
		},
		Retrieval: RetrievalSettings{K: DefaultRetrievalK},
		Memory: MemorySettings{
			Budget:     DefaultMemoryBudget,
			Backend:    MemoryBackendLocal,
			SessionTTL: DefaultSessionTTL,
		},
		Index: IndexSettings{Path: DefaultIndexPath},
		Dataset: DatasetSettings{
			Name:    DefaultDatasetName,
			Subset:  DefaultDatasetSubset,
			Split:   DefaultDatasetSplit,
			BaseURL: DefaultDatasetBaseURL,
		},
		Topics: TopicSettings{
			Query:      DefaultTopicQuery,
			K:          DefaultTopicK,
			MinWords:   DefaultTopicMinWords,
			Denylist:   DefaultTopicDenylist(),
			Templates:  DefaultQuestionTemplates(),
			PerTopic:   DefaultTopicPerTopic,
			OutputPath: DefaultQuestionsPath,
		},
		Server: ServerSettings{Addr: DefaultServerAddr},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
