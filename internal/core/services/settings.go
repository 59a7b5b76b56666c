package services

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/custodia-labs/wikichat/internal/core/domain"
	"github.com/custodia-labs/wikichat/internal/core/ports/driven"
	"github.com/custodia-labs/wikichat/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyEmbedRPS          = "embedding.requests_per_second"
	keyEmbedBurst        = "embedding.burst"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyChunkSize         = "chunker.chunk_size"
	keyChunkOverlap      = "chunker.overlap"
	keyChunkSeparator    = "chunker.separator"
	keyRetrievalK        = "retrieval.k"
	keyMemoryBudget      = "memory.budget"
	keyMemoryBackend     = "memory.backend"
	keyMemorySessionTTL  = "memory.session_ttl"
	keyMemoryRedisAddr   = "memory.redis_addr"
	keyMemoryRedisPass   = "memory.redis_password"
	keyMemoryRedisDB     = "memory.redis_db"
	keyIndexPath         = "index.path"
	keyDatasetName       = "dataset.name"
	keyDatasetSubset     = "dataset.subset"
	keyDatasetSplit      = "dataset.split"
	keyDatasetBaseURL    = "dataset.base_url"
	keyTopicsQuery       = "topics.query"
	keyTopicsK           = "topics.k"
	keyTopicsMinWords    = "topics.min_words"
	keyTopicsDenylist    = "topics.denylist"
	keyTopicsTemplates   = "topics.templates"
	keyTopicsPerTopic    = "topics.per_topic"
	keyTopicsOutputPath  = "topics.output_path"
	keyServerAddr        = "server.addr"
	keyLogFile           = "log.file"
)

const defaultOllamaBaseURL = "http://localhost:11434"

// Environment variables that override the config file.
//
//nolint:gosec // G101: variable names, not credentials.
const (
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvOpenAIModel  = "OPENAI_API_MODEL"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
)

// SettingsService manages application settings.
// Values resolve in order: environment, config file, defaults.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// SetEnv replaces the environment lookup. Used by tests.
func (s *SettingsService) SetEnv(getenv func(string) string) {
	s.getenv = getenv
}

// Get retrieves current application settings with environment overrides applied.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.stored()
	s.applyEnv(settings)
	return settings, nil
}

// stored reads the config file over the defaults, without environment overrides.
func (s *SettingsService) stored() *domain.AppSettings {
	d := domain.DefaultAppSettings()

	return &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:             s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // empty is valid for cloud providers
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
			Burst:             s.configStore.GetInt(keyEmbedBurst),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:    s.getString(keyLLMModel, d.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Chunker: domain.ChunkerSettings{
			Size:      s.getInt(keyChunkSize, d.Chunker.Size),
			Overlap:   s.getIntAllowZero(keyChunkOverlap, d.Chunker.Overlap),
			Separator: s.getString(keyChunkSeparator, d.Chunker.Separator),
		},
		Retrieval: domain.RetrievalSettings{
			K: s.getInt(keyRetrievalK, d.Retrieval.K),
		},
		Memory: domain.MemorySettings{
			Budget:        s.getInt(keyMemoryBudget, d.Memory.Budget),
			Backend:       s.getMemoryBackend(d.Memory.Backend),
			SessionTTL:    s.getDuration(keyMemorySessionTTL, d.Memory.SessionTTL),
			RedisAddr:     s.configStore.GetString(keyMemoryRedisAddr),
			RedisPassword: s.configStore.GetString(keyMemoryRedisPass),
			RedisDB:       s.configStore.GetInt(keyMemoryRedisDB),
		},
		Index: domain.IndexSettings{
			Path: s.getString(keyIndexPath, d.Index.Path),
		},
		Dataset: domain.DatasetSettings{
			Name:    s.getString(keyDatasetName, d.Dataset.Name),
			Subset:  s.getString(keyDatasetSubset, d.Dataset.Subset),
			Split:   s.getString(keyDatasetSplit, d.Dataset.Split),
			BaseURL: s.getString(keyDatasetBaseURL, d.Dataset.BaseURL),
		},
		Topics: domain.TopicSettings{
			Query:      s.getString(keyTopicsQuery, d.Topics.Query),
			K:          s.getInt(keyTopicsK, d.Topics.K),
			MinWords:   s.getInt(keyTopicsMinWords, d.Topics.MinWords),
			Denylist:   s.getStringSlice(keyTopicsDenylist, d.Topics.Denylist),
			Templates:  s.getStringSlice(keyTopicsTemplates, d.Topics.Templates),
			PerTopic:   s.getInt(keyTopicsPerTopic, d.Topics.PerTopic),
			OutputPath: s.getString(keyTopicsOutputPath, d.Topics.OutputPath),
		},
		Server: domain.ServerSettings{
			Addr:    s.getString(keyServerAddr, d.Server.Addr),
			LogFile: s.configStore.GetString(keyLogFile),
		},
	}
}

// applyEnv fills provider credentials from the environment. Keys in the
// environment win over the config file so that a .env file can be used
// without touching config.toml.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	openAIKey := s.getenv(EnvOpenAIKey)
	anthropicKey := s.getenv(EnvAnthropicKey)

	if openAIKey != "" && settings.Embedding.Provider == domain.AIProviderOpenAI {
		settings.Embedding.APIKey = openAIKey
	}

	switch settings.LLM.Provider {
	case domain.AIProviderOpenAI:
		if openAIKey != "" {
			settings.LLM.APIKey = openAIKey
		}
		if model := s.getenv(EnvOpenAIModel); model != "" {
			settings.LLM.Model = model
		}
	case domain.AIProviderAnthropic:
		if anthropicKey != "" {
			settings.LLM.APIKey = anthropicKey
		}
	}
}

// settingEntry is one key written by Save.
type settingEntry struct {
	key   string
	value any
}

// Save persists application settings. Empty API keys are not written so
// that a key supplied through the environment never lands in the file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	entries := []settingEntry{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedAPIKey, settings.Embedding.APIKey},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyEmbedBurst, settings.Embedding.Burst},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMAPIKey, settings.LLM.APIKey},
		{keyChunkSize, settings.Chunker.Size},
		{keyChunkOverlap, settings.Chunker.Overlap},
		{keyChunkSeparator, settings.Chunker.Separator},
		{keyRetrievalK, settings.Retrieval.K},
		{keyMemoryBudget, settings.Memory.Budget},
		{keyMemoryBackend, settings.Memory.Backend.String()},
		{keyMemorySessionTTL, settings.Memory.SessionTTL.String()},
		{keyMemoryRedisAddr, settings.Memory.RedisAddr},
		{keyMemoryRedisPass, settings.Memory.RedisPassword},
		{keyMemoryRedisDB, settings.Memory.RedisDB},
		{keyIndexPath, settings.Index.Path},
		{keyDatasetName, settings.Dataset.Name},
		{keyDatasetSubset, settings.Dataset.Subset},
		{keyDatasetSplit, settings.Dataset.Split},
		{keyDatasetBaseURL, settings.Dataset.BaseURL},
		{keyTopicsQuery, settings.Topics.Query},
		{keyTopicsK, settings.Topics.K},
		{keyTopicsMinWords, settings.Topics.MinWords},
		{keyTopicsDenylist, settings.Topics.Denylist},
		{keyTopicsTemplates, settings.Topics.Templates},
		{keyTopicsPerTopic, settings.Topics.PerTopic},
		{keyTopicsOutputPath, settings.Topics.OutputPath},
		{keyServerAddr, settings.Server.Addr},
		{keyLogFile, settings.Server.LogFile},
	}

	for _, e := range entries {
		if (e.key == keyEmbedAPIKey || e.key == keyLLMAPIKey || e.key == keyMemoryRedisPass) && e.value == "" {
			continue
		}
		if err := s.configStore.Set(e.key, e.value); err != nil {
			return fmt.Errorf("save %s: %w", e.key, err)
		}
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.envKey(provider) == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings := s.stored()
	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.envKey(provider) == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings := s.stored()
	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetMemory configures conversation memory. A budget of zero keeps the
// current value.
func (s *SettingsService) SetMemory(backend domain.MemoryBackend, budget int, redisAddr string) error {
	if !backend.IsValid() {
		return fmt.Errorf("%w: invalid memory backend: %s", domain.ErrInvalidInput, backend)
	}
	if budget < 0 {
		return fmt.Errorf("%w: memory budget must be positive", domain.ErrInvalidInput)
	}

	settings := s.stored()
	settings.Memory.Backend = backend
	if budget > 0 {
		settings.Memory.Budget = budget
	}
	if redisAddr != "" {
		settings.Memory.RedisAddr = redisAddr
	}
	if backend == domain.MemoryBackendRedis && settings.Memory.RedisAddr == "" {
		return fmt.Errorf("%w: redis backend requires an address", domain.ErrInvalidInput)
	}

	return s.Save(settings)
}

// Validate checks that the current settings can run the chat pipeline.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	switch {
	case !settings.Embedding.IsConfigured():
		return fmt.Errorf("%w: embedding provider %q is not configured",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	case !settings.LLM.IsConfigured():
		return fmt.Errorf("%w: LLM provider %q is not configured",
			domain.ErrLLMUnavailable, settings.LLM.Provider)
	case settings.Chunker.Size <= 0:
		return fmt.Errorf("%w: chunk size must be positive", domain.ErrInvalidInput)
	case settings.Chunker.Overlap < 0:
		return fmt.Errorf("%w: chunk overlap must not be negative", domain.ErrInvalidInput)
	case settings.Retrieval.K <= 0:
		return fmt.Errorf("%w: retrieval k must be positive", domain.ErrInvalidInput)
	case settings.Memory.Budget <= 0:
		return fmt.Errorf("%w: memory budget must be positive", domain.ErrInvalidInput)
	case settings.Memory.Backend == domain.MemoryBackendRedis && settings.Memory.RedisAddr == "":
		return fmt.Errorf("%w: redis backend requires memory.redis_addr", domain.ErrInvalidInput)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

func (s *SettingsService) envKey(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderOpenAI:
		return s.getenv(EnvOpenAIKey)
	case domain.AIProviderAnthropic:
		return s.getenv(EnvAnthropicKey)
	default:
		return ""
	}
}

func modelOrDefault(model, fallback string) string {
	if model != "" {
		return model
	}
	return fallback
}

// baseURLFor keeps a custom local endpoint and clears it for cloud providers.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return defaultOllamaBaseURL
	}
	return current
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getIntAllowZero distinguishes an explicit zero from a missing key.
func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	if d := s.configStore.GetDuration(key); d > 0 {
		return d
	}
	return defaultVal
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetStringSlice(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getMemoryBackend(defaultVal domain.MemoryBackend) domain.MemoryBackend {
	backend := domain.MemoryBackend(s.configStore.GetString(keyMemoryBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
