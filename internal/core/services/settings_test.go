package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wikichat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/wikichat/internal/core/domain"
)

func newSettings(t *testing.T, seed map[string]any, env map[string]string) (*SettingsService, *memory.ConfigStore) {
	t.Helper()
	store := memory.NewConfigStore(seed)
	service := NewSettingsService(store, nil)
	service.SetEnv(func(k string) string { return env[k] })
	return service, store
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service, _ := newSettings(t, nil, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults, *settings)
	assert.Equal(t, 600, settings.Chunker.Size)
	assert.Equal(t, 100, settings.Chunker.Overlap)
	assert.Equal(t, 4, settings.Retrieval.K)
	assert.Equal(t, 8000, settings.Memory.Budget)
	assert.Equal(t, "gpt-4", settings.LLM.Model)
	assert.Equal(t, "./wiki_embeddings.idx", settings.Index.Path)
	assert.Equal(t, "20220301.simple", settings.Dataset.Subset)
	assert.Equal(t, ":8000", settings.Server.Addr)
}

func TestSettingsService_Get_ReadsStoredValues(t *testing.T) {
	service, _ := newSettings(t, map[string]any{
		"embedding.provider":            "ollama",
		"embedding.model":               "all-minilm",
		"embedding.base_url":            "http://gpu:11434",
		"embedding.requests_per_second": 2.5,
		"embedding.burst":               int64(3),
		"llm.provider":                  "anthropic",
		"llm.api_key":                   "ak",
		"chunker.chunk_size":            int64(300),
		"chunker.overlap":               int64(0),
		"chunker.separator":             "\n",
		"retrieval.k":                   int64(6),
		"memory.budget":                 int64(4000),
		"memory.backend":                "redis",
		"memory.session_ttl":            "1h",
		"memory.redis_addr":             "localhost:6379",
		"memory.redis_db":               int64(2),
		"index.path":                    "/data/wiki.idx",
		"topics.denylist":               []any{"Gallery"},
		"topics.min_words":              int64(4),
		"server.addr":                   "127.0.0.1:9000",
		"log.file":                      "/var/log/wikichat.log",
	}, nil)

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "all-minilm", settings.Embedding.Model)
	assert.Equal(t, "http://gpu:11434", settings.Embedding.BaseURL)
	assert.InDelta(t, 2.5, settings.Embedding.RequestsPerSecond, 1e-9)
	assert.Equal(t, 3, settings.Embedding.Burst)
	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, "ak", settings.LLM.APIKey)
	assert.Equal(t, domain.ChunkerSettings{Size: 300, Overlap: 0, Separator: "\n"}, settings.Chunker)
	assert.Equal(t, 6, settings.Retrieval.K)
	assert.Equal(t, domain.MemorySettings{
		Budget:     4000,
		Backend:    domain.MemoryBackendRedis,
		SessionTTL: time.Hour,
		RedisAddr:  "localhost:6379",
		RedisDB:    2,
	}, settings.Memory)
	assert.Equal(t, "/data/wiki.idx", settings.Index.Path)
	assert.Equal(t, []string{"Gallery"}, settings.Topics.Denylist)
	assert.Equal(t, 4, settings.Topics.MinWords)
	assert.Equal(t, domain.DefaultQuestionTemplates(), settings.Topics.Templates)
	assert.Equal(t, domain.ServerSettings{Addr: "127.0.0.1:9000", LogFile: "/var/log/wikichat.log"}, settings.Server)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	service, _ := newSettings(t, map[string]any{
		"embedding.provider": "invalid_provider",
		"memory.backend":     "postgres",
		"memory.session_ttl": "soon",
	}, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Memory.Backend, settings.Memory.Backend)
	assert.Equal(t, defaults.Memory.SessionTTL, settings.Memory.SessionTTL)
}

func TestSettingsService_Get_EnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name      string
		seed      map[string]any
		env       map[string]string
		wantEmbed string
		wantLLM   string
		wantModel string
	}{
		{
			name:      "openai key fills both",
			env:       map[string]string{EnvOpenAIKey: "sk-env"},
			wantEmbed: "sk-env",
			wantLLM:   "sk-env",
			wantModel: "gpt-4",
		},
		{
			name:      "env wins over file",
			seed:      map[string]any{"llm.api_key": "sk-file", "embedding.api_key": "sk-file"},
			env:       map[string]string{EnvOpenAIKey: "sk-env", EnvOpenAIModel: "gpt-4o"},
			wantEmbed: "sk-env",
			wantLLM:   "sk-env",
			wantModel: "gpt-4o",
		},
		{
			name:      "anthropic key only for anthropic llm",
			seed:      map[string]any{"llm.provider": "anthropic", "llm.model": "claude-3-5-haiku-latest"},
			env:       map[string]string{EnvAnthropicKey: "ak-env", EnvOpenAIModel: "gpt-4o"},
			wantLLM:   "ak-env",
			wantModel: "claude-3-5-haiku-latest",
		},
		{
			name:      "no env keeps file",
			seed:      map[string]any{"llm.api_key": "sk-file"},
			wantLLM:   "sk-file",
			wantModel: "gpt-4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newSettings(t, tt.seed, tt.env)

			settings, err := service.Get()

			require.NoError(t, err)
			assert.Equal(t, tt.wantEmbed, settings.Embedding.APIKey)
			assert.Equal(t, tt.wantLLM, settings.LLM.APIKey)
			assert.Equal(t, tt.wantModel, settings.LLM.Model)
		})
	}
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	service, _ := newSettings(t, nil, nil)

	settings := domain.DefaultAppSettings()
	settings.Embedding = domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama, Model: "nomic-embed-text", BaseURL: "http://localhost:11434",
		RequestsPerSecond: 1, Burst: 2,
	}
	settings.Chunker.Overlap = 50
	settings.Memory.SessionTTL = 10 * time.Minute
	settings.Topics.PerTopic = 3

	require.NoError(t, service.Save(&settings))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, settings, *got)
}

func TestSettingsService_Save_SkipsEmptyAPIKeys(t *testing.T) {
	service, store := newSettings(t, nil, nil)

	settings := domain.DefaultAppSettings()
	require.NoError(t, service.Save(&settings))

	_, exists := store.Get("embedding.api_key")
	assert.False(t, exists)
	_, exists = store.Get("llm.api_key")
	assert.False(t, exists)
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	service, _ := newSettings(t, nil, nil)

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "", ""))
	settings, _ := service.Get()
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.Equal(t, "http://localhost:11434", settings.Embedding.BaseURL)

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "text-embedding-3-large", "sk"))
	settings, _ = service.Get()
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.Empty(t, settings.Embedding.BaseURL)
	assert.Equal(t, "sk", settings.Embedding.APIKey)
}

func TestSettingsService_SetEmbeddingProvider_Errors(t *testing.T) {
	service, _ := newSettings(t, nil, nil)

	assert.ErrorIs(t, service.SetEmbeddingProvider("bogus", "", ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.SetEmbeddingProvider(domain.AIProviderAnthropic, "", "k"), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", ""), domain.ErrInvalidInput)
}

func TestSettingsService_SetEmbeddingProvider_KeyFromEnv(t *testing.T) {
	service, store := newSettings(t, nil, map[string]string{EnvOpenAIKey: "sk-env"})

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", ""))

	_, exists := store.Get("embedding.api_key")
	assert.False(t, exists, "env key must not be written to the config file")
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	service, _ := newSettings(t, map[string]any{"llm.base_url": "http://gpu:11434"}, nil)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderOllama, "", ""))
	settings, _ := service.Get()
	assert.Equal(t, "llama3.2", settings.LLM.Model)
	assert.Equal(t, "http://gpu:11434", settings.LLM.BaseURL)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderAnthropic, "", "ak"))
	settings, _ = service.Get()
	assert.Equal(t, "claude-3-5-sonnet-latest", settings.LLM.Model)
	assert.Empty(t, settings.LLM.BaseURL)

	assert.ErrorIs(t, service.SetLLMProvider(domain.AIProviderOpenAI, "", ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.SetLLMProvider("bogus", "", ""), domain.ErrInvalidInput)
}

func TestSettingsService_SetMemory(t *testing.T) {
	service, _ := newSettings(t, nil, nil)

	require.NoError(t, service.SetMemory(domain.MemoryBackendRedis, 2000, "redis:6379"))
	settings, _ := service.Get()
	assert.Equal(t, domain.MemoryBackendRedis, settings.Memory.Backend)
	assert.Equal(t, 2000, settings.Memory.Budget)
	assert.Equal(t, "redis:6379", settings.Memory.RedisAddr)

	require.NoError(t, service.SetMemory(domain.MemoryBackendLocal, 0, ""))
	settings, _ = service.Get()
	assert.Equal(t, 2000, settings.Memory.Budget, "zero budget keeps current value")

	assert.ErrorIs(t, service.SetMemory("disk", 0, ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.SetMemory(domain.MemoryBackendLocal, -1, ""), domain.ErrInvalidInput)
}

func TestSettingsService_SetMemory_RedisNeedsAddress(t *testing.T) {
	service, _ := newSettings(t, nil, nil)
	assert.ErrorIs(t, service.SetMemory(domain.MemoryBackendRedis, 0, ""), domain.ErrInvalidInput)
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		seed    map[string]any
		env     map[string]string
		wantErr error
	}{
		{
			name: "configured",
			env:  map[string]string{EnvOpenAIKey: "sk"},
		},
		{
			name:    "no openai key",
			wantErr: domain.ErrEmbeddingUnavailable,
		},
		{
			name:    "llm missing key",
			seed:    map[string]any{"embedding.provider": "ollama", "llm.provider": "anthropic"},
			wantErr: domain.ErrLLMUnavailable,
		},
		{
			name:    "bad k",
			seed:    map[string]any{"retrieval.k": int64(-1)},
			env:     map[string]string{EnvOpenAIKey: "sk"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "negative overlap",
			seed:    map[string]any{"chunker.overlap": int64(-5)},
			env:     map[string]string{EnvOpenAIKey: "sk"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "redis without address",
			seed:    map[string]any{"memory.backend": "redis"},
			env:     map[string]string{EnvOpenAIKey: "sk"},
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newSettings(t, tt.seed, tt.env)

			err := service.Validate()

			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service, _ := newSettings(t, nil, nil)
	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}

// failingConfigStore fails Set for one key, or every key when failOn is empty.
type failingConfigStore struct {
	*memory.ConfigStore
	failOn string
}

func (f *failingConfigStore) Set(key string, value any) error {
	if f.failOn == "" || key == f.failOn {
		return assert.AnError
	}
	return f.ConfigStore.Set(key, value)
}

func TestSettingsService_Save_PropagatesStoreErrors(t *testing.T) {
	for _, key := range []string{"embedding.provider", "llm.model", "chunker.overlap", "memory.session_ttl", "topics.denylist"} {
		t.Run(key, func(t *testing.T) {
			store := &failingConfigStore{ConfigStore: memory.NewConfigStore(), failOn: key}
			service := NewSettingsService(store, nil)

			settings := domain.DefaultAppSettings()
			err := service.Save(&settings)

			require.Error(t, err)
			assert.ErrorIs(t, err, assert.AnError)
			assert.Contains(t, err.Error(), key)
		})
	}
}

type mockAIConfigValidator struct {
	embedErr error
	llmErr   error
	gotLLM   *domain.LLMSettings
}

func (m *mockAIConfigValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error {
	return m.embedErr
}

func (m *mockAIConfigValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	m.gotLLM = cfg
	return m.llmErr
}

func TestSettingsService_ValidateProviders(t *testing.T) {
	service, _ := newSettings(t, nil, nil)
	assert.NoError(t, service.ValidateEmbeddingConfig(), "nil validator")
	assert.NoError(t, service.ValidateLLMConfig(), "nil validator")

	validator := &mockAIConfigValidator{embedErr: errors.New("unreachable")}
	service = NewSettingsService(memory.NewConfigStore(), validator)
	service.SetEnv(func(k string) string {
		if k == EnvOpenAIKey {
			return "sk-env"
		}
		return ""
	})

	assert.EqualError(t, service.ValidateEmbeddingConfig(), "unreachable")
	require.NoError(t, service.ValidateLLMConfig())
	assert.Equal(t, "sk-env", validator.gotLLM.APIKey, "validator sees env overrides")
}
