// Command wikichat answers questions about Wikipedia articles.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/wikichat/internal/adapters/driven/ai"
	"github.com/custodia-labs/wikichat/internal/adapters/driven/config/file"
	"github.com/custodia-labs/wikichat/internal/adapters/driven/dataset/huggingface"
	"github.com/custodia-labs/wikichat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/wikichat/internal/adapters/driven/storage/redis"
	"github.com/custodia-labs/wikichat/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/wikichat/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/wikichat/internal/adapters/driving/cli"
	"github.com/custodia-labs/wikichat/internal/core/domain"
	"github.com/custodia-labs/wikichat/internal/core/ports/driven"
	"github.com/custodia-labs/wikichat/internal/core/services"
	"github.com/custodia-labs/wikichat/internal/logger"
	"github.com/custodia-labs/wikichat/internal/postprocessors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal; other read errors are worth a warning.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("loading .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	home, err := file.DefaultDir()
	if err != nil {
		return fmt.Errorf("resolving home directory: %w", err)
	}

	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	prompts, err := file.NewPromptStore(filepath.Join(home, "prompts"))
	if err != nil {
		return fmt.Errorf("opening prompts: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}
	if settings.Server.LogFile != "" {
		logger.SetFile(settings.Server.LogFile)
	}
	defer logger.Sync() //nolint:errcheck // nothing useful to do on exit

	articles, err := sqlite.NewStore(filepath.Join(home, "data"))
	if err != nil {
		return fmt.Errorf("opening article store: %w", err)
	}
	defer articles.Close()

	conversations, err := newConversationStore(ctx, settings.Memory)
	if err != nil {
		return err
	}
	defer conversations.Close()

	aiServices, err := ai.Initialise(settings, prompts)
	if err != nil {
		return err
	}
	defer aiServices.Close()

	pipeline, err := postprocessors.NewDefaultPipeline(settings.Chunker)
	if err != nil {
		return fmt.Errorf("building chunker: %w", err)
	}

	dataset := huggingface.NewClient(huggingface.Config{
		BaseURL: settings.Dataset.BaseURL,
		Token:   os.Getenv("HF_TOKEN"),
	})
	indexes := flat.NewStore()

	articleService := services.NewArticleService(articles, dataset, settings.Dataset.Split)
	ingestService := services.NewIngestService(articles, pipeline, aiServices.EmbeddingService, indexes)
	retrievalService := services.NewRetrievalService(
		aiServices.EmbeddingService, indexes, settings.Index.Path, settings.Retrieval.K,
	)
	defer retrievalService.Close()

	// The index is optional until a question is asked.
	if aiServices.EmbeddingService != nil && indexes.Exists(settings.Index.Path) {
		if err := retrievalService.Reload(ctx); err != nil {
			logger.Warn("loading vector index: %v", err)
		}
	}
	ingestService.OnIndexed(func(path string) {
		if path != settings.Index.Path {
			return
		}
		if err := retrievalService.Reload(ctx); err != nil {
			logger.Warn("reloading vector index: %v", err)
		}
	})

	summary := services.NewSummaryMemory(aiServices.LLMService, settings.Memory.Budget)
	chatService := services.NewChatService(
		retrievalService, aiServices.LLMService, conversations, summary, prompts,
	)
	chatService.SetObserver(func(sessionID string, state domain.PipelineState) {
		logger.Debug("session %s: %s", sessionID, state)
	})

	topicService := services.NewTopicService(retrievalService, services.TopicConfig{
		MinWords:  settings.Topics.MinWords,
		Denylist:  settings.Topics.Denylist,
		Templates: settings.Topics.Templates,
	})

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Articles:  articleService,
		Ingest:    ingestService,
		Chat:      chatService,
		Retrieval: retrievalService,
		Topics:    topicService,
		Settings:  settingsService,
	})

	return cli.ExecuteContext(ctx)
}

func newConversationStore(ctx context.Context, cfg domain.MemorySettings) (driven.ConversationStore, error) {
	switch cfg.Backend {
	case domain.MemoryBackendRedis:
		store, err := redis.NewConversationStore(ctx, redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.SessionTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return store, nil
	default:
		return memory.NewConversationStore(cfg.SessionTTL), nil
	}
}
