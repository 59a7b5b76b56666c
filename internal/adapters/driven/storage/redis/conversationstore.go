// Package redis provides a Redis-backed conversation store so several
// server processes can share session memory.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/wikichat/internal/core/domain"
	"github.com/custodia-labs/wikichat/internal/core/ports/driven"
	"github.com/custodia-labs/wikichat/internal/logger"
)

// DefaultKeyPrefix namespaces conversation keys.
const DefaultKeyPrefix = "wikichat:conversation:"

// Ensure ConversationStore implements the interface.
var _ driven.ConversationStore = (*ConversationStore)(nil)

// Config holds Redis connection settings.
type Config struct {
	// Addr is either host:port or a redis:// URL.
	Addr     string
	Password string
	DB       int

	// TTL is the idle expiry of a session. Zero keeps sessions forever.
	TTL time.Duration

	// KeyPrefix defaults to DefaultKeyPrefix.
	KeyPrefix string
}

// ConversationStore stores each session's conversation as a JSON value.
type ConversationStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
}

// NewConversationStore connects to Redis and verifies the connection.
func NewConversationStore(ctx context.Context, cfg Config) (*ConversationStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: redis address is empty", domain.ErrInvalidInput)
	}

	opt, err := redis.ParseURL(cfg.Addr)
	if err != nil {
		opt = &redis.Options{Addr: cfg.Addr}
	}
	if cfg.Password != "" {
		opt.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opt.DB = cfg.DB
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", opt.Addr, err)
	}

	logger.Debug("redis conversation store connected to %s (db %d)", opt.Addr, opt.DB)
	return NewConversationStoreWithClient(client, cfg.TTL, cfg.KeyPrefix), nil
}

// NewConversationStoreWithClient wraps an existing client.
func NewConversationStoreWithClient(client redis.UniversalClient, ttl time.Duration, prefix string) *ConversationStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if ttl < 0 {
		ttl = 0
	}
	return &ConversationStore{client: client, ttl: ttl, prefix: prefix}
}

// Get returns the session's conversation, or an empty one if unknown.
func (s *ConversationStore) Get(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &domain.Conversation{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting conversation: %w", err)
	}

	var conv domain.Conversation
	if err := json.Unmarshal(raw, &conv); err != nil {
		return nil, fmt.Errorf("unmarshalling conversation: %w", err)
	}
	return &conv, nil
}

// Save writes the conversation and refreshes its TTL.
func (s *ConversationStore) Save(ctx context.Context, sessionID string, conv *domain.Conversation) error {
	if conv == nil {
		conv = &domain.Conversation{}
	}

	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("marshalling conversation: %w", err)
	}

	if err := s.client.Set(ctx, s.key(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("saving conversation: %w", err)
	}
	return nil
}

// Delete forgets a session.
func (s *ConversationStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("deleting conversation: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (s *ConversationStore) Close() error {
	return s.client.Close()
}

func (s *ConversationStore) key(sessionID string) string {
	return s.prefix + strings.TrimSpace(sessionID)
}
