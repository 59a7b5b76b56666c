package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/custodia-labs/wikichat/internal/core/domain"
	"github.com/custodia-labs/wikichat/internal/core/ports/driven"
)

// Ensure ConversationStore implements the interface.
var _ driven.ConversationStore = (*ConversationStore)(nil)

// ConversationStore keeps per-session conversation memory in process.
// Sessions expire after ttl without a Save.
type ConversationStore struct {
	cache *cache.Cache
}

// NewConversationStore creates a store whose sessions expire after ttl.
// A ttl of zero or less keeps sessions until deleted.
func NewConversationStore(ttl time.Duration) *ConversationStore {
	cleanup := ttl / 2
	if ttl <= 0 {
		ttl = cache.NoExpiration
		cleanup = 0
	}
	if cleanup > 10*time.Minute {
		cleanup = 10 * time.Minute
	}

	return &ConversationStore{
		cache: cache.New(ttl, cleanup),
	}
}

// Get returns a copy of the session's conversation.
func (s *ConversationStore) Get(_ context.Context, sessionID string) (*domain.Conversation, error) {
	if x, found := s.cache.Get(sessionID); found {
		return cloneConversation(x.(*domain.Conversation)), nil
	}
	return &domain.Conversation{}, nil
}

// Save stores a copy of the conversation and restarts its expiry.
func (s *ConversationStore) Save(_ context.Context, sessionID string, conv *domain.Conversation) error {
	s.cache.Set(sessionID, cloneConversation(conv), cache.DefaultExpiration)
	return nil
}

// Delete forgets a session.
func (s *ConversationStore) Delete(_ context.Context, sessionID string) error {
	s.cache.Delete(sessionID)
	return nil
}

// Len returns the number of live sessions.
func (s *ConversationStore) Len() int {
	return s.cache.ItemCount()
}

// Close drops every session.
func (s *ConversationStore) Close() error {
	s.cache.Flush()
	return nil
}

func cloneConversation(c *domain.Conversation) *domain.Conversation {
	if c == nil {
		return &domain.Conversation{}
	}
	out := &domain.Conversation{Summary: c.Summary}
	if len(c.Turns) > 0 {
		out.Turns = make([]domain.Turn, len(c.Turns))
		copy(out.Turns, c.Turns)
	}
	return out
}
