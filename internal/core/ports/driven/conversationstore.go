package driven

import (
	"context"

	"github.com/custodia-labs/wikichat/internal/core/domain"
)

// ConversationStore keeps conversation memory per session.
type ConversationStore interface {
	// Get returns the conversation for a session.
	// An unknown session yields an empty conversation, not an error.
	Get(ctx context.Context, sessionID string) (*domain.Conversation, error)

	// Save stores the conversation for a session and refreshes its expiry.
	Save(ctx context.Context, sessionID string, conv *domain.Conversation) error

	// Delete forgets a session.
	Delete(ctx context.Context, sessionID string) error

	// Close releases resources.
	Close() error
}
