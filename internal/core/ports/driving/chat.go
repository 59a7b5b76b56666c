package driving

import (
	"context"

	"github.com/custodia-labs/wikichat/internal/core/domain"
)

// ChatService answers questions with retrieval-augmented generation.
// Conversation memory is kept per session.
type ChatService interface {
	// NewSession returns a fresh session identifier.
	NewSession() string

	// Ask answers a question within a session. Blank questions fail with
	// domain.ErrEmptyQuestion before any remote call.
	Ask(ctx context.Context, sessionID, question string) (*domain.Answer, error)

	// History returns the conversation memory of a session.
	History(ctx context.Context, sessionID string) (*domain.Conversation, error)

	// Reset clears the conversation memory of a session.
	Reset(ctx context.Context, sessionID string) error
}
