package mcp

import (
	"github.com/custodia-labs/wikichat/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Chat answers questions with conversation memory.
	Chat driving.ChatService

	// Retrieval runs similarity searches over the index.
	Retrieval driving.RetrievalService

	// Topics suggests topics and questions. Optional.
	Topics driving.TopicService

	// Articles exposes stored articles as resources. Optional.
	Articles driving.ArticleService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
