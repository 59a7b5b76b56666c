// Package tui provides an interactive terminal chat over the indexed articles.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/wikichat/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Chat answers questions. Required.
	Chat driving.ChatService

	// Retrieval reports the index size in the status bar. Optional.
	Retrieval driving.RetrievalService

	// Topics suggests questions. Optional; the topics view is disabled without it.
	Topics driving.TopicService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	chat driving.ChatService,
	retrieval driving.RetrievalService,
	topics driving.TopicService,
) *Ports {
	return &Ports{
		Chat:      chat,
		Retrieval: retrieval,
		Topics:    topics,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Chat == nil {
		return ErrMissingChatService
	}
	return nil
}
