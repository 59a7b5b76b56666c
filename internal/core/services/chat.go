package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/wikichat/internal/core/domain"
	"github.com/custodia-labs/wikichat/internal/core/ports/driven"
	"github.com/custodia-labs/wikichat/internal/core/ports/driving"
	"github.com/custodia-labs/wikichat/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// StateObserver is notified of every pipeline state change.
type StateObserver func(sessionID string, state domain.PipelineState)

// Retriever finds chunks relevant to a question.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]domain.Chunk, error)
}

// ChatService answers questions from retrieved chunks and keeps a
// summarising memory per session.
type ChatService struct {
	retriever Retriever
	llm       driven.LLMService
	store     driven.ConversationStore
	memory    *SummaryMemory
	prompts   driven.PromptStore
	observer  StateObserver

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewChatService creates a new chat service.
func NewChatService(
	retriever Retriever,
	llm driven.LLMService,
	store driven.ConversationStore,
	memory *SummaryMemory,
	prompts driven.PromptStore,
) *ChatService {
	if memory == nil {
		memory = NewSummaryMemory(llm, domain.DefaultMemoryBudget)
	}
	return &ChatService{
		retriever: retriever,
		llm:       llm,
		store:     store,
		memory:    memory,
		prompts:   prompts,
		locks:     make(map[string]*sessionLock),
	}
}

// SetObserver registers a callback for pipeline state changes.
func (s *ChatService) SetObserver(fn StateObserver) {
	s.observer = fn
}

// NewSession returns a fresh session identifier.
func (s *ChatService) NewSession() string {
	return uuid.New().String()
}

// Ask runs one question through the pipeline. Questions within a session
// are answered one at a time.
func (s *ChatService) Ask(ctx context.Context, sessionID, question string) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.ErrEmptyQuestion
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if sessionID == "" {
		sessionID = s.NewSession()
	}

	unlock := s.lock(sessionID)
	defer unlock()
	defer s.transition(sessionID, domain.StateIdle)

	conv, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}

	s.transition(sessionID, domain.StateRetrieving)
	chunks, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	s.transition(sessionID, domain.StateComposing)
	messages := []driven.ChatMessage{
		{Role: "system", Content: driven.LoadPrompt(s.prompts, driven.PromptQASystem)},
		{Role: "user", Content: composeQuestion(Render(conv), chunks, question)},
	}

	s.transition(sessionID, domain.StateCallingLLM)
	text, err := s.llm.Chat(ctx, messages, driven.ChatOptions{Temperature: 0})
	if err != nil {
		return nil, fmt.Errorf("ask %s: %w", s.llm.ModelName(), err)
	}
	text = strings.TrimSpace(text)

	s.transition(sessionID, domain.StateUpdatingMemory)
	err = s.memory.Append(ctx, conv,
		domain.Turn{Role: domain.RoleUser, Content: question},
		domain.Turn{Role: domain.RoleAssistant, Content: text},
	)
	if err != nil {
		// The turns are appended before pruning, so the exchange is kept unsummarised.
		logger.Warn("Session %s: memory not pruned: %v", sessionID, err)
	}
	if err := s.store.Save(ctx, sessionID, conv); err != nil {
		return nil, fmt.Errorf("save conversation: %w", err)
	}

	return &domain.Answer{
		SessionID: sessionID,
		Text:      text,
		Sources:   chunks,
	}, nil
}

// History returns the stored conversation of a session.
func (s *ChatService) History(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	conv, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	return conv, nil
}

// Reset forgets the conversation of a session.
func (s *ChatService) Reset(ctx context.Context, sessionID string) error {
	unlock := s.lock(sessionID)
	defer unlock()

	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("reset conversation: %w", err)
	}
	logger.Debug("Reset session %s", sessionID)
	return nil
}

func (s *ChatService) transition(sessionID string, state domain.PipelineState) {
	logger.Debug("[%s] %s", sessionID, state)
	if s.observer != nil {
		s.observer(sessionID, state)
	}
}

// lock acquires the session mutex. Entries are dropped once unused.
func (s *ChatService) lock(sessionID string) func() {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, sessionID)
		}
		s.mu.Unlock()
	}
}

// composeQuestion builds the user message from history, retrieved chunks
// and the question.
func composeQuestion(history string, chunks []domain.Chunk, question string) string {
	var b strings.Builder

	if history != "" {
		b.WriteString("Conversation so far:\n")
		b.WriteString(history)
		b.WriteString("\n\n")
	}

	b.WriteString("Context:\n")
	for i, c := range chunks {
		fmt.Fprintf(&b, "[%d] (%s, %s) %s\n", i+1, c.Metadata.Title, c.Metadata.Field, c.Content)
		if c.Metadata.SourceURL != "" {
			fmt.Fprintf(&b, "Source: %s\n", c.Metadata.SourceURL)
		}
	}

	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	return b.String()
}
