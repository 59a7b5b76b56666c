package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/wikichat/internal/core/domain"
	"github.com/custodia-labs/wikichat/internal/core/ports/driving"
)

// MockChatService implements driving.ChatService for testing.
type MockChatService struct {
	AskFunc func(ctx context.Context, sessionID, question string) (*domain.Answer, error)
	Asked   []string
}

func (m *MockChatService) NewSession() string { return "session-1" }

func (m *MockChatService) Ask(ctx context.Context, sessionID, question string) (*domain.Answer, error) {
	m.Asked = append(m.Asked, question)
	if m.AskFunc != nil {
		return m.AskFunc(ctx, sessionID, question)
	}
	return &domain.Answer{SessionID: sessionID, Text: "answer"}, nil
}

func (m *MockChatService) History(_ context.Context, _ string) (*domain.Conversation, error) {
	return &domain.Conversation{}, nil
}

func (m *MockChatService) Reset(_ context.Context, _ string) error { return nil }

// MockRetrievalService implements driving.RetrievalService for testing.
type MockRetrievalService struct {
	Chunks int
}

func (m *MockRetrievalService) Retrieve(_ context.Context, _ string) ([]domain.Chunk, error) {
	return nil, nil
}

func (m *MockRetrievalService) SimilaritySearch(_ context.Context, _ string, _ int) ([]domain.ScoredChunk, error) {
	return nil, nil
}

func (m *MockRetrievalService) Reload(_ context.Context) error { return nil }

func (m *MockRetrievalService) Size() int { return m.Chunks }

// MockTopicService implements driving.TopicService for testing.
type MockTopicService struct {
	Topics []string
}

func (m *MockTopicService) SuggestTopics(_ context.Context, _ string, _ int) ([]string, error) {
	return m.Topics, nil
}

func (m *MockTopicService) GenerateQuestions(topics []string, _ int) []string {
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		out = append(out, "What is "+t+"?")
	}
	return out
}

func (m *MockTopicService) SaveQuestions(_ string, _ []string) error { return nil }

var (
	_ driving.ChatService      = (*MockChatService)(nil)
	_ driving.RetrievalService = (*MockRetrievalService)(nil)
	_ driving.TopicService     = (*MockTopicService)(nil)
)

func TestNewPorts(t *testing.T) {
	chat := &MockChatService{}
	retrieval := &MockRetrievalService{}
	topics := &MockTopicService{}

	ports := NewPorts(chat, retrieval, topics)

	assert.Same(t, chat, ports.Chat)
	assert.Same(t, retrieval, ports.Retrieval)
	assert.Same(t, topics, ports.Topics)
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ports   *Ports
		wantErr error
	}{
		{name: "nil ports", ports: nil, wantErr: ErrInvalidPorts},
		{name: "missing chat", ports: &Ports{Topics: &MockTopicService{}}, wantErr: ErrMissingChatService},
		{name: "chat only", ports: &Ports{Chat: &MockChatService{}}},
		{name: "all set", ports: NewPorts(&MockChatService{}, &MockRetrievalService{}, &MockTopicService{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
