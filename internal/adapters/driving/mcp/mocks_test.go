package mcp

import (
	"context"

	"github.com/custodia-labs/wikichat/internal/core/domain"
	"github.com/custodia-labs/wikichat/internal/core/ports/driving"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	answer   *domain.Answer
	err      error
	session  string
	question string
}

func (m *mockChatService) NewSession() string { return "new-session" }

func (m *mockChatService) Ask(_ context.Context, sessionID, question string) (*domain.Answer, error) {
	m.session, m.question = sessionID, question
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func (m *mockChatService) History(context.Context, string) (*domain.Conversation, error) {
	return &domain.Conversation{}, nil
}

func (m *mockChatService) Reset(context.Context, string) error { return m.err }

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results []domain.ScoredChunk
	err     error
	k       int
}

func (m *mockRetrievalService) Retrieve(context.Context, string) ([]domain.Chunk, error) {
	return nil, m.err
}

func (m *mockRetrievalService) SimilaritySearch(_ context.Context, _ string, k int) ([]domain.ScoredChunk, error) {
	m.k = k
	return m.results, m.err
}

func (m *mockRetrievalService) Reload(context.Context) error { return nil }
func (m *mockRetrievalService) Size() int                    { return len(m.results) }

// mockTopicService is a mock implementation of driving.TopicService.
type mockTopicService struct {
	topics   []string
	err      error
	k        int
	perTopic int
}

func (m *mockTopicService) SuggestTopics(_ context.Context, _ string, k int) ([]string, error) {
	m.k = k
	return m.topics, m.err
}

func (m *mockTopicService) GenerateQuestions(topics []string, perTopic int) []string {
	m.perTopic = perTopic
	var out []string
	for _, t := range topics {
		out = append(out, "What is "+t+"?")
	}
	return out
}

func (m *mockTopicService) SaveQuestions(string, []string) error { return nil }

// mockArticleService is a mock implementation of driving.ArticleService.
type mockArticleService struct {
	articles []domain.Article
	err      error
}

func (m *mockArticleService) List(context.Context) ([]domain.Article, error) {
	return m.articles, m.err
}

func (m *mockArticleService) Get(_ context.Context, id string) (*domain.Article, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.articles {
		if m.articles[i].ID == id {
			return &m.articles[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockArticleService) DeleteAll(context.Context) (int, error) { return 0, m.err }

func (m *mockArticleService) Load(context.Context, driving.LoadOptions) (int, error) {
	return 0, m.err
}
