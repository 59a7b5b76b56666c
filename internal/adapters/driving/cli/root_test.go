package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/wikichat/internal/core/domain"
	"github.com/custodia-labs/wikichat/internal/core/ports/driving"
)

type mockArticleService struct {
	articles []domain.Article
	loaded   int
	loadOpts driving.LoadOptions
	err      error
}

func (m *mockArticleService) List(_ context.Context) ([]domain.Article, error) {
	return m.articles, m.err
}

func (m *mockArticleService) Get(_ context.Context, id string) (*domain.Article, error) {
	for i := range m.articles {
		if m.articles[i].ID == id {
			return &m.articles[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockArticleService) DeleteAll(_ context.Context) (int, error) {
	return len(m.articles), m.err
}

func (m *mockArticleService) Load(_ context.Context, opts driving.LoadOptions) (int, error) {
	m.loadOpts = opts
	return m.loaded, m.err
}

type mockIngestService struct {
	articles []domain.Article
	report   *domain.BatchReport
	err      error
	opts     driving.IngestOptions
	exists   bool
	deleted  []string
}

func (m *mockIngestService) Ingest(_ context.Context, opts driving.IngestOptions) (*domain.BatchReport, error) {
	m.opts = opts
	for _, a := range m.articles {
		if opts.OnArticle != nil {
			opts.OnArticle(a)
		}
	}
	return m.report, m.err
}

func (m *mockIngestService) IndexExists(_ string) bool {
	return m.exists
}

func (m *mockIngestService) DeleteIndex(path string) (bool, error) {
	m.deleted = append(m.deleted, path)
	return m.exists, nil
}

type mockChatService struct {
	asked   []string
	session string
	err     error
}

func (m *mockChatService) NewSession() string {
	return "session-1"
}

func (m *mockChatService) Ask(_ context.Context, sessionID, question string) (*domain.Answer, error) {
	m.asked = append(m.asked, question)
	m.session = sessionID
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Answer{SessionID: sessionID, Text: "answer to " + question}, nil
}

func (m *mockChatService) History(_ context.Context, _ string) (*domain.Conversation, error) {
	return &domain.Conversation{}, nil
}

func (m *mockChatService) Reset(_ context.Context, _ string) error {
	return nil
}

type mockRetrievalService struct {
	reloads atomic.Int32
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ string) ([]domain.Chunk, error) {
	return nil, nil
}

func (m *mockRetrievalService) SimilaritySearch(_ context.Context, _ string, _ int) ([]domain.ScoredChunk, error) {
	return nil, nil
}

func (m *mockRetrievalService) Reload(_ context.Context) error {
	m.reloads.Add(1)
	return nil
}

func (m *mockRetrievalService) Size() int {
	return 3
}

type mockTopicService struct {
	topics   []string
	err      error
	query    string
	k        int
	perTopic int
	saved    []string
	savePath string
}

func (m *mockTopicService) SuggestTopics(_ context.Context, query string, k int) ([]string, error) {
	m.query, m.k = query, k
	return m.topics, m.err
}

func (m *mockTopicService) GenerateQuestions(topics []string, perTopic int) []string {
	m.perTopic = perTopic
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		out = append(out, "What is "+t+"?")
	}
	return out
}

func (m *mockTopicService) SaveQuestions(path string, questions []string) error {
	m.savePath = path
	m.saved = questions
	return nil
}

type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	embedding   []string
	llm         []string
	memory      []string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.embedding = []string{string(provider), model, apiKey}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.llm = []string{string(provider), model, apiKey}
	return nil
}

func (m *mockSettingsService) SetMemory(backend domain.MemoryBackend, budget int, redisAddr string) error {
	if !backend.IsValid() {
		return errors.New("invalid backend")
	}
	m.memory = []string{string(backend), strconv.Itoa(budget), redisAddr}
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error {
	return nil
}

func (m *mockSettingsService) ValidateLLMConfig() error {
	return nil
}

// testServices are the mocks installed by setupTestServices.
type testServices struct {
	articles  *mockArticleService
	ingest    *mockIngestService
	chat      *mockChatService
	retrieval *mockRetrievalService
	topics    *mockTopicService
	settings  *mockSettingsService
}

var current *testServices

// setupTestServices installs fresh mocks and returns a cleanup function
// that removes them and resets command state.
func setupTestServices() func() {
	current = &testServices{
		articles:  &mockArticleService{},
		ingest:    &mockIngestService{},
		chat:      &mockChatService{},
		retrieval: &mockRetrievalService{},
		topics:    &mockTopicService{},
		settings:  newMockSettingsService(),
	}
	SetServices(Services{
		Articles:  current.articles,
		Ingest:    current.ingest,
		Chat:      current.chat,
		Retrieval: current.retrieval,
		Topics:    current.topics,
		Settings:  current.settings,
	})
	return func() {
		SetServices(Services{})
		resetCommands()
		current = nil
	}
}

// resetCommands restores every flag to its default, since cobra keeps
// flag values between Execute calls.
func resetCommands() {
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			})
		}
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)
	rootCmd.SetArgs(nil)
	rootCmd.SetIn(nil)
}

// execute runs the root command with args and stdin, returning the output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetCommands()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(resetCommands)

	err := rootCmd.Execute()
	return buf.String(), err
}
