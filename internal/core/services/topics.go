package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/wikichat/internal/core/domain"
	"github.com/custodia-labs/wikichat/internal/core/ports/driving"
	"github.com/custodia-labs/wikichat/internal/logger"
)

// Ensure TopicService implements the interface.
var _ driving.TopicService = (*TopicService)(nil)

// TopicConfig controls topic filtering and question templates.
type TopicConfig struct {
	MinWords  int
	Denylist  []string
	Templates []string
}

// TopicService turns indexed chunks into topics and sample questions.
type TopicService struct {
	retrieval driving.RetrievalService
	cfg       TopicConfig
}

// NewTopicService creates a topic service. Zero config fields use the
// defaults from domain.
func NewTopicService(retrieval driving.RetrievalService, cfg TopicConfig) *TopicService {
	if cfg.MinWords <= 0 {
		cfg.MinWords = domain.DefaultTopicMinWords
	}
	if cfg.Denylist == nil {
		cfg.Denylist = domain.DefaultTopicDenylist()
	}
	if len(cfg.Templates) == 0 {
		cfg.Templates = domain.DefaultQuestionTemplates()
	}
	return &TopicService{retrieval: retrieval, cfg: cfg}
}

// SuggestTopics returns cleaned chunk contents nearest to query.
func (s *TopicService) SuggestTopics(ctx context.Context, query string, k int) ([]string, error) {
	if strings.TrimSpace(query) == "" {
		query = domain.DefaultTopicQuery
	}
	if k <= 0 {
		k = domain.DefaultTopicK
	}

	results, err := s.retrieval.SimilaritySearch(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("search topics: %w", err)
	}

	seen := make(map[string]struct{}, len(results))
	topics := make([]string, 0, len(results))
	for _, r := range results {
		topic := cleanTopic(r.Chunk.Content)
		if !s.accept(topic) {
			continue
		}
		if _, dup := seen[topic]; dup {
			continue
		}
		seen[topic] = struct{}{}
		topics = append(topics, topic)
	}

	logger.Debug("Kept %d of %d topics", len(topics), len(results))
	return topics, nil
}

func (s *TopicService) accept(topic string) bool {
	if len(strings.Fields(topic)) < s.cfg.MinWords {
		return false
	}
	for _, term := range s.cfg.Denylist {
		if term != "" && strings.Contains(topic, term) {
			return false
		}
	}
	return true
}

// GenerateQuestions applies the first perTopic templates to each topic.
// Duplicate questions are dropped.
func (s *TopicService) GenerateQuestions(topics []string, perTopic int) []string {
	if perTopic <= 0 {
		perTopic = domain.DefaultTopicPerTopic
	}
	templates := s.cfg.Templates
	if perTopic < len(templates) {
		templates = templates[:perTopic]
	}

	seen := make(map[string]struct{})
	var questions []string
	for _, topic := range topics {
		for _, tmpl := range templates {
			q := strings.ReplaceAll(tmpl, "{}", topic)
			if _, dup := seen[q]; dup {
				continue
			}
			seen[q] = struct{}{}
			questions = append(questions, q)
		}
	}
	return questions
}

// SaveQuestions writes one question per line to path.
func (s *TopicService) SaveQuestions(path string, questions []string) error {
	if path == "" {
		path = domain.DefaultQuestionsPath
	}

	var b strings.Builder
	for _, q := range questions {
		b.WriteString(q)
		b.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write questions: %w", err)
	}
	logger.Info("Saved %d questions to %s", len(questions), path)
	return nil
}

func cleanTopic(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
