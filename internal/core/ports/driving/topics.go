package driving

import "context"

// TopicService suggests topics from the index and turns them into questions.
type TopicService interface {
	// SuggestTopics searches the index and returns cleaned, de-duplicated
	// chunk contents, nearest first.
	SuggestTopics(ctx context.Context, query string, k int) ([]string, error)

	// GenerateQuestions applies up to perTopic templates to each topic.
	GenerateQuestions(topics []string, perTopic int) []string

	// SaveQuestions writes one question per line to path.
	SaveQuestions(path string, questions []string) error
}
