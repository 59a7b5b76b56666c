package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/wikichat/internal/core/domain"
)

// Tool defaults.
const (
	defaultSearchK   = 4
	defaultTopicK    = 10
	defaultPerTopic  = 2
	maxSearchResults = 50
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question  string `json:"question" jsonschema:"the question to ask about the indexed Wikipedia articles"`
	SessionID string `json:"session_id,omitempty" jsonschema:"conversation to continue; a new one is started when empty"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string         `json:"answer"`
	SessionID string         `json:"session_id"`
	Sources   []SourceOutput `json:"sources"`
}

// SourceOutput identifies a chunk an answer was grounded on.
type SourceOutput struct {
	Title     string `json:"title"`
	SourceURL string `json:"source_url"`
	Field     string `json:"field"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"text to find similar article chunks for"`
	K     int    `json:"k,omitempty" jsonschema:"number of chunks to return (default 4)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single similarity hit.
type SearchResultOutput struct {
	ChunkID   string  `json:"chunk_id"`
	ArticleID string  `json:"article_id"`
	Title     string  `json:"title"`
	SourceURL string  `json:"source_url"`
	Field     string  `json:"field"`
	Score     float64 `json:"score"`
	Content   string  `json:"content"`
}

// SuggestTopicsInput is the input schema for the suggest_topics tool.
type SuggestTopicsInput struct {
	Query    string `json:"query,omitempty" jsonschema:"search used to find topics"`
	K        int    `json:"k,omitempty" jsonschema:"number of chunks to consider (default 10)"`
	PerTopic int    `json:"per_topic,omitempty" jsonschema:"questions per topic (default 2)"`
}

// SuggestTopicsOutput is the output schema for the suggest_topics tool.
type SuggestTopicsOutput struct {
	Topics    []string `json:"topics"`
	Questions []string `json:"questions"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask a question answered from the indexed Wikipedia articles",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find the article chunks most similar to a query",
	}, s.handleSearch)

	if s.ports.Topics != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "suggest_topics",
			Description: "Suggest topics from the index and sample questions about them",
		}, s.handleSuggestTopics)
	}
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Chat.Ask(ctx, input.SessionID, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:    answer.Text,
		SessionID: answer.SessionID,
		Sources:   make([]SourceOutput, len(answer.Sources)),
	}
	for i, c := range answer.Sources {
		output.Sources[i] = SourceOutput{
			Title:     c.Metadata.Title,
			SourceURL: c.Metadata.SourceURL,
			Field:     c.Metadata.Field.String(),
		}
	}
	return nil, output, nil
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	if input.Query == "" {
		return nil, SearchOutput{}, errors.New("query is required")
	}
	k := input.K
	if k <= 0 {
		k = defaultSearchK
	}
	k = min(k, maxSearchResults)

	results, err := s.ports.Retrieval.SimilaritySearch(ctx, input.Query, k)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = toResult(results[i])
	}
	return nil, output, nil
}

func (s *Server) handleSuggestTopics(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SuggestTopicsInput,
) (*mcp.CallToolResult, SuggestTopicsOutput, error) {
	k := input.K
	if k <= 0 {
		k = defaultTopicK
	}
	perTopic := input.PerTopic
	if perTopic <= 0 {
		perTopic = defaultPerTopic
	}

	topics, err := s.ports.Topics.SuggestTopics(ctx, input.Query, k)
	if err != nil {
		return nil, SuggestTopicsOutput{}, err
	}

	questions := s.ports.Topics.GenerateQuestions(topics, perTopic)
	if topics == nil {
		topics = []string{}
	}
	if questions == nil {
		questions = []string{}
	}
	return nil, SuggestTopicsOutput{Topics: topics, Questions: questions}, nil
}

func toResult(r domain.ScoredChunk) SearchResultOutput {
	return SearchResultOutput{
		ChunkID:   r.Chunk.ID,
		ArticleID: r.Chunk.ArticleID,
		Title:     r.Chunk.Metadata.Title,
		SourceURL: r.Chunk.Metadata.SourceURL,
		Field:     r.Chunk.Metadata.Field.String(),
		Score:     r.Score,
		Content:   r.Chunk.Content,
	}
}
