package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/wikichat/internal/core/domain"
	"github.com/custodia-labs/wikichat/internal/core/ports/driven"
	"github.com/custodia-labs/wikichat/internal/logger"
)

// Prefixes used when rendering conversation history into a prompt.
const (
	summaryPrefix   = "System: "
	humanPrefix     = "Human: "
	assistantPrefix = "AI: "
)

// SummaryMemory keeps recent turns verbatim and folds older turns into a
// running summary once the rendered turns exceed a character budget.
type SummaryMemory struct {
	llm    driven.LLMService
	budget int
}

// NewSummaryMemory creates a summarising memory.
// A non-positive budget uses domain.DefaultMemoryBudget.
func NewSummaryMemory(llm driven.LLMService, budget int) *SummaryMemory {
	if budget <= 0 {
		budget = domain.DefaultMemoryBudget
	}
	return &SummaryMemory{llm: llm, budget: budget}
}

// Budget returns the character budget for verbatim turns.
func (m *SummaryMemory) Budget() int {
	return m.budget
}

// Append adds turns to conv and prunes it back under the budget.
// The newest turn is always kept verbatim.
func (m *SummaryMemory) Append(ctx context.Context, conv *domain.Conversation, turns ...domain.Turn) error {
	conv.Turns = append(conv.Turns, turns...)
	return m.prune(ctx, conv)
}

func (m *SummaryMemory) prune(ctx context.Context, conv *domain.Conversation) error {
	if renderedLen(conv.Turns) <= m.budget {
		return nil
	}

	cut := 0
	for cut < len(conv.Turns)-1 && renderedLen(conv.Turns[cut:]) > m.budget {
		cut++
	}
	if cut == 0 {
		return nil
	}

	popped := conv.Turns[:cut]
	if m.llm == nil {
		return domain.ErrLLMUnavailable
	}

	summary, err := m.llm.Summarise(ctx, conv.Summary, renderTurns(popped))
	if err != nil {
		return fmt.Errorf("summarise history: %w", err)
	}

	logger.Debug("Folded %d turns into summary (%d chars)", cut, len(summary))
	conv.Summary = strings.TrimSpace(summary)
	conv.Turns = append([]domain.Turn(nil), conv.Turns[cut:]...)
	return nil
}

// Render formats the conversation as prompt history: the summary as a
// System line followed by Human and AI lines in order.
func Render(conv *domain.Conversation) string {
	if conv.IsEmpty() {
		return ""
	}

	var b strings.Builder
	if conv.Summary != "" {
		b.WriteString(summaryPrefix)
		b.WriteString(conv.Summary)
		if len(conv.Turns) > 0 {
			b.WriteByte('\n')
		}
	}
	b.WriteString(renderTurns(conv.Turns))
	return b.String()
}

func renderTurns(turns []domain.Turn) string {
	lines := make([]string, len(turns))
	for i, t := range turns {
		lines[i] = renderTurn(t)
	}
	return strings.Join(lines, "\n")
}

func renderTurn(t domain.Turn) string {
	if t.Role == domain.RoleAssistant {
		return assistantPrefix + t.Content
	}
	return humanPrefix + t.Content
}

// renderedLen is the length in characters of the rendered turns.
func renderedLen(turns []domain.Turn) int {
	if len(turns) == 0 {
		return 0
	}
	n := len(turns) - 1
	for _, t := range turns {
		n += len([]rune(renderTurn(t)))
	}
	return n
}
