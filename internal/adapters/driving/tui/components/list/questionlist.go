// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/wikichat/internal/adapters/driving/tui/styles"
)

// QuestionList displays suggested questions in a navigable list.
type QuestionList struct {
	items    []string
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewQuestionList creates a new question list component.
func NewQuestionList(s *styles.Styles) *QuestionList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &QuestionList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Update handles list navigation messages.
func (l *QuestionList) Update(msg tea.Msg) (*QuestionList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the list.
func (l *QuestionList) View() string {
	if len(l.items) == 0 {
		return l.styles.Muted.Render("No suggestions")
	}

	lines := make([]string, 0, len(l.items)+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Suggested questions (%d)", len(l.items))), "")

	visible := max(l.height-2, 1)
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.items))

	maxLen := max(l.width-4, 10)
	for i := start; i < end; i++ {
		text := truncate(l.items[i], maxLen)
		if i == l.selected {
			lines = append(lines, l.styles.Selected.Render("> "+text))
		} else {
			lines = append(lines, l.styles.Normal.Render("  "+text))
		}
	}

	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// SetItems replaces the list contents and resets the selection.
func (l *QuestionList) SetItems(items []string) {
	l.items = items
	l.selected = 0
}

// Items returns the list contents.
func (l *QuestionList) Items() []string {
	return l.items
}

// Selected returns the index of the selected item.
func (l *QuestionList) Selected() int {
	return l.selected
}

// SelectedItem returns the selected question, or "" when empty.
func (l *QuestionList) SelectedItem() string {
	if l.selected < 0 || l.selected >= len(l.items) {
		return ""
	}
	return l.items[l.selected]
}

// MoveUp moves selection up.
func (l *QuestionList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *QuestionList) MoveDown() {
	if l.selected < len(l.items)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *QuestionList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of items.
func (l *QuestionList) Count() int {
	return len(l.items)
}
