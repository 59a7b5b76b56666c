// Package topics provides the suggested questions view for the TUI.
package topics

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/wikichat/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/wikichat/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/wikichat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/wikichat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/wikichat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/wikichat/internal/core/ports/driving"
)

// Defaults for topic discovery.
const (
	DefaultQuery    = "Most important topics"
	DefaultK        = 10
	DefaultPerTopic = 2
)

// ErrNoTopicService indicates that no topic service was provided.
var ErrNoTopicService = errors.New("topic service is required")

// View lists questions generated from the index's dominant topics.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	list      *list.QuestionList
	statusbar *status.Bar

	topicService driving.TopicService
	ctx          context.Context

	width   int
	height  int
	ready   bool
	loading bool
	err     error
}

// NewView creates a new topics view.
func NewView(s *styles.Styles, km *keymap.KeyMap, topicService driving.TopicService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:       s,
		keymap:       km,
		list:         list.NewQuestionList(s),
		statusbar:    status.NewBar(s, km.TopicsHelp()),
		topicService: topicService,
		ctx:          context.Background(),
		width:        80,
		height:       24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Load fetches suggested questions in the background.
func (v *View) Load() tea.Cmd {
	v.loading = true
	v.err = nil
	v.statusbar.SetState(status.StateThinking)
	v.statusbar.SetMessage("Finding topics...")

	svc, ctx := v.topicService, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.TopicsLoaded{Err: ErrNoTopicService}
		}
		topics, err := svc.SuggestTopics(ctx, DefaultQuery, DefaultK)
		if err != nil {
			return messages.TopicsLoaded{Err: err}
		}
		return messages.TopicsLoaded{Questions: svc.GenerateQuestions(topics, DefaultPerTopic)}
	}
}

// Update handles messages for the topics view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.TopicsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			v.statusbar.SetState(status.StateError)
			v.statusbar.SetMessage(msg.Err.Error())
			return v, nil
		}
		v.list.SetItems(msg.Questions)
		v.statusbar.Clear()
		return v, nil

	case tea.KeyMsg:
		keyStr := msg.String()
		switch {
		case keymap.Matches(keyStr, v.keymap.Back):
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewChat}
			}
		case keymap.Matches(keyStr, v.keymap.Select):
			q := v.list.SelectedItem()
			if q == "" || v.loading {
				return v, nil
			}
			return v, func() tea.Msg {
				return messages.QuestionSubmitted{Question: q}
			}
		}
		var cmd tea.Cmd
		v.list, cmd = v.list.Update(msg)
		return v, cmd
	}

	return v, nil
}

// View renders the topics view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{v.styles.Title.Render("Suggested Questions"), ""}

	switch {
	case v.loading:
		sections = append(sections, v.styles.Muted.Render("Loading..."))
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	default:
		sections = append(sections, v.list.View())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.list.SetDimensions(width, max(height-5, 3))
	v.statusbar.SetWidth(width)
}

// Questions returns the loaded questions.
func (v *View) Questions() []string {
	return v.list.Items()
}

// Loading reports whether topics are being fetched.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
