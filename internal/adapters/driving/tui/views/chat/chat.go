// Package chat provides the conversation view for the TUI.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/wikichat/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/wikichat/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/wikichat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/wikichat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/wikichat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/wikichat/internal/core/domain"
	"github.com/custodia-labs/wikichat/internal/core/ports/driving"
)

// exchange is one answered question in the transcript.
type exchange struct {
	question string
	answer   *domain.Answer
}

// View shows the transcript above a question input and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	statusbar *status.Bar
	viewport  viewport.Model

	chatService driving.ChatService
	ctx         context.Context
	sessionID   string

	transcript []exchange
	width      int
	height     int
	ready      bool
	busy       bool
	err        error
}

// NewView creates a new chat view bound to a fresh session.
func NewView(s *styles.Styles, km *keymap.KeyMap, chatService driving.ChatService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:      s,
		keymap:      km,
		input:       input.NewQuestionInput(s),
		statusbar:   status.NewBar(s, km.ChatHelp()),
		viewport:    viewport.New(80, 16),
		chatService: chatService,
		ctx:         context.Background(),
		width:       80,
		height:      24,
	}
	if chatService != nil {
		v.sessionID = chatService.NewSession()
	}
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.QuestionSubmitted:
		return v, v.Submit(msg.Question)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.ConversationReset:
		v.busy = false
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.transcript = nil
		v.err = nil
		v.statusbar.Clear()
		v.statusbar.SetMessage("New conversation")
		v.refresh()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keymap.Send):
		if v.busy {
			return v, nil
		}
		q := v.input.Question()
		v.input.Reset()
		return v, v.Submit(q)

	case keymap.Matches(keyStr, v.keymap.Reset):
		if v.busy {
			return v, nil
		}
		return v, v.reset()

	case keymap.Matches(keyStr, v.keymap.Topics):
		if v.busy {
			return v, nil
		}
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewTopics}
		}

	case keymap.Matches(keyStr, v.keymap.ScrollUp):
		v.viewport.HalfPageUp()
		return v, nil

	case keymap.Matches(keyStr, v.keymap.ScrollDown):
		v.viewport.HalfPageDown()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// Submit asks a question in the view's session.
// The answer arrives later as a messages.AnswerReceived.
func (v *View) Submit(question string) tea.Cmd {
	if v.busy {
		return nil
	}
	v.busy = true
	v.statusbar.SetState(status.StateThinking)
	v.statusbar.SetMessage("Thinking about: " + question)

	svc, ctx, session := v.chatService, v.ctx, v.sessionID
	return func() tea.Msg {
		if svc == nil {
			return messages.AnswerReceived{Question: question, Err: ErrNoChatService}
		}
		answer, err := svc.Ask(ctx, session, question)
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

func (v *View) reset() tea.Cmd {
	v.busy = true
	svc, ctx, session := v.chatService, v.ctx, v.sessionID
	return func() tea.Msg {
		if svc == nil {
			return messages.ConversationReset{Err: ErrNoChatService}
		}
		return messages.ConversationReset{Err: svc.Reset(ctx, session)}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.busy = false
	if msg.Err != nil {
		if errors.Is(msg.Err, domain.ErrEmptyQuestion) {
			v.setError(errors.New("please provide a valid question"))
			return
		}
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.transcript = append(v.transcript, exchange{question: msg.Question, answer: msg.Answer})
	v.statusbar.Clear()
	v.refresh()
	v.viewport.GotoBottom()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// refresh re-renders the transcript into the viewport.
func (v *View) refresh() {
	v.viewport.SetContent(v.renderTranscript())
}

func (v *View) renderTranscript() string {
	if len(v.transcript) == 0 {
		return v.styles.Muted.Render("Ask anything about the indexed Wikipedia articles.")
	}

	wrap := lipgloss.NewStyle().Width(max(v.width-2, 20))
	blocks := make([]string, 0, len(v.transcript))
	for _, ex := range v.transcript {
		lines := []string{
			v.styles.Question.Render("Question: " + ex.question),
			wrap.Render(v.styles.Answer.Render("Answer: " + ex.answer.Text)),
		}
		for _, src := range sourceLines(ex.answer.Sources) {
			lines = append(lines, v.styles.Source.Render(src))
		}
		lines = append(lines, v.styles.RenderRule(max(v.width-2, 1)))
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n")
}

// sourceLines lists each cited article once, nearest first.
func sourceLines(chunks []domain.Chunk) []string {
	seen := make(map[string]bool, len(chunks))
	lines := make([]string, 0, len(chunks))
	for _, c := range chunks {
		key := c.Metadata.SourceURL
		if key == "" {
			key = c.Metadata.Title
		}
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		if c.Metadata.SourceURL == "" {
			lines = append(lines, "Source: "+c.Metadata.Title)
			continue
		}
		lines = append(lines, fmt.Sprintf("Source: %s (%s)", c.Metadata.Title, c.Metadata.SourceURL))
	}
	return lines
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("WikiChat"),
		"",
		v.viewport.View(),
		"",
		v.input.View(),
	}
	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	}
	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	// Title, input box and status bar take roughly eight lines.
	v.viewport.Width = max(width, 20)
	v.viewport.Height = max(height-8, 3)
	v.refresh()
}

// SetChunks shows the number of indexed chunks in the status bar.
func (v *View) SetChunks(n int) {
	v.statusbar.SetChunks(n)
}

// SessionID returns the session the view asks in.
func (v *View) SessionID() string {
	return v.sessionID
}

// Busy reports whether a question or reset is in flight.
func (v *View) Busy() bool {
	return v.busy
}

// Exchanges returns the number of answered questions shown.
func (v *View) Exchanges() int {
	return len(v.transcript)
}

// Err returns the last error shown.
func (v *View) Err() error {
	return v.err
}

// Input returns the question input component.
func (v *View) Input() *input.QuestionInput {
	return v.input
}
