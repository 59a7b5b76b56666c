package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/wikichat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/wikichat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/wikichat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/wikichat/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/wikichat/internal/adapters/driving/tui/views/topics"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	chatView   *chat.View
	topicsView *topics.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	app := &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		chatView:    chat.NewView(s, km, ports.Chat),
		currentView: messages.ViewChat,
	}
	if ports.Topics != nil {
		app.topicsView = topics.NewView(s, km, ports.Topics)
	}
	app.refreshChunks()

	return app, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	if a.topicsView != nil {
		a.topicsView.WithContext(ctx)
	}
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("wikichat"),
		a.chatView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewTopics && a.topicsView != nil {
			a.topicsView, cmd = a.topicsView.Update(msg)
			return a, cmd
		}
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.ViewChanged:
		return a, a.switchView(msg.View)

	case messages.QuestionSubmitted:
		a.currentView = messages.ViewChat
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.AnswerReceived, messages.ConversationReset:
		a.chatView, cmd = a.chatView.Update(msg)
		a.refreshChunks()
		return a, cmd

	case messages.TopicsLoaded:
		if a.topicsView != nil {
			a.topicsView, cmd = a.topicsView.Update(msg)
		}
		return a, cmd
	}

	// Cursor blinks and other ticks go to the chat input.
	a.chatView, cmd = a.chatView.Update(msg)
	return a, cmd
}

func (a *App) switchView(view messages.ViewType) tea.Cmd {
	switch view {
	case messages.ViewTopics:
		if a.topicsView == nil {
			return nil
		}
		a.currentView = messages.ViewTopics
		return a.topicsView.Load()
	case messages.ViewChat:
		a.currentView = messages.ViewChat
	}
	return nil
}

func (a *App) refreshChunks() {
	if a.ports.Retrieval != nil {
		a.chatView.SetChunks(a.ports.Retrieval.Size())
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	if a.currentView == messages.ViewTopics && a.topicsView != nil {
		return a.topicsView.View()
	}
	return a.chatView.View()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and its views.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.chatView.SetDimensions(width, height)
	if a.topicsView != nil {
		a.topicsView.SetDimensions(width, height)
	}
}
