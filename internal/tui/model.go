package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/atlasprime/atlas/internal/api"
	"github.com/atlasprime/atlas/internal/chat"
	"github.com/atlasprime/atlas/internal/config"
	"github.com/atlasprime/atlas/internal/models"
	"github.com/atlasprime/atlas/internal/tui/components"
)

// ViewType represents the different views in the application
type ViewType int

const (
	// SessionsView represents the session list
	SessionsView ViewType = iota
	// ChatView represents the open transcript of the selected session
	ChatView
)

// View interface that all views must implement
type View interface {
	// Update handles view-specific message processing
	Update(m *Model, msg tea.Msg) (*Model, tea.Cmd)

	// Render generates the view content
	Render(m *Model) string

	// HandleKey processes key messages for this view
	HandleKey(m *Model, msg tea.KeyMsg) (*Model, tea.Cmd)

	// HandleResize processes window resize messages
	HandleResize(m *Model, msg tea.WindowSizeMsg) (*Model, tea.Cmd)

	// GetViewType returns the view type identifier
	GetViewType() ViewType
}

// Model represents the main application state
type Model struct {
	// Core dependencies
	client    *api.Client
	store     *chat.Store
	usageFeed *UsageFeed
	cfg       *config.Config
	email     string
	version   string

	// Current state
	currentView   ViewType
	width         int
	height        int
	lastUpdate    time.Time
	toast         string
	toastIsError  bool
	quitRequested bool

	// Session list state
	filter        chat.Filter
	cursor        int
	agents        []models.Agent
	renameMode    bool
	renameInput   textinput.Model
	confirmDelete bool
	agentPicker   bool
	agentCursor   int

	// Chat view state
	transcript   *chat.Transcript
	chatViewport viewport.Model
	chatInput    textinput.Model
	usage        *models.UsageSnapshot
	sendSpinner  spinner.Model
	loadingChat  bool

	// View instances
	views map[ViewType]View
}

// NewModel creates a new application model with initialized views
func NewModel(client *api.Client, store *chat.Store, usageFeed *UsageFeed, cfg *config.Config, email, version string) *Model {
	chatInput := textinput.New()
	chatInput.Placeholder = "Type a message..."
	chatInput.CharLimit = 4000
	chatInput.Prompt = "> "
	chatInput.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(components.ColorPrimary)).Bold(true)

	renameInput := textinput.New()
	renameInput.Placeholder = "New title..."
	renameInput.CharLimit = 120
	renameInput.Width = 40

	sendSpinner := spinner.New()
	sendSpinner.Spinner = spinner.Dot
	sendSpinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(components.ColorHighlight))

	m := &Model{
		client:       client,
		store:        store,
		usageFeed:    usageFeed,
		cfg:          cfg,
		email:        email,
		version:      version,
		currentView:  SessionsView,
		filter:       chat.FilterAll,
		chatViewport: viewport.New(80, 20),
		chatInput:    chatInput,
		renameInput:  renameInput,
		sendSpinner:  sendSpinner,
		lastUpdate:   time.Now(),
		views:        make(map[ViewType]View),
	}

	m.views[SessionsView] = NewSessionsView()
	m.views[ChatView] = NewChatView()
	return m
}

// GetCurrentView returns the active view instance.
func (m *Model) GetCurrentView() View {
	return m.views[m.currentView]
}

// Init starts the initial data fetches and the refresh ticker.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.refreshSessions(),
		m.loadAgents(),
		m.sendSpinner.Tick,
		tick(),
	)
}

// visibleSessions returns the session list under the active filter.
func (m *Model) visibleSessions() []models.Session {
	return m.store.List(m.filter)
}

// clampCursor keeps the cursor inside the filtered list after mutations.
func (m *Model) clampCursor() {
	n := m.store.Count(m.filter)
	if n == 0 {
		m.cursor = 0
		return
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
