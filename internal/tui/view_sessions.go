package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atlasprime/atlas/internal/chat"
	"github.com/atlasprime/atlas/internal/models"
	"github.com/atlasprime/atlas/internal/tui/components"
)

// SessionsViewImpl handles the session list functionality
type SessionsViewImpl struct{}

// NewSessionsView creates a new session list view instance
func NewSessionsView() *SessionsViewImpl {
	return &SessionsViewImpl{}
}

// GetViewType returns the view type identifier
func (v *SessionsViewImpl) GetViewType() ViewType {
	return SessionsView
}

// Update handles session-list-specific message processing
func (v *SessionsViewImpl) Update(m *Model, msg tea.Msg) (*Model, tea.Cmd) {
	if m.renameMode {
		var cmd tea.Cmd
		m.renameInput, cmd = m.renameInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// HandleResize processes window resize messages
func (v *SessionsViewImpl) HandleResize(m *Model, msg tea.WindowSizeMsg) (*Model, tea.Cmd) {
	m.renameInput.Width = min(msg.Width-20, 60)
	return m, nil
}

// HandleKey processes key messages for the session list
func (v *SessionsViewImpl) HandleKey(m *Model, msg tea.KeyMsg) (*Model, tea.Cmd) {
	// Overlay modes swallow all keys until resolved
	if m.renameMode {
		return v.handleRenameKey(m, msg)
	}
	if m.confirmDelete {
		return v.handleConfirmKey(m, msg)
	}
	if m.agentPicker {
		return v.handlePickerKey(m, msg)
	}

	sessions := m.visibleSessions()

	switch msg.String() {
	case components.KeyQuitAlt:
		m.quitRequested = true
		return m, tea.Quit

	case components.KeyUp, components.KeyVimUp:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case components.KeyDown, components.KeyVimDown:
		if m.cursor < len(sessions)-1 {
			m.cursor++
		}
		return m, nil

	case components.KeyHome, components.KeyVimTop:
		m.cursor = 0
		return m, nil

	case components.KeyEnd, components.KeyVimBottom:
		if len(sessions) > 0 {
			m.cursor = len(sessions) - 1
		}
		return m, nil

	case components.KeyTab:
		m.filter = nextFilter(m.filter)
		m.clampCursor()
		return m, nil

	case components.KeyEnter:
		if m.cursor < len(sessions) {
			return m.openChat(sessions[m.cursor])
		}
		return m, nil

	case components.KeyNewChat:
		if m.store.CreateInFlight() {
			return m, nil
		}
		return m, m.createSession("", "")

	case components.KeyNewAgentChat:
		if len(m.agents) == 0 || m.store.CreateInFlight() {
			return m, nil
		}
		m.agentPicker = true
		m.agentCursor = 0
		return m, nil

	case components.KeyRename:
		if m.cursor < len(sessions) {
			m.renameMode = true
			m.renameInput.SetValue(sessions[m.cursor].Title)
			cmd := m.renameInput.Focus()
			return m, cmd
		}
		return m, nil

	case components.KeyDelete:
		if m.cursor < len(sessions) {
			m.confirmDelete = true
		}
		return m, nil

	case components.KeyRefresh:
		return m, m.refreshSessions()
	}

	return m, nil
}

func (v *SessionsViewImpl) handleRenameKey(m *Model, msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch msg.String() {
	case components.KeyEscape:
		m.renameMode = false
		m.renameInput.Blur()
		return m, nil
	case components.KeyEnter:
		m.renameMode = false
		m.renameInput.Blur()
		sessions := m.visibleSessions()
		if m.cursor < len(sessions) {
			return m, m.renameSession(sessions[m.cursor].ID, m.renameInput.Value())
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.renameInput, cmd = m.renameInput.Update(msg)
		return m, cmd
	}
}

func (v *SessionsViewImpl) handleConfirmKey(m *Model, msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch msg.String() {
	case components.KeyConfirmYes:
		m.confirmDelete = false
		sessions := m.visibleSessions()
		if m.cursor < len(sessions) {
			return m, m.deleteSession(sessions[m.cursor].ID)
		}
		return m, nil
	case components.KeyConfirmNo, components.KeyEscape:
		m.confirmDelete = false
		return m, nil
	}
	return m, nil
}

func (v *SessionsViewImpl) handlePickerKey(m *Model, msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch msg.String() {
	case components.KeyEscape:
		m.agentPicker = false
		return m, nil
	case components.KeyUp, components.KeyVimUp:
		if m.agentCursor > 0 {
			m.agentCursor--
		}
		return m, nil
	case components.KeyDown, components.KeyVimDown:
		if m.agentCursor < len(m.agents)-1 {
			m.agentCursor++
		}
		return m, nil
	case components.KeyEnter:
		m.agentPicker = false
		if m.agentCursor < len(m.agents) {
			agent := m.agents[m.agentCursor]
			return m, m.createSession(agent.ID, agent.Name)
		}
		return m, nil
	}
	return m, nil
}

// Render generates the session list content
func (v *SessionsViewImpl) Render(m *Model) string {
	var sections []string

	sections = append(sections, v.renderTabs(m))
	sections = append(sections, "")

	sessions := m.visibleSessions()
	if len(sessions) == 0 {
		sections = append(sections, components.MutedStyle.Render("  No chats yet. Press 'n' to start one."))
	}

	for i, session := range sessions {
		sections = append(sections, v.renderSessionLine(m, session, i == m.cursor))
	}

	if m.renameMode {
		sections = append(sections, "")
		sections = append(sections, components.OverlayStyle.Render("Rename chat\n\n"+m.renameInput.View()))
	}
	if m.confirmDelete && m.cursor < len(sessions) {
		prompt := fmt.Sprintf("Delete %q? (y/n)", sessions[m.cursor].Title)
		sections = append(sections, "")
		sections = append(sections, components.OverlayStyle.Render(prompt))
	}
	if m.agentPicker {
		sections = append(sections, "")
		sections = append(sections, v.renderAgentPicker(m))
	}

	return strings.Join(sections, "\n")
}

func (v *SessionsViewImpl) renderTabs(m *Model) string {
	labels := []struct {
		filter chat.Filter
		name   string
	}{
		{chat.FilterAll, "All"},
		{chat.FilterGeneral, "General"},
		{chat.FilterAgents, "Agents"},
	}

	var tabs []string
	for _, label := range labels {
		text := fmt.Sprintf(" %s (%d) ", label.name, m.store.Count(label.filter))
		if label.filter == m.filter {
			tabs = append(tabs, components.SelectedStyle.Render(text))
		} else {
			tabs = append(tabs, components.MutedStyle.Render(text))
		}
	}
	return strings.Join(tabs, " ")
}

func (v *SessionsViewImpl) renderSessionLine(m *Model, session models.Session, selected bool) string {
	label := session.Title
	if session.AgentName != "" {
		label += " [" + session.AgentName + "]"
	}

	meta := fmt.Sprintf("%d msgs", session.MessageCount)
	if !session.LastMessageAt.IsZero() {
		meta += " · " + session.LastMessageAt.Format("Jan 2 15:04")
	}
	if session.Status == models.SessionLimited {
		meta += " · limited"
	}

	if selected {
		return components.SelectedStyle.Render("> "+label) + "  " + components.MutedStyle.Render(meta)
	}
	return "  " + label + "  " + components.MutedStyle.Render(meta)
}

func (v *SessionsViewImpl) renderAgentPicker(m *Model) string {
	var lines []string
	lines = append(lines, components.SectionHeaderStyle.Render("Start a chat with an agent"))
	lines = append(lines, "")
	for i, agent := range m.agents {
		label := "  " + agent.Name
		if i == m.agentCursor {
			label = components.SelectedStyle.Render("> " + agent.Name)
		}
		lines = append(lines, label)
	}
	lines = append(lines, "")
	lines = append(lines, components.MutedStyle.Render("enter to start, esc to cancel"))
	return components.OverlayStyle.Render(strings.Join(lines, "\n"))
}

func nextFilter(f chat.Filter) chat.Filter {
	switch f {
	case chat.FilterAll:
		return chat.FilterGeneral
	case chat.FilterGeneral:
		return chat.FilterAgents
	default:
		return chat.FilterAll
	}
}
