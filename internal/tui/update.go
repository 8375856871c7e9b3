package tui

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atlasprime/atlas/internal/api"
	"github.com/atlasprime/atlas/internal/chat"
	"github.com/atlasprime/atlas/internal/models"
	"github.com/atlasprime/atlas/internal/tui/components"
)

// Update is the main update function that routes messages to appropriate handlers
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// First, handle global window sizing
	if windowMsg, ok := msg.(tea.WindowSizeMsg); ok {
		return m.handleWindowResize(windowMsg)
	}

	// Route key messages to current view
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKeyMessage(keyMsg)
	}

	// Handle spinner updates
	if spinnerMsg, ok := msg.(spinner.TickMsg); ok {
		return m.handleSpinnerTick(spinnerMsg)
	}

	// Route other messages by type
	switch msg := msg.(type) {
	case tickMsg:
		return m.handleTick(msg)
	case sessionsRefreshedMsg:
		m.clampCursor()
		return m, nil
	case agentsLoadedMsg:
		m.agents = []models.Agent(msg)
		return m, nil
	case sessionCreatedMsg:
		return m.handleSessionCreated(msg)
	case sessionDeletedMsg:
		return m.handleSessionDeleted(msg)
	case sessionRenamedMsg:
		return m.setToast("Chat renamed", false)
	case transcriptLoadedMsg:
		return m.handleTranscriptLoaded(msg)
	case sendConfirmedMsg:
		return m.handleSendConfirmed(msg)
	case sendFailedMsg:
		return m.handleSendFailed(msg)
	case assistantReadyMsg:
		return m.handleAssistantReady(msg)
	case usageMsg:
		return m.handleUsage(msg)
	case toastExpiredMsg:
		m.toast = ""
		return m, nil
	case errMsg:
		return m.handleError(msg)
	case sessionExpiredMsg:
		m.quitRequested = true
		return m, tea.Quit
	}

	// Let current view handle any remaining messages
	newModel, cmd := m.GetCurrentView().Update(&m, msg)
	return *newModel, cmd
}

// Window resize handler
func (m Model) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	// Let current view handle resize specifics
	newModel, cmd := m.GetCurrentView().HandleResize(&m, msg)
	return *newModel, cmd
}

// Key message router with global key handling
func (m Model) handleKeyMessage(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if components.IsGlobalQuitKey(msg.String()) {
		m.quitRequested = true
		return m, tea.Quit
	}

	newModel, cmd := m.GetCurrentView().HandleKey(&m, msg)
	return *newModel, cmd
}

// Spinner tick handler
func (m Model) handleSpinnerTick(msg spinner.TickMsg) (tea.Model, tea.Cmd) {
	if m.currentView == ChatView && (m.sending() || m.loadingChat) {
		var cmd tea.Cmd
		m.sendSpinner, cmd = m.sendSpinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Periodic tick handler; keeps the clock fresh without refetching anything.
func (m Model) handleTick(msg tickMsg) (tea.Model, tea.Cmd) {
	m.lastUpdate = time.Time(msg)
	if m.quitRequested {
		return m, nil
	}
	return m, tick()
}

func (m Model) handleSessionCreated(msg sessionCreatedMsg) (tea.Model, tea.Cmd) {
	m.clampCursor()
	newModel, cmd := m.openChat(msg.session)
	return *newModel, cmd
}

func (m Model) handleSessionDeleted(msg sessionDeletedMsg) (tea.Model, tea.Cmd) {
	m.clampCursor()
	if m.transcript != nil && m.transcript.SessionID() == msg.id {
		m.closeChat()
	}
	return m.setToast("Chat deleted", false)
}

func (m Model) handleTranscriptLoaded(msg transcriptLoadedMsg) (tea.Model, tea.Cmd) {
	if m.transcript == nil || m.transcript.SessionID() != msg.sessionID {
		return m, nil
	}
	m.loadingChat = false
	m.refreshChatViewport(true)
	return m, nil
}

func (m Model) handleSendConfirmed(msg sendConfirmedMsg) (tea.Model, tea.Cmd) {
	if m.transcript == nil || m.transcript.SessionID() != msg.sessionID {
		return m, nil
	}

	assistant := m.transcript.ConfirmSend(msg.tempID, msg.resp)
	m.refreshChatViewport(true)
	if assistant == nil {
		return m, nil
	}
	return m, assistantDelay(msg.sessionID, *assistant)
}

func (m Model) handleSendFailed(msg sendFailedMsg) (tea.Model, tea.Cmd) {
	if m.transcript != nil && m.transcript.SessionID() == msg.sessionID {
		m.transcript.FailSend(msg.tempID)
		m.refreshChatViewport(false)
	}
	return m.handleError(errMsg(msg.err))
}

func (m Model) handleAssistantReady(msg assistantReadyMsg) (tea.Model, tea.Cmd) {
	if m.transcript == nil || m.transcript.SessionID() != msg.sessionID {
		return m, nil
	}
	m.transcript.AppendAssistant(msg.message)
	m.refreshChatViewport(true)
	return m, nil
}

func (m Model) handleUsage(msg usageMsg) (tea.Model, tea.Cmd) {
	snap := models.UsageSnapshot(msg)
	if m.transcript == nil || m.transcript.SessionID() != snap.ChatID {
		return m, nil
	}
	m.usage = &snap
	return m, nil
}

func (m Model) handleError(msg errMsg) (tea.Model, tea.Cmd) {
	err := error(msg)

	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Code == api.CodeUnauthorized {
		m.quitRequested = true
		return m, tea.Quit
	}
	return m.setToast(err.Error(), true)
}

// setToast shows a transient status line message.
func (m Model) setToast(text string, isError bool) (tea.Model, tea.Cmd) {
	m.toast = text
	m.toastIsError = isError
	return m, toastTimeout()
}

// sending reports whether the open transcript has a send in flight.
func (m *Model) sending() bool {
	return m.transcript != nil && m.transcript.Sending()
}

// openChat tears down any previous transcript and opens the given session.
func (m *Model) openChat(session models.Session) (*Model, tea.Cmd) {
	m.store.Select(session.ID)
	m.transcript = chat.NewTranscript(m.client, m.store, session.ID, m.cfg.PageLimit)
	m.usage = nil
	m.loadingChat = true
	m.currentView = ChatView
	m.chatInput.SetValue("")
	m.chatViewport.SetContent("")
	m.usageFeed.Watch(session.ID)
	cmd := tea.Batch(m.loadTranscript(m.transcript), m.chatInput.Focus(), m.sendSpinner.Tick)
	return m, cmd
}

// closeChat returns to the session list and stops usage polling.
func (m *Model) closeChat() {
	m.usageFeed.Stop()
	m.transcript = nil
	m.usage = nil
	m.loadingChat = false
	m.chatInput.Blur()
	m.currentView = SessionsView
	m.store.Select("")
}
