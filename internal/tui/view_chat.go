package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/atlasprime/atlas/internal/models"
	"github.com/atlasprime/atlas/internal/tui/components"
)

// ChatViewImpl handles the open transcript view
type ChatViewImpl struct{}

// NewChatView creates a new chat view instance
func NewChatView() *ChatViewImpl {
	return &ChatViewImpl{}
}

// GetViewType returns the view type identifier
func (v *ChatViewImpl) GetViewType() ViewType {
	return ChatView
}

// Update handles chat-specific message processing
func (v *ChatViewImpl) Update(m *Model, msg tea.Msg) (*Model, tea.Cmd) {
	var cmd tea.Cmd
	m.chatViewport, cmd = m.chatViewport.Update(msg)
	return m, cmd
}

// HandleResize processes window resize messages
func (v *ChatViewImpl) HandleResize(m *Model, msg tea.WindowSizeMsg) (*Model, tea.Cmd) {
	// Header, usage bar, input line and footer take the rest
	m.chatViewport.Width = msg.Width - 4
	m.chatViewport.Height = msg.Height - 8
	m.chatInput.Width = msg.Width - 8
	m.refreshChatViewport(false)
	return m, nil
}

// HandleKey processes key messages for the chat view. Printable keys belong
// to the input, so scrolling uses Alt-modified keys.
func (v *ChatViewImpl) HandleKey(m *Model, msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch msg.String() {
	case components.KeyEscape:
		m.closeChat()
		return m, nil

	case components.KeyEnter:
		return v.submit(m)

	case components.KeyChatScrollUp:
		m.chatViewport.ScrollUp(1)
		return m, nil
	case components.KeyChatScrollDown:
		m.chatViewport.ScrollDown(1)
		return m, nil
	case components.KeyPageUp:
		m.chatViewport.PageUp()
		return m, nil
	case components.KeyPageDown:
		m.chatViewport.PageDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

// submit starts a send for the current input value.
func (v *ChatViewImpl) submit(m *Model) (*Model, tea.Cmd) {
	if m.transcript == nil || m.sending() {
		return m, nil
	}

	temp, err := m.transcript.BeginSend(m.chatInput.Value(), nil)
	if err != nil {
		return m, nil
	}
	m.chatInput.SetValue("")
	m.refreshChatViewport(true)
	return m, tea.Batch(m.dispatchSend(m.transcript, temp), m.sendSpinner.Tick)
}

// Render generates the chat view content
func (v *ChatViewImpl) Render(m *Model) string {
	var sections []string

	title := "Chat"
	if session, ok := m.store.Selected(); ok {
		title = session.Title
		if session.AgentName != "" {
			title += " [" + session.AgentName + "]"
		}
	}
	sections = append(sections, components.SectionHeaderStyle.Render(title))
	sections = append(sections, v.renderUsageBar(m))
	sections = append(sections, "")

	if m.loadingChat {
		sections = append(sections, m.sendSpinner.View()+" Loading chat...")
	} else {
		sections = append(sections, m.chatViewport.View())
	}

	sections = append(sections, "")
	if m.sending() {
		sections = append(sections, m.sendSpinner.View()+components.PendingStyle.Render(" Waiting for reply..."))
	} else {
		sections = append(sections, m.chatInput.View())
	}

	return strings.Join(sections, "\n")
}

// renderUsageBar shows the live telemetry line for the open session.
func (v *ChatViewImpl) renderUsageBar(m *Model) string {
	if m.usage == nil {
		return components.MutedStyle.Render("usage: waiting for data")
	}

	snap := m.usage
	text := fmt.Sprintf("usage: %.1f%% · %d tokens · $%.4f", snap.PercentageUsed, snap.TotalChatTokens, snap.TotalChatCost)
	switch snap.WarningLevel {
	case models.WarningCritical:
		return components.UsageCriticalStyle.Render(text + " · limit almost reached")
	case models.WarningElevated:
		return components.UsageWarningStyle.Render(text + " · approaching limit")
	default:
		return components.UsageOKStyle.Render(text)
	}
}

// refreshChatViewport re-renders the transcript into the viewport.
func (m *Model) refreshChatViewport(scrollToBottom bool) {
	if m.transcript == nil {
		m.chatViewport.SetContent("")
		return
	}

	messages := m.transcript.Messages()
	if len(messages) == 0 {
		m.chatViewport.SetContent(components.MutedStyle.Render("No messages yet. Say something."))
		return
	}

	var blocks []string
	for _, msg := range messages {
		blocks = append(blocks, m.renderMessage(msg))
	}
	m.chatViewport.SetContent(strings.Join(blocks, "\n\n"))
	if scrollToBottom {
		m.chatViewport.GotoBottom()
	}
}

// renderMessage formats one transcript entry. Assistant replies go through
// glamour so markdown in the reply renders properly; user messages stay
// plain text.
func (m *Model) renderMessage(msg models.Message) string {
	timestamp := components.MutedStyle.Render(msg.CreatedAt.Format("15:04"))

	if msg.Role == models.RoleAssistant {
		label := components.AssistantLabelStyle.Render("assistant")
		return label + " " + timestamp + "\n" + m.renderMarkdown(msg.Content)
	}

	label := components.UserLabelStyle.Render("you")
	body := msg.Content
	if msg.Pending() {
		body = components.PendingStyle.Render(body + " (sending...)")
		label = components.UserLabelStyle.Render("you") + " " + components.PendingStyle.Render("·")
	}
	return label + " " + timestamp + "\n" + body
}

// renderMarkdown renders markdown text using glamour for terminal display
func (m *Model) renderMarkdown(text string) string {
	width := m.chatViewport.Width - 2
	if width < 20 {
		width = 78
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}

	rendered, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(rendered, "\n")
}
