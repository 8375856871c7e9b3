package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/atlasprime/atlas/internal/tui/components"
)

// View renders the full frame: header, active view content, footer.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	headerStyle := components.HeaderStyle.
		Width(m.width - 2).
		Padding(0, 1)
	header := headerStyle.Render(fmt.Sprintf("Atlas Prime · %s", m.email))

	footerStyle := components.FooterStyle.Width(m.width - 2)
	footer := footerStyle.Render(m.footerText())

	mainHeight := m.height - 4
	mainStyle := lipgloss.NewStyle().
		Width(m.width - 2).
		Height(mainHeight).
		Padding(1)
	content := mainStyle.Render(m.GetCurrentView().Render(&m))

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

// footerText prefers an active toast over the key hints.
func (m Model) footerText() string {
	if m.toast != "" {
		if m.toastIsError {
			return components.ErrorStyle.Render(m.toast)
		}
		return m.toast
	}

	switch m.currentView {
	case ChatView:
		return "enter send, alt+↑↓/pgup/pgdn scroll, esc back, ctrl+c quit"
	default:
		return "↑↓ move, enter open, n new, a agent, r rename, d delete, tab filter, R refresh, q quit"
	}
}
