package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atlasprime/atlas/internal/api"
	"github.com/atlasprime/atlas/internal/chat"
	"github.com/atlasprime/atlas/internal/logger"
	"github.com/atlasprime/atlas/internal/models"
)

// Ticker commands
func tick() tea.Cmd {
	return tea.Tick(time.Second*5, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func toastTimeout() tea.Cmd {
	return tea.Tick(time.Second*3, func(time.Time) tea.Msg {
		return toastExpiredMsg{}
	})
}

// assistantDelay holds a confirmed assistant reply briefly before it is
// appended, so the reply never lands in the same frame as the user message.
func assistantDelay(sessionID string, msg models.Message) tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(time.Time) tea.Msg {
		return assistantReadyMsg{sessionID: sessionID, message: msg}
	})
}

// Data fetching commands
func (m *Model) refreshSessions() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		err := api.Retry(ctx, api.DefaultRetryAttempts, func() error {
			return store.Refresh(ctx)
		})
		if err != nil {
			return errMsg(err)
		}
		return sessionsRefreshedMsg{}
	}
}

func (m *Model) loadAgents() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		agents, err := client.ListAgents(ctx)
		if err != nil {
			// The agent picker just stays empty; chats still work
			logger.Debugf("tui: loading agents failed: %v", err)
			return nil
		}
		return agentsLoadedMsg(agents)
	}
}

// Session mutation commands
func (m *Model) createSession(agentID, agentName string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		session, err := store.Create(ctx, agentID, agentName)
		if err != nil {
			return errMsg(err)
		}
		return sessionCreatedMsg{session: *session}
	}
}

func (m *Model) deleteSession(id string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := store.Delete(ctx, id); err != nil {
			return errMsg(err)
		}
		return sessionDeletedMsg{id: id}
	}
}

func (m *Model) renameSession(id, title string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := store.Rename(ctx, id, title); err != nil {
			return errMsg(err)
		}
		return sessionRenamedMsg{id: id}
	}
}

// Transcript commands
func (m *Model) loadTranscript(t *chat.Transcript) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		err := api.Retry(ctx, api.DefaultRetryAttempts, func() error {
			return t.Load(ctx)
		})
		if err != nil {
			return errMsg(err)
		}
		return transcriptLoadedMsg{sessionID: t.SessionID()}
	}
}

// dispatchSend performs the network half of a send started with BeginSend.
func (m *Model) dispatchSend(t *chat.Transcript, temp models.Message) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		resp, err := t.Dispatch(ctx, temp)
		if err != nil {
			return sendFailedMsg{sessionID: t.SessionID(), tempID: temp.ID, err: err}
		}
		return sendConfirmedMsg{sessionID: t.SessionID(), tempID: temp.ID, resp: resp}
	}
}
