package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atlasprime/atlas/internal/api"
	"github.com/atlasprime/atlas/internal/auth"
	"github.com/atlasprime/atlas/internal/chat"
	"github.com/atlasprime/atlas/internal/config"
)

// ErrSessionExpired is returned by Run when the server rejected the stored
// credentials and they were cleared.
var ErrSessionExpired = errors.New("session expired, sign in again with 'atlas login'")

// App wires the chat stores and the usage poller into a bubbletea program.
type App struct {
	client  *api.Client
	creds   *auth.Store
	cfg     *config.Config
	version string
	program *tea.Program
}

// NewApp creates the terminal application.
func NewApp(client *api.Client, creds *auth.Store, cfg *config.Config, version string) *App {
	return &App{
		client:  client,
		creds:   creds,
		cfg:     cfg,
		version: version,
	}
}

// Run blocks until the user quits or the session is torn down.
func (a *App) Run() error {
	store := chat.NewStore(a.client, a.cfg.PageLimit)
	poller := chat.NewPoller(a.client, a.cfg.PollInterval())
	feed := NewUsageFeed(poller)
	defer feed.Stop()

	m := NewModel(a.client, store, feed, a.cfg, a.creds.Email(), a.version)
	a.program = tea.NewProgram(*m, tea.WithAltScreen())
	feed.SetProgram(a.program)

	// A credential wipe anywhere (a 401 on any request) ends the session
	a.creds.OnClear(func() {
		a.program.Send(sessionExpiredMsg{})
	})

	if _, err := a.program.Run(); err != nil {
		return err
	}
	if !a.creds.Authenticated() {
		return ErrSessionExpired
	}
	return nil
}
