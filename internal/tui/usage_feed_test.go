package tui

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/atlasprime/atlas/internal/api"
	"github.com/atlasprime/atlas/internal/auth"
	"github.com/atlasprime/atlas/internal/chat"
	"github.com/atlasprime/atlas/internal/models"
)

// feedTestModel is a minimal program whose Update stalls briefly on every
// snapshot, so deliveries are regularly parked in program.Send while the
// feed is asked to switch sessions.
type feedTestModel struct {
	busy time.Duration

	mu   *sync.Mutex
	seen *[]models.UsageSnapshot
}

func (m feedTestModel) Init() tea.Cmd { return nil }

func (m feedTestModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if snap, ok := msg.(usageMsg); ok {
		time.Sleep(m.busy)
		m.mu.Lock()
		*m.seen = append(*m.seen, models.UsageSnapshot(snap))
		m.mu.Unlock()
	}
	return m, nil
}

func (m feedTestModel) View() string { return "" }

func newUsageFeedFixture(t *testing.T, interval time.Duration) *UsageFeed {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snap := models.UsageSnapshot{
			ChatID:          path.Base(r.URL.Path),
			TotalChatTokens: 10,
			WarningLevel:    models.WarningNone,
		}
		_ = json.NewEncoder(w).Encode(snap)
	}))
	t.Cleanup(server.Close)

	creds := auth.NewStore(filepath.Join(t.TempDir(), "credentials.json"))
	client := api.NewClient(server.URL, creds)
	return NewUsageFeed(chat.NewPoller(client, interval))
}

func TestUsageFeedWatchNeverBlocksUpdateLoop(t *testing.T) {
	feed := newUsageFeedFixture(t, 5*time.Millisecond)
	defer feed.Stop()

	var mu sync.Mutex
	var seen []models.UsageSnapshot
	model := feedTestModel{busy: 20 * time.Millisecond, mu: &mu, seen: &seen}

	program := tea.NewProgram(model,
		tea.WithoutRenderer(),
		tea.WithInput(strings.NewReader("")),
		tea.WithOutput(io.Discard),
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = program.Run()
	}()
	feed.SetProgram(program)

	// Switch sessions from the caller's side while deliveries are in flight.
	// Every Watch must return promptly even when the update loop is busy
	// mid-message; a Watch that waits for the retired poll loop deadlocks
	// here, because that loop is parked in program.Send.
	switched := make(chan struct{})
	go func() {
		defer close(switched)
		for i := 0; i < 50; i++ {
			feed.Watch(fmt.Sprintf("chat-%d", i))
			time.Sleep(2 * time.Millisecond)
		}
		feed.Stop()
	}()

	select {
	case <-switched:
	case <-time.After(10 * time.Second):
		t.Fatal("session switches stalled; the usage feed blocked the update loop")
	}

	program.Quit()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("program did not shut down")
	}
}

func TestUsageFeedRetiredWatchStopsDelivering(t *testing.T) {
	feed := newUsageFeedFixture(t, time.Millisecond)
	defer feed.Stop()

	var mu sync.Mutex
	var seen []models.UsageSnapshot
	model := feedTestModel{mu: &mu, seen: &seen}

	program := tea.NewProgram(model,
		tea.WithoutRenderer(),
		tea.WithInput(strings.NewReader("")),
		tea.WithOutput(io.Discard),
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = program.Run()
	}()
	feed.SetProgram(program)

	feed.Watch("old-chat")
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0
	}, 5*time.Second, 5*time.Millisecond)

	feed.Watch("new-chat")

	// Give retired and live loops several ticks, then check that nothing
	// delivered after the switch came from the old session. One in-flight
	// old snapshot may land right at the boundary; afterwards the retired
	// generation must be silent.
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	boundary := len(seen)
	mu.Unlock()

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	for _, snap := range seen[boundary:] {
		require.Equal(t, "new-chat", snap.ChatID)
	}
	mu.Unlock()

	feed.Stop()
	program.Quit()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("program did not shut down")
	}
}
