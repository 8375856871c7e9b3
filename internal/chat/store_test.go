package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasprime/atlas/internal/api"
	"github.com/atlasprime/atlas/internal/auth"
	"github.com/atlasprime/atlas/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) *api.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	creds := auth.NewStore(filepath.Join(t.TempDir(), "credentials.json"))
	return api.NewClient(server.URL, creds)
}

func TestRefreshDropsEmptyAndMalformedSessions(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chats", r.URL.Path)
		w.Write([]byte(`[
			{"id": "c1", "title": "First", "message_count": 4},
			{"id": "", "title": "no id", "message_count": 3},
			{"id": "c3", "title": "empty", "message_count": 0},
			{"id": "c4", "message_count": 2}
		]`))
	}))

	store := NewStore(client, 100)
	require.NoError(t, store.Refresh(context.Background()))

	sessions := store.List(FilterAll)
	require.Len(t, sessions, 2)
	assert.Equal(t, "c1", sessions[0].ID)
	assert.Equal(t, "c4", sessions[1].ID)
	// Missing fields were normalized, not left zero
	assert.NotEmpty(t, sessions[1].Title)
	assert.Equal(t, models.SessionActive, sessions[1].Status)
}

func TestRefreshClearsDanglingSelection(t *testing.T) {
	calls := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write([]byte(`[{"id": "c1", "title": "First", "message_count": 1}]`))
			return
		}
		w.Write([]byte(`[]`))
	}))

	store := NewStore(client, 100)
	require.NoError(t, store.Refresh(context.Background()))
	store.Select("c1")

	require.NoError(t, store.Refresh(context.Background()))
	assert.Empty(t, store.SelectedID())
	_, ok := store.Selected()
	assert.False(t, ok)
}

func TestListFilters(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id": "g1", "title": "General", "message_count": 1},
			{"id": "a1", "title": "Agent chat", "agent_id": "ag-1", "agent_name": "Scout", "message_count": 2}
		]`))
	}))

	store := NewStore(client, 100)
	require.NoError(t, store.Refresh(context.Background()))

	assert.Equal(t, 2, store.Count(FilterAll))
	general := store.List(FilterGeneral)
	require.Len(t, general, 1)
	assert.Equal(t, "g1", general[0].ID)
	agents := store.List(FilterAgents)
	require.Len(t, agents, 1)
	assert.Equal(t, "a1", agents[0].ID)
}

func TestCreateGeneralChat(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chats", r.URL.Path)
		w.Write([]byte(`{"id": "c-new"}`))
	}))

	store := NewStore(client, 100)
	session, err := store.Create(context.Background(), "", "")

	require.NoError(t, err)
	assert.Equal(t, "c-new", session.ID)
	assert.Equal(t, "New General Chat", session.Title)
	assert.Equal(t, "c-new", store.SelectedID())

	// The sparse server record was filled in locally
	assert.Equal(t, models.SessionActive, session.Status)
	assert.False(t, session.CreatedAt.IsZero())
}

func TestCreateAgentChatTitle(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "c-agent"}`))
	}))

	store := NewStore(client, 100)
	session, err := store.Create(context.Background(), "ag-1", "Scout")

	require.NoError(t, err)
	assert.Equal(t, "Chat with Scout", session.Title)
	assert.Equal(t, "ag-1", session.AgentID)
	assert.Equal(t, "Scout", session.AgentName)
}

func TestCreateRejectsMissingServerID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	store := NewStore(client, 100)
	_, err := store.Create(context.Background(), "", "")

	require.Error(t, err)
	assert.Zero(t, store.Count(FilterAll), "nothing may be inserted without a server id")
}

func TestCreateInFlightGuard(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		w.Write([]byte(`{"id": "c-slow"}`))
	}))

	store := NewStore(client, 100)

	done := make(chan error, 1)
	go func() {
		_, err := store.Create(context.Background(), "", "")
		done <- err
	}()

	<-started
	assert.True(t, store.CreateInFlight())

	// A second trigger while the first is pending fails fast, no second call
	_, err := store.Create(context.Background(), "", "")
	require.Error(t, err)

	close(release)
	require.NoError(t, <-done)

	assert.False(t, store.CreateInFlight(), "guard must release after confirmation")
	assert.Equal(t, 1, store.Count(FilterAll), "exactly one session from N triggers")
}

func TestCreateFailureLeavesStoreUntouched(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{}`))
	}))

	store := NewStore(client, 100)
	_, err := store.Create(context.Background(), "", "")

	require.Error(t, err)
	assert.Zero(t, store.Count(FilterAll))
	assert.Empty(t, store.SelectedID())
	assert.False(t, store.CreateInFlight(), "guard must release on failure")
}

func TestDeleteIsServerFirst(t *testing.T) {
	fail := true
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(`[{"id": "c1", "title": "Keep", "message_count": 1}]`))
			return
		}
		require.Equal(t, http.MethodDelete, r.Method)
		if fail {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	store := NewStore(client, 100)
	require.NoError(t, store.Refresh(context.Background()))
	store.Select("c1")

	require.Error(t, store.Delete(context.Background(), "c1"))
	assert.Equal(t, 1, store.Count(FilterAll), "failed delete must not remove locally")
	assert.Equal(t, "c1", store.SelectedID())

	fail = false
	require.NoError(t, store.Delete(context.Background(), "c1"))
	assert.Zero(t, store.Count(FilterAll))
	assert.Empty(t, store.SelectedID())
}

func TestRenameEmptyTitleIsNoOp(t *testing.T) {
	calls := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(`[{"id": "c1", "title": "Original", "message_count": 1}]`))
			return
		}
		calls++
		w.Write([]byte(`{}`))
	}))

	store := NewStore(client, 100)
	require.NoError(t, store.Refresh(context.Background()))

	require.NoError(t, store.Rename(context.Background(), "c1", "   "))
	assert.Zero(t, calls, "whitespace-only rename must not reach the server")
	assert.Equal(t, "Original", store.List(FilterAll)[0].Title)

	require.NoError(t, store.Rename(context.Background(), "c1", "  Renamed  "))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "Renamed", store.List(FilterAll)[0].Title)
}

func TestRenameFailureKeepsLocalTitle(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(`[{"id": "c1", "title": "Original", "message_count": 1}]`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{}`))
	}))

	store := NewStore(client, 100)
	require.NoError(t, store.Refresh(context.Background()))

	require.Error(t, store.Rename(context.Background(), "c1", "Changed"))
	assert.Equal(t, "Original", store.List(FilterAll)[0].Title)
}

func TestReconcileMergesKnownSession(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": "c1", "title": "Original", "message_count": 5, "total_tokens": 100}]`))
	}))

	store := NewStore(client, 100)
	require.NoError(t, store.Refresh(context.Background()))

	store.Reconcile(models.Session{
		ID:            "c1",
		MessageCount:  7,
		TotalTokens:   150,
		LastMessageAt: time.Now(),
	})

	got, ok := store.Get("c1")
	require.True(t, ok)
	assert.Equal(t, "Original", got.Title, "zero incoming title leaves local value")
	assert.Equal(t, 7, got.MessageCount)
	assert.Equal(t, 150, got.TotalTokens)

	// Counters never move backward
	store.Reconcile(models.Session{ID: "c1", MessageCount: 2, TotalTokens: 10})
	got, _ = store.Get("c1")
	assert.Equal(t, 7, got.MessageCount)
	assert.Equal(t, 150, got.TotalTokens)
}

func TestReconcileInsertsUnknownWithMessages(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": "c1", "title": "Existing", "message_count": 1}]`))
	}))

	store := NewStore(client, 100)
	require.NoError(t, store.Refresh(context.Background()))

	store.Reconcile(models.Session{ID: "c2", Title: "From elsewhere", MessageCount: 3})

	sessions := store.List(FilterAll)
	require.Len(t, sessions, 2)
	assert.Equal(t, "c2", sessions[0].ID, "unknown sessions insert at the head")

	// Reconciling the same record again changes nothing
	store.Reconcile(models.Session{ID: "c2", Title: "From elsewhere", MessageCount: 3})
	assert.Equal(t, 2, store.Count(FilterAll))
}

func TestReconcileDropsUnknownEmptySession(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))

	store := NewStore(client, 100)
	require.NoError(t, store.Refresh(context.Background()))

	store.Reconcile(models.Session{ID: "ghost", MessageCount: 0})
	store.Reconcile(models.Session{})

	assert.Zero(t, store.Count(FilterAll))
}
