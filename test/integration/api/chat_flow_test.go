package api_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasprime/atlas/internal/chat"
	"github.com/atlasprime/atlas/internal/models"
	"github.com/atlasprime/atlas/test/integration/common"
)

// login signs the suite's client in and persists the credential.
func login(t *testing.T, ts *common.TestSuite) {
	t.Helper()
	resp, err := ts.Client.Login(context.Background(), common.TestEmail, common.TestPassword)
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.NoError(t, ts.Creds.Set(models.Credentials{AccessToken: resp.AccessToken, Email: common.TestEmail}))
}

func TestChatLifecycle(t *testing.T) {
	ts := common.SetupTestSuite(t)
	defer ts.TearDown()
	login(t, ts)

	ctx := context.Background()
	store := chat.NewStore(ts.Client, 100)

	// A fresh account has no chats
	require.NoError(t, store.Refresh(ctx))
	assert.Zero(t, store.Count(chat.FilterAll))

	// Create, send, and watch the transcript converge
	session, err := store.Create(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, "New General Chat", session.Title)
	assert.Equal(t, session.ID, store.SelectedID())

	transcript := chat.NewTranscript(ts.Client, store, session.ID, 100)
	require.NoError(t, transcript.Load(ctx))
	assert.Zero(t, transcript.Len())

	assistant, err := transcript.Send(ctx, "hello backend", nil)
	require.NoError(t, err)
	require.NotNil(t, assistant)
	assert.Contains(t, assistant.Content, "hello backend")

	messages := transcript.Messages()
	require.Len(t, messages, 2)
	assert.False(t, messages[0].Pending(), "server id replaced the temporary one")

	// Counters flowed back into the session list
	got, ok := store.Get(session.ID)
	require.True(t, ok)
	assert.Equal(t, 2, got.MessageCount)
	assert.Positive(t, got.TotalTokens)

	// Reload from the server and see the same transcript
	require.NoError(t, transcript.Load(ctx))
	require.Equal(t, 2, transcript.Len())

	// Rename round-trips
	require.NoError(t, store.Rename(ctx, session.ID, "Redone"))
	require.NoError(t, store.Refresh(ctx))
	got, _ = store.Get(session.ID)
	assert.Equal(t, "Redone", got.Title)

	// Delete removes it server-side too
	require.NoError(t, store.Delete(ctx, session.ID))
	require.NoError(t, store.Refresh(ctx))
	assert.Zero(t, store.Count(chat.FilterAll))
}

func TestAgentChatFlow(t *testing.T) {
	ts := common.SetupTestSuite(t)
	defer ts.TearDown()
	login(t, ts)

	ctx := context.Background()

	agents, err := ts.Client.ListAgents(ctx)
	require.NoError(t, err)
	require.Len(t, agents, 1)

	store := chat.NewStore(ts.Client, 100)
	session, err := store.Create(ctx, agents[0].ID, agents[0].Name)
	require.NoError(t, err)
	assert.Equal(t, "Chat with Scout", session.Title)
	assert.Equal(t, "ag-1", session.AgentID)

	// Agent filter sees it once it has messages
	transcript := chat.NewTranscript(ts.Client, store, session.ID, 100)
	_, err = transcript.Send(ctx, "scout this", nil)
	require.NoError(t, err)

	require.NoError(t, store.Refresh(ctx))
	assert.Equal(t, 1, store.Count(chat.FilterAgents))
	assert.Zero(t, store.Count(chat.FilterGeneral))
}

func TestSendFailureRollsBack(t *testing.T) {
	ts := common.SetupTestSuite(t)
	defer ts.TearDown()
	login(t, ts)

	ctx := context.Background()
	store := chat.NewStore(ts.Client, 100)
	session, err := store.Create(ctx, "", "")
	require.NoError(t, err)

	transcript := chat.NewTranscript(ts.Client, store, session.ID, 100)
	_, err = transcript.Send(ctx, "survivor", nil)
	require.NoError(t, err)
	require.Equal(t, 2, transcript.Len())

	ts.Backend.FailNextSend = true
	_, err = transcript.Send(ctx, "doomed", nil)
	require.Error(t, err)
	assert.Equal(t, 2, transcript.Len(), "failed send leaves the transcript as it was")
	assert.False(t, transcript.Sending())
}

func TestUsagePollingAgainstBackend(t *testing.T) {
	ts := common.SetupTestSuite(t)
	defer ts.TearDown()
	login(t, ts)

	ctx := context.Background()
	store := chat.NewStore(ts.Client, 100)
	session, err := store.Create(ctx, "", "")
	require.NoError(t, err)

	transcript := chat.NewTranscript(ts.Client, store, session.ID, 100)
	_, err = transcript.Send(ctx, "some tokens please", nil)
	require.NoError(t, err)

	poller := chat.NewPoller(ts.Client, 20*time.Millisecond)
	snaps := make(chan models.UsageSnapshot, 8)
	handle := poller.Start(session.ID, func(snap models.UsageSnapshot) {
		select {
		case snaps <- snap:
		default:
		}
	})
	defer handle.Stop()

	select {
	case snap := <-snaps:
		assert.Equal(t, session.ID, snap.ChatID)
		assert.Positive(t, snap.TotalChatTokens)
	case <-time.After(5 * time.Second):
		t.Fatal("no usage snapshot arrived")
	}
}

func TestUnauthorizedTearsDownCredentials(t *testing.T) {
	ts := common.SetupTestSuite(t)
	defer ts.TearDown()
	login(t, ts)

	hookFired := false
	ts.Creds.OnClear(func() { hookFired = true })

	ts.Backend.RevokeToken()

	store := chat.NewStore(ts.Client, 100)
	err := store.Refresh(context.Background())

	require.Error(t, err)
	assert.False(t, ts.Creds.Authenticated(), "401 clears the stored credential")
	assert.True(t, hookFired)
}

func TestWhoamiAndUsageReport(t *testing.T) {
	ts := common.SetupTestSuite(t)
	defer ts.TearDown()
	login(t, ts)

	ctx := context.Background()

	user, err := ts.Client.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, common.TestEmail, user.Email)

	report, err := ts.Client.UsageReport(ctx, 30)
	require.NoError(t, err)
	assert.Zero(t, report.TotalTokensUsed)

	tools, err := ts.Client.ListTools(ctx)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "web_search", tools[0].Name)
}
