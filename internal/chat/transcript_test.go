package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasprime/atlas/internal/api"
	"github.com/atlasprime/atlas/internal/models"
)

func TestLoadFiltersAndSortsMessages(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chats/c1", r.URL.Path)
		w.Write([]byte(`{
			"id": "c1",
			"title": "Sorted",
			"message_count": 3,
			"messages": [
				{"id": "m2", "content": "second", "role": "assistant", "created_at": "2026-08-01T10:00:10Z"},
				{"id": "", "content": "no id", "role": "user", "created_at": "2026-08-01T10:00:01Z"},
				{"id": "m3", "content": "", "role": "user", "created_at": "2026-08-01T10:00:02Z"},
				{"id": "m4", "content": "bad role", "role": "robot", "created_at": "2026-08-01T10:00:03Z"},
				{"id": "m1", "content": "first", "role": "user", "created_at": "2026-08-01T10:00:00Z"}
			]
		}`))
	}))

	transcript := NewTranscript(client, nil, "c1", 100)
	require.NoError(t, transcript.Load(context.Background()))

	messages := transcript.Messages()
	require.Len(t, messages, 2, "malformed records are dropped")
	assert.Equal(t, "m1", messages[0].ID)
	assert.Equal(t, "m2", messages[1].ID)
}

func TestLoadReplacesWholesale(t *testing.T) {
	calls := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write([]byte(`{"id": "c1", "message_count": 2, "messages": [
				{"id": "m1", "content": "a", "role": "user", "created_at": "2026-08-01T10:00:00Z"},
				{"id": "m2", "content": "b", "role": "assistant", "created_at": "2026-08-01T10:00:01Z"}
			]}`))
			return
		}
		w.Write([]byte(`{"id": "c1", "message_count": 1, "messages": [
			{"id": "m9", "content": "only", "role": "user", "created_at": "2026-08-01T11:00:00Z"}
		]}`))
	}))

	transcript := NewTranscript(client, nil, "c1", 100)
	require.NoError(t, transcript.Load(context.Background()))
	require.Equal(t, 2, transcript.Len())

	require.NoError(t, transcript.Load(context.Background()))
	messages := transcript.Messages()
	require.Len(t, messages, 1, "loads replace, never merge")
	assert.Equal(t, "m9", messages[0].ID)
}

func TestLoadReconcilesSessionIntoStore(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/chats" {
			w.Write([]byte(`[{"id": "c1", "title": "Old title", "message_count": 1}]`))
			return
		}
		w.Write([]byte(`{"id": "c1", "title": "Fresh title", "message_count": 6, "messages": []}`))
	}))

	store := NewStore(client, 100)
	require.NoError(t, store.Refresh(context.Background()))

	transcript := NewTranscript(client, store, "c1", 100)
	require.NoError(t, transcript.Load(context.Background()))

	got, ok := store.Get("c1")
	require.True(t, ok)
	assert.Equal(t, "Fresh title", got.Title)
	assert.Equal(t, 6, got.MessageCount)
}

func TestBeginSendValidation(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	transcript := NewTranscript(client, nil, "c1", 100)

	_, err := transcript.BeginSend("   ", nil)
	require.Error(t, err, "whitespace-only content is rejected")
	assert.Zero(t, transcript.Len())
	assert.False(t, transcript.Sending())

	temp, err := transcript.BeginSend("  hello  ", nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(temp.ID, "temp-"))
	assert.True(t, temp.Pending())
	assert.Equal(t, "hello", temp.Content, "content is trimmed")
	assert.Equal(t, models.RoleUser, temp.Role)
	assert.True(t, transcript.Sending())

	_, err = transcript.BeginSend("again", nil)
	require.Error(t, err, "one send at a time")
	assert.Equal(t, 1, transcript.Len())
}

func TestSendHappyPath(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chats/c1/message", r.URL.Path)

		var req api.SendMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hi there", req.Content)

		w.Write([]byte(`{
			"user_message_id": "srv-u1",
			"message_id": "srv-a1",
			"content": "hello back",
			"created_at": "2026-08-01T10:00:05Z",
			"total_tokens": 42,
			"total_cost": 0.003
		}`))
	}))

	transcript := NewTranscript(client, nil, "c1", 100)
	assistant, err := transcript.Send(context.Background(), "hi there", nil)

	require.NoError(t, err)
	require.NotNil(t, assistant)
	assert.Equal(t, "srv-a1", assistant.ID)
	assert.Equal(t, "hello back", assistant.Content)
	assert.Equal(t, models.RoleAssistant, assistant.Role)

	messages := transcript.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "srv-u1", messages[0].ID, "temp id replaced in place")
	assert.False(t, messages[0].Pending())
	assert.False(t, transcript.Sending())
}

func TestSendFailureRollsBackCompletely(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/message") {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{}`))
			return
		}
		w.Write([]byte(`{"id": "c1", "message_count": 1, "messages": [
			{"id": "m1", "content": "existing", "role": "user", "created_at": "2026-08-01T10:00:00Z"}
		]}`))
	}))

	transcript := NewTranscript(client, nil, "c1", 100)
	require.NoError(t, transcript.Load(context.Background()))

	_, err := transcript.Send(context.Background(), "doomed", nil)
	require.Error(t, err)

	messages := transcript.Messages()
	require.Len(t, messages, 1, "optimistic message fully rolled back")
	assert.Equal(t, "m1", messages[0].ID)
	assert.False(t, transcript.Sending(), "a new send is possible after failure")
}

func TestConfirmSendWithoutReply(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user_message_id": "srv-u1", "content": ""}`))
	}))

	transcript := NewTranscript(client, nil, "c1", 100)
	assistant, err := transcript.Send(context.Background(), "ping", nil)

	require.NoError(t, err)
	assert.Nil(t, assistant, "no assistant message without content")
	require.Equal(t, 1, transcript.Len())
	assert.Equal(t, "srv-u1", transcript.Messages()[0].ID)
}

func TestConfirmSendWithoutUserIDClearsPending(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content": "reply"}`))
	}))

	transcript := NewTranscript(client, nil, "c1", 100)
	_, err := transcript.Send(context.Background(), "ping", nil)
	require.NoError(t, err)

	messages := transcript.Messages()
	require.Len(t, messages, 2)
	user := messages[0]
	assert.False(t, user.Pending(), "confirmed message must not render as pending")
	assert.False(t, strings.HasPrefix(user.ID, "temp-"))
	assert.NotEmpty(t, user.ID)
}

func TestConfirmSendUpdatesStoreCounters(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/chats" {
			w.Write([]byte(`[{"id": "c1", "title": "Chat", "message_count": 2}]`))
			return
		}
		w.Write([]byte(`{
			"user_message_id": "srv-u1",
			"message_id": "srv-a1",
			"content": "reply",
			"total_tokens": 99,
			"total_cost": 0.01
		}`))
	}))

	store := NewStore(client, 100)
	require.NoError(t, store.Refresh(context.Background()))

	transcript := NewTranscript(client, store, "c1", 100)
	_, err := transcript.Send(context.Background(), "count me", nil)
	require.NoError(t, err)

	got, ok := store.Get("c1")
	require.True(t, ok)
	assert.Equal(t, 4, got.MessageCount, "user plus assistant on top of 2")
	assert.Equal(t, 99, got.TotalTokens)
	assert.InDelta(t, 0.01, got.TotalCost, 1e-9)
	assert.False(t, got.LastMessageAt.IsZero())
}

func TestAppendAssistantAfterConfirm(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user_message_id": "srv-u1", "message_id": "srv-a1", "content": "delayed"}`))
	}))

	transcript := NewTranscript(client, nil, "c1", 100)
	temp, err := transcript.BeginSend("hi", nil)
	require.NoError(t, err)

	resp, err := transcript.Dispatch(context.Background(), temp)
	require.NoError(t, err)

	assistant := transcript.ConfirmSend(temp.ID, resp)
	require.NotNil(t, assistant)
	assert.Equal(t, 1, transcript.Len(), "assistant not visible until appended")
	assert.False(t, transcript.Sending())

	transcript.AppendAssistant(*assistant)
	messages := transcript.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "delayed", messages[1].Content)
	assert.True(t, messages[0].CreatedAt.Before(messages[1].CreatedAt.Add(time.Second)))
}
