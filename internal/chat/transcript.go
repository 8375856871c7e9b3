package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atlasprime/atlas/internal/api"
	"github.com/atlasprime/atlas/internal/logger"
	"github.com/atlasprime/atlas/internal/models"
)

// Transcript owns the ordered message list of one session. It is torn down
// and rebuilt whenever the selection changes, so messages can never leak
// across sessions. Sends follow idle -> sending -> {confirmed | failed}: the
// optimistic user message is appended under a temporary id captured at send
// time and either confirmed in place or rolled back entirely.
type Transcript struct {
	mu        sync.Mutex
	client    *api.Client
	store     *Store
	sessionID string
	pageLimit int

	messages []models.Message
	sending  bool
}

// NewTranscript builds the transcript for one session. store may be nil when
// there is no session list to keep in sync (one-shot CLI use).
func NewTranscript(client *api.Client, store *Store, sessionID string, pageLimit int) *Transcript {
	return &Transcript{
		client:    client,
		store:     store,
		sessionID: sessionID,
		pageLimit: pageLimit,
	}
}

// SessionID returns the session this transcript belongs to.
func (t *Transcript) SessionID() string {
	return t.sessionID
}

// Load fetches one page of the transcript, drops malformed records, sorts by
// creation time ascending and replaces the in-memory list wholesale. Loads
// never merge; only sends do.
func (t *Transcript) Load(ctx context.Context) error {
	detail, err := t.client.GetChat(ctx, t.sessionID, t.pageLimit)
	if err != nil {
		return err
	}

	kept := make([]models.Message, 0, len(detail.Messages))
	for _, msg := range detail.Messages {
		if !msg.Valid() {
			logger.Debugf("chat: dropping malformed message in %s", t.sessionID)
			continue
		}
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = time.Now()
		}
		kept = append(kept, msg)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].CreatedAt.Before(kept[j].CreatedAt)
	})

	t.mu.Lock()
	t.messages = kept
	t.mu.Unlock()

	if t.store != nil && detail.ID != "" {
		t.store.Reconcile(detail.Session)
	}
	return nil
}

// Messages returns a copy of the display-ordered message list.
func (t *Transcript) Messages() []models.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages currently held.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

// Sending reports whether a send is in flight; the input surface is disabled
// while true, which is what prevents two concurrent sends.
func (t *Transcript) Sending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sending
}

// BeginSend is the synchronous half of a send: it validates the content,
// moves the state machine to sending and appends the optimistic user message
// under a temporary id. The returned message's id must be captured by the
// caller and passed to ConfirmSend or FailSend.
func (t *Transcript) BeginSend(content string, fileIDs []string) (models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Message{}, fmt.Errorf("message is empty")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sending {
		return models.Message{}, fmt.Errorf("a message is already being sent")
	}

	msg := models.Message{
		ID:        "temp-" + uuid.New().String(),
		Content:   content,
		Role:      models.RoleUser,
		CreatedAt: time.Now(),
		FileIDs:   fileIDs,
	}
	t.sending = true
	t.messages = append(t.messages, msg)
	return msg, nil
}

// Dispatch performs the network half of a send for a message created by
// BeginSend.
func (t *Transcript) Dispatch(ctx context.Context, msg models.Message) (*api.SendMessageResponse, error) {
	return t.client.SendMessage(ctx, t.sessionID, api.SendMessageRequest{
		Content:            msg.Content,
		FileIDs:            msg.FileIDs,
		IncludeFileContent: true,
		MaxFileTokens:      4000,
	})
}

// ConfirmSend applies a successful send response: the temporary id is
// replaced in place (never duplicated) and the session store is reconciled
// with the updated counters. When the response carries assistant content a
// ready-to-append assistant message is returned; the presentation layer
// appends it via AppendAssistant after its pacing delay.
func (t *Transcript) ConfirmSend(tempID string, resp *api.SendMessageResponse) *models.Message {
	t.mu.Lock()
	t.sending = false
	for i := range t.messages {
		if t.messages[i].ID == tempID {
			if resp.UserMessageID != "" {
				t.messages[i].ID = resp.UserMessageID
			} else {
				// Confirmed without a server id; shed the temporary prefix
				// so the message no longer reads as pending.
				t.messages[i].ID = strings.TrimPrefix(tempID, "temp-")
			}
			break
		}
	}
	t.mu.Unlock()

	var assistant *models.Message
	if resp.Content != "" {
		id := resp.MessageID
		if id == "" {
			id = "assistant-" + uuid.New().String()
		}
		created := time.Now()
		if resp.CreatedAt != "" {
			if parsed, err := time.Parse(time.RFC3339, resp.CreatedAt); err == nil {
				created = parsed
			}
		}
		assistant = &models.Message{
			ID:        id,
			Content:   resp.Content,
			Role:      models.RoleAssistant,
			CreatedAt: created,
		}
	}

	t.reconcileStore(resp, assistant != nil)
	return assistant
}

// AppendAssistant appends a confirmed assistant message.
func (t *Transcript) AppendAssistant(msg models.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msg)
}

// FailSend rolls a failed send back: the temporary message is removed
// entirely so an unconfirmed user message never survives a failure.
func (t *Transcript) FailSend(tempID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sending = false
	for i := range t.messages {
		if t.messages[i].ID == tempID {
			t.messages = append(t.messages[:i], t.messages[i+1:]...)
			return
		}
	}
}

// Send runs the whole state machine in one blocking call, including the
// assistant append with no pacing delay. Used by headless callers and tests.
func (t *Transcript) Send(ctx context.Context, content string, fileIDs []string) (*models.Message, error) {
	temp, err := t.BeginSend(content, fileIDs)
	if err != nil {
		return nil, err
	}

	resp, err := t.Dispatch(ctx, temp)
	if err != nil {
		t.FailSend(temp.ID)
		return nil, err
	}

	assistant := t.ConfirmSend(temp.ID, resp)
	if assistant != nil {
		t.AppendAssistant(*assistant)
	}
	return assistant, nil
}

// reconcileStore pushes the send response's counters into the session store
// so the summary stays approximately in sync without a separate fetch.
func (t *Transcript) reconcileStore(resp *api.SendMessageResponse, gotReply bool) {
	if t.store == nil {
		return
	}

	patch := models.Session{ID: t.sessionID, LastMessageAt: time.Now()}
	if cur, ok := t.store.Get(t.sessionID); ok {
		delta := 1
		if gotReply {
			delta = 2
		}
		patch.MessageCount = cur.MessageCount + delta
	} else {
		patch.MessageCount = t.Len()
	}
	patch.TotalTokens = resp.TotalTokens
	patch.TotalCost = resp.TotalCost
	if resp.Chat != nil && resp.Chat.ID == t.sessionID {
		merge(&patch, *resp.Chat)
	}
	t.store.Reconcile(patch)
}
