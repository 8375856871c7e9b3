// Package chat implements the client-side synchronization core: the session
// list, the active transcript and the usage telemetry poller, kept mutually
// consistent under user actions and asynchronous server responses. All
// business logic lives behind the HTTP contract; this package only does
// optimistic bookkeeping and reconciliation.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/atlasprime/atlas/internal/api"
	"github.com/atlasprime/atlas/internal/logger"
	"github.com/atlasprime/atlas/internal/models"
)

// Filter selects a local view of the session list.
type Filter string

const (
	FilterAll     Filter = "all"
	FilterGeneral Filter = "general"
	FilterAgents  Filter = "agents"
)

// Store owns the in-memory session list and the current selection. Create,
// delete and rename mutate server-first: the local list only changes after
// the server confirms, so a failed call leaves the store untouched.
type Store struct {
	mu        sync.Mutex
	client    *api.Client
	pageLimit int

	sessions   []models.Session
	selectedID string
	creating   bool
}

// NewStore builds a session store against the given gateway.
func NewStore(client *api.Client, pageLimit int) *Store {
	return &Store{client: client, pageLimit: pageLimit}
}

// Refresh replaces the session list with the server's view, dropping
// malformed records and sessions that never received a message.
func (s *Store) Refresh(ctx context.Context) error {
	sessions, err := s.client.ListChats(ctx, api.ListChatsParams{Limit: s.pageLimit})
	if err != nil {
		return err
	}

	now := time.Now()
	kept := make([]models.Session, 0, len(sessions))
	for _, session := range sessions {
		if session.ID == "" || session.MessageCount <= 0 {
			continue
		}
		session.Normalize(now)
		kept = append(kept, session)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = kept
	if s.selectedID != "" && s.indexOf(s.selectedID) < 0 {
		s.selectedID = ""
	}
	return nil
}

// List returns the locally filtered view of the last successful fetch. It
// never re-fetches.
func (s *Store) List(filter Filter) []models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		switch filter {
		case FilterGeneral:
			if session.AgentID != "" {
				continue
			}
		case FilterAgents:
			if session.AgentID == "" {
				continue
			}
		}
		out = append(out, session)
	}
	return out
}

// Count returns how many sessions match the filter.
func (s *Store) Count(filter Filter) int {
	return len(s.List(filter))
}

// Create issues one create call and prepends the confirmed session. While a
// create is in flight further calls are rejected, so N rapid triggers yield
// exactly one server call. The new session becomes the selection.
func (s *Store) Create(ctx context.Context, agentID, agentName string) (*models.Session, error) {
	s.mu.Lock()
	if s.creating {
		s.mu.Unlock()
		return nil, fmt.Errorf("a chat is already being created")
	}
	s.creating = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.creating = false
		s.mu.Unlock()
	}()

	title := "New General Chat"
	if agentID != "" {
		name := agentName
		if name == "" {
			name = "Agent"
		}
		title = "Chat with " + name
	}

	created, err := s.client.CreateChat(ctx, api.CreateChatRequest{AgentID: agentID, Title: title})
	if err != nil {
		return nil, err
	}
	if created.ID == "" {
		return nil, fmt.Errorf("server returned a chat without an id")
	}

	session := *created
	if session.Title == "" {
		session.Title = title
	}
	if session.AgentID == "" {
		session.AgentID = agentID
	}
	if session.AgentName == "" {
		session.AgentName = agentName
	}
	session.Normalize(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append([]models.Session{session}, s.sessions...)
	s.selectedID = session.ID
	return &session, nil
}

// CreateInFlight reports whether a create call is pending; the presentation
// layer disables its trigger while true.
func (s *Store) CreateInFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creating
}

// Delete removes a session, server first. The local record only disappears
// after confirmation; deleting the selected session clears the selection.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.client.DeleteChat(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
	}
	if s.selectedID == id {
		s.selectedID = ""
	}
	return nil
}

// Rename updates a session title, server first, patching only the title
// locally. An empty title after trimming is a no-op: no call is issued.
func (s *Store) Rename(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}

	if err := s.client.UpdateChatTitle(ctx, id, title); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.sessions[i].Title = title
	}
	return nil
}

// Reconcile upserts a server-confirmed record: known sessions are shallow-
// merged with server fields winning, unknown ones are inserted at the head
// only when they already carry messages. Unknown zero-message records are
// dropped so background-created empty sessions never surface. Reconcile is
// idempotent.
func (s *Store) Reconcile(incoming models.Session) {
	if incoming.ID == "" {
		logger.Debugf("chat: dropping reconcile without id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(incoming.ID); i >= 0 {
		merge(&s.sessions[i], incoming)
		return
	}
	if incoming.MessageCount <= 0 {
		return
	}
	incoming.Normalize(time.Now())
	s.sessions = append([]models.Session{incoming}, s.sessions...)
}

// Select sets the current selection. Selecting an unknown id is allowed; the
// presentation layer renders a not-found state for it.
func (s *Store) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedID = id
}

// Selected returns the selected session, or ok=false when nothing is
// selected or the id no longer resolves.
func (s *Store) Selected() (models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selectedID == "" {
		return models.Session{}, false
	}
	i := s.indexOf(s.selectedID)
	if i < 0 {
		return models.Session{}, false
	}
	return s.sessions[i], true
}

// SelectedID returns the raw selection, which may not resolve to a session.
func (s *Store) SelectedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedID
}

// Get looks a session up by id.
func (s *Store) Get(id string) (models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Session{}, false
	}
	return s.sessions[i], true
}

// indexOf must be called with the lock held.
func (s *Store) indexOf(id string) int {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

// merge shallow-merges server fields into dst; zero values on the incoming
// record leave the local field untouched, counters only move forward.
func merge(dst *models.Session, src models.Session) {
	if src.Title != "" {
		dst.Title = src.Title
	}
	if src.AgentID != "" {
		dst.AgentID = src.AgentID
	}
	if src.AgentName != "" {
		dst.AgentName = src.AgentName
	}
	if !src.LastMessageAt.IsZero() && src.LastMessageAt.After(dst.LastMessageAt) {
		dst.LastMessageAt = src.LastMessageAt
	}
	if src.MessageCount > dst.MessageCount {
		dst.MessageCount = src.MessageCount
	}
	if src.TotalTokens > dst.TotalTokens {
		dst.TotalTokens = src.TotalTokens
	}
	if src.TotalCost > dst.TotalCost {
		dst.TotalCost = src.TotalCost
	}
	if src.Status != "" {
		dst.Status = src.Status
	}
}
