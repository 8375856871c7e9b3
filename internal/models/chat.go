package models

import (
	"strings"
	"time"
)

// SessionStatus enumerates the lifecycle states the backend reports for a chat.
type SessionStatus string

const (
	SessionActive   SessionStatus = "active"
	SessionArchived SessionStatus = "archived"
	SessionLimited  SessionStatus = "limited"
)

// Session is a chat summary as tracked client-side. The id is opaque and
// server-assigned; counters are authoritative on the server and only ever
// overwritten here, never computed locally.
type Session struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	AgentID       string        `json:"agent_id,omitempty"`
	AgentName     string        `json:"agent_name,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	LastMessageAt time.Time     `json:"last_message_at"`
	MessageCount  int           `json:"message_count"`
	TotalTokens   int           `json:"total_tokens"`
	TotalCost     float64       `json:"total_cost"`
	Status        SessionStatus `json:"status"`
}

// Normalize fills the defensive defaults for fields the backend may omit on
// freshly created sessions: counts default to zero values already, timestamps
// default to now, status defaults to active, and an empty title gets the
// generic placeholder.
func (s *Session) Normalize(now time.Time) {
	if s.Title == "" {
		s.Title = "Untitled Chat"
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.LastMessageAt.IsZero() {
		s.LastMessageAt = now
	}
	if s.Status == "" {
		s.Status = SessionActive
	}
}

// MessageRole is fixed at creation: user or assistant.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is a single transcript entry. A client-generated temporary id
// (temp- prefix) is replaced in place once the server echoes the real one.
type Message struct {
	ID        string      `json:"id"`
	Content   string      `json:"content"`
	Role      MessageRole `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	FileIDs   []string    `json:"file_ids,omitempty"`
}

// Valid reports whether a server-returned record carries the fields the
// transcript requires. Malformed records are dropped on load.
func (m Message) Valid() bool {
	return m.ID != "" && m.Content != "" && (m.Role == RoleUser || m.Role == RoleAssistant)
}

// Pending reports whether the message still carries a client-generated id.
func (m Message) Pending() bool {
	return strings.HasPrefix(m.ID, "temp-")
}

// WarningLevel is derived server-side from the session's limit consumption.
// The client displays it verbatim and performs no local thresholding.
type WarningLevel string

const (
	WarningNone     WarningLevel = "none"
	WarningElevated WarningLevel = "warning"
	WarningCritical WarningLevel = "critical"
)

// UsageSnapshot is a point-in-time read of token/cost consumption for one
// session. Snapshots are replaced wholesale on every poll tick, never merged
// field by field.
type UsageSnapshot struct {
	ChatID            string       `json:"chat_id"`
	LastMessageTokens int          `json:"last_message_tokens"`
	TotalChatTokens   int          `json:"total_chat_tokens"`
	TotalChatCost     float64      `json:"total_chat_cost"`
	PercentageUsed    float64      `json:"percentage_used"`
	WarningLevel      WarningLevel `json:"warning_level"`
}
