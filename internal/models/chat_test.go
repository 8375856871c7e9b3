package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionNormalize(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	s := Session{ID: "c1"}
	s.Normalize(now)

	assert.Equal(t, "Untitled Chat", s.Title)
	assert.Equal(t, now, s.CreatedAt)
	assert.Equal(t, now, s.LastMessageAt)
	assert.Equal(t, SessionActive, s.Status)
}

func TestSessionNormalizeKeepsExistingValues(t *testing.T) {
	now := time.Now()
	created := now.Add(-time.Hour)

	s := Session{ID: "c1", Title: "Mine", CreatedAt: created, Status: SessionLimited}
	s.Normalize(now)

	assert.Equal(t, "Mine", s.Title)
	assert.Equal(t, created, s.CreatedAt)
	assert.Equal(t, SessionLimited, s.Status)
}

func TestMessageValid(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want bool
	}{
		{"user message", Message{ID: "m1", Content: "hi", Role: RoleUser}, true},
		{"assistant message", Message{ID: "m2", Content: "hello", Role: RoleAssistant}, true},
		{"missing id", Message{Content: "hi", Role: RoleUser}, false},
		{"missing content", Message{ID: "m1", Role: RoleUser}, false},
		{"unknown role", Message{ID: "m1", Content: "hi", Role: "system"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.msg.Valid())
		})
	}
}

func TestMessagePending(t *testing.T) {
	assert.True(t, Message{ID: "temp-123"}.Pending())
	assert.False(t, Message{ID: "srv-123"}.Pending())
	assert.False(t, Message{}.Pending())
}
