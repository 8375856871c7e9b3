package tui

import (
	"time"

	"github.com/atlasprime/atlas/internal/api"
	"github.com/atlasprime/atlas/internal/models"
)

// Core message types
type tickMsg time.Time
type errMsg error
type toastExpiredMsg struct{}

// Session list messages
type sessionsRefreshedMsg struct{}
type sessionCreatedMsg struct {
	session models.Session
}
type sessionDeletedMsg struct {
	id string
}
type sessionRenamedMsg struct {
	id string
}
type agentsLoadedMsg []models.Agent

// Transcript messages
type transcriptLoadedMsg struct {
	sessionID string
}
type sendConfirmedMsg struct {
	sessionID string
	tempID    string
	resp      *api.SendMessageResponse
}
type sendFailedMsg struct {
	sessionID string
	tempID    string
	err       error
}
type assistantReadyMsg struct {
	sessionID string
	message   models.Message
}

// Usage telemetry messages
type usageMsg models.UsageSnapshot

// Authentication messages
type sessionExpiredMsg struct{}
