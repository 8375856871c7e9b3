// Package common provides shared testing utilities
package common //nolint:revive

import (
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/atlasprime/atlas/internal/api"
	"github.com/atlasprime/atlas/internal/auth"
)

// Account credentials the mock backend accepts.
const (
	TestEmail    = "tester@example.com"
	TestPassword = "hunter2"
)

// TestSuite holds an in-process mock Atlas backend plus a real client wired
// against it.
type TestSuite struct {
	BaseURL string
	Client  *api.Client
	Creds   *auth.Store
	Backend *MockBackend

	app     *fiber.App
	cleanup func()
}

// MockBackend is an in-memory stand-in for the Atlas Prime API.
type MockBackend struct {
	mu     sync.Mutex
	token  string
	chats  map[string]*chatRecord
	agents map[string]agentRecord

	// FailNextSend makes the next message send return a 500.
	FailNextSend bool
}

type chatRecord struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	AgentID   string        `json:"agent_id,omitempty"`
	AgentName string        `json:"agent_name,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	LastAt    time.Time     `json:"last_message_at"`
	Count     int           `json:"message_count"`
	Tokens    int           `json:"total_tokens"`
	Cost      float64       `json:"total_cost"`
	Status    string        `json:"status"`
	Messages  []messageJSON `json:"-"`
}

type messageJSON struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type agentRecord struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Tools []string `json:"tools"`
}

// SetupTestSuite starts the mock backend on a random local port and builds a
// signed-out client against it.
func SetupTestSuite(t *testing.T) *TestSuite {
	t.Helper()

	backend := &MockBackend{
		chats: make(map[string]*chatRecord),
		agents: map[string]agentRecord{
			"ag-1": {ID: "ag-1", Name: "Scout", Tools: []string{"web_search"}},
		},
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	backend.register(app)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() { _ = app.Listener(ln) }()

	baseURL := "http://" + ln.Addr().String()
	waitForBackend(t, baseURL)

	creds := auth.NewStore(filepath.Join(t.TempDir(), "credentials.json"))
	client := api.NewClient(baseURL, creds)

	return &TestSuite{
		BaseURL: baseURL,
		Client:  client,
		Creds:   creds,
		Backend: backend,
		app:     app,
		cleanup: func() { _ = app.Shutdown() },
	}
}

// TearDown stops the mock backend.
func (ts *TestSuite) TearDown() {
	if ts.cleanup != nil {
		ts.cleanup()
	}
}

func waitForBackend(t *testing.T, baseURL string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", strings.TrimPrefix(baseURL, "http://"), 100*time.Millisecond)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("mock backend did not start")
}

// register wires all routes the client exercises.
func (b *MockBackend) register(app *fiber.App) {
	app.Post("/auth/login", b.handleLogin)
	app.Post("/auth/logout", b.requireAuth, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "bye"})
	})
	app.Get("/auth/me", b.requireAuth, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": "u-1", "email": TestEmail, "role": "admin"})
	})

	app.Get("/agents", b.requireAuth, b.handleListAgents)
	app.Get("/tools", b.requireAuth, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"tools": []fiber.Map{{"name": "web_search", "category": "research"}},
			"total": 1,
		})
	})

	app.Post("/chats", b.requireAuth, b.handleCreateChat)
	app.Get("/chats", b.requireAuth, b.handleListChats)
	app.Get("/chats/:id", b.requireAuth, b.handleGetChat)
	app.Post("/chats/:id/message", b.requireAuth, b.handleSendMessage)
	app.Patch("/chats/:id/title", b.requireAuth, b.handleRename)
	app.Delete("/chats/:id", b.requireAuth, b.handleDeleteChat)

	app.Get("/analytics/realtime/:id", b.requireAuth, b.handleRealtimeUsage)
	app.Get("/analytics/usage", b.requireAuth, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"usage": fiber.Map{
			"total_tokens_used": b.totalTokens(),
			"total_chats":       len(b.chats),
		}})
	})
}

func (b *MockBackend) requireAuth(c *fiber.Ctx) error {
	b.mu.Lock()
	token := b.token
	b.mu.Unlock()

	header := c.Get("Authorization")
	if token == "" || header != "Bearer "+token {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "invalid token"})
	}
	return c.Next()
}

func (b *MockBackend) handleLogin(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "bad payload"})
	}
	if req.Email != TestEmail || req.Password != TestPassword {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "bad credentials"})
	}

	b.mu.Lock()
	b.token = "test-token-" + uuid.New().String()
	token := b.token
	b.mu.Unlock()

	return c.JSON(fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
		"user":         fiber.Map{"id": "u-1", "email": TestEmail},
	})
}

func (b *MockBackend) handleListAgents(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]agentRecord, 0, len(b.agents))
	for _, agent := range b.agents {
		out = append(out, agent)
	}
	return c.JSON(out)
}

func (b *MockBackend) handleCreateChat(c *fiber.Ctx) error {
	var req struct {
		AgentID string `json:"agent_id"`
		Title   string `json:"title"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "bad payload"})
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	record := &chatRecord{
		ID:        "chat-" + uuid.New().String(),
		Title:     req.Title,
		AgentID:   req.AgentID,
		CreatedAt: time.Now(),
		Status:    "active",
	}
	if agent, ok := b.agents[req.AgentID]; ok {
		record.AgentName = agent.Name
	}
	b.chats[record.ID] = record
	return c.Status(fiber.StatusCreated).JSON(record)
}

func (b *MockBackend) handleListChats(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*chatRecord, 0, len(b.chats))
	for _, record := range b.chats {
		out = append(out, record)
	}
	return c.JSON(out)
}

func (b *MockBackend) handleGetChat(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	record, ok := b.chats[c.Params("id")]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "no such chat"})
	}

	return c.JSON(fiber.Map{
		"id":              record.ID,
		"title":           record.Title,
		"agent_id":        record.AgentID,
		"agent_name":      record.AgentName,
		"created_at":      record.CreatedAt,
		"last_message_at": record.LastAt,
		"message_count":   record.Count,
		"total_tokens":    record.Tokens,
		"total_cost":      record.Cost,
		"status":          record.Status,
		"messages":        record.Messages,
	})
}

func (b *MockBackend) handleSendMessage(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"detail": "content required"})
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.FailNextSend {
		b.FailNextSend = false
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "synthetic failure"})
	}

	record, ok := b.chats[c.Params("id")]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "no such chat"})
	}

	now := time.Now()
	userMsg := messageJSON{ID: "msg-" + uuid.New().String(), Content: req.Content, Role: "user", CreatedAt: now}
	reply := messageJSON{
		ID:        "msg-" + uuid.New().String(),
		Content:   fmt.Sprintf("You said: %s", req.Content),
		Role:      "assistant",
		CreatedAt: now.Add(time.Millisecond),
	}
	record.Messages = append(record.Messages, userMsg, reply)
	record.Count += 2
	record.Tokens += len(req.Content)
	record.Cost += 0.001
	record.LastAt = now

	return c.JSON(fiber.Map{
		"user_message_id": userMsg.ID,
		"message_id":      reply.ID,
		"content":         reply.Content,
		"created_at":      reply.CreatedAt.Format(time.RFC3339),
		"total_tokens":    record.Tokens,
		"total_cost":      record.Cost,
		"chat":            record,
	})
}

func (b *MockBackend) handleRename(c *fiber.Ctx) error {
	var req struct {
		Title string `json:"title"`
	}
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"detail": "title required"})
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	record, ok := b.chats[c.Params("id")]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "no such chat"})
	}
	record.Title = req.Title
	return c.JSON(record)
}

func (b *MockBackend) handleDeleteChat(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.chats[c.Params("id")]; !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "no such chat"})
	}
	delete(b.chats, c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}

func (b *MockBackend) handleRealtimeUsage(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	record, ok := b.chats[c.Params("id")]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "no such chat"})
	}

	level := "none"
	if record.Tokens > 100 {
		level = "warning"
	}
	return c.JSON(fiber.Map{
		"chat_id":           record.ID,
		"total_chat_tokens": record.Tokens,
		"total_chat_cost":   record.Cost,
		"percentage_used":   float64(record.Tokens) / 10.0,
		"warning_level":     level,
	})
}

// RevokeToken invalidates the active token so the next call 401s.
func (b *MockBackend) RevokeToken() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = ""
}

func (b *MockBackend) totalTokens() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, record := range b.chats {
		total += record.Tokens
	}
	return total
}
