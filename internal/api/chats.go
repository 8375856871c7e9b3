package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/atlasprime/atlas/internal/models"
)

// CreateChatRequest is the payload for POST /chats.
type CreateChatRequest struct {
	AgentID string `json:"agent_id,omitempty"`
	Title   string `json:"title,omitempty"`
}

// ListChatsParams filters GET /chats.
type ListChatsParams struct {
	Limit   int
	Skip    int
	AgentID string
	Status  string
}

// ChatDetail is the GET /chats/{id} payload: the session summary plus one
// page of its transcript.
type ChatDetail struct {
	models.Session
	Messages []models.Message `json:"messages"`
}

// SendMessageRequest is the payload for POST /chats/{id}/message.
type SendMessageRequest struct {
	Content            string   `json:"content"`
	FileIDs            []string `json:"file_ids,omitempty"`
	IncludeFileContent bool     `json:"include_file_content,omitempty"`
	MaxFileTokens      int      `json:"max_file_tokens,omitempty"`
}

// SendMessageResponse carries the server-confirmed ids, the assistant reply
// and the updated session counters. The assistant text lives in the single
// content field; there is no alternate field to fall back to.
type SendMessageResponse struct {
	UserMessageID string          `json:"user_message_id"`
	MessageID     string          `json:"message_id"`
	Content       string          `json:"content"`
	CreatedAt     string          `json:"created_at,omitempty"`
	TotalTokens   int             `json:"total_tokens"`
	TotalCost     float64         `json:"total_cost"`
	Chat          *models.Session `json:"chat,omitempty"`
}

// CreateChat creates a new session and returns the server's record, which may
// be sparse; callers normalize it.
func (c *Client) CreateChat(ctx context.Context, req CreateChatRequest) (*models.Session, error) {
	var session models.Session
	if err := c.Do(ctx, http.MethodPost, "/chats", req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListChats fetches the caller's sessions.
func (c *Client) ListChats(ctx context.Context, params ListChatsParams) ([]models.Session, error) {
	query := map[string]string{
		"agent_id": params.AgentID,
		"status":   params.Status,
	}
	if params.Limit > 0 {
		query["limit"] = strconv.Itoa(params.Limit)
	}
	if params.Skip > 0 {
		query["skip"] = strconv.Itoa(params.Skip)
	}

	var sessions []models.Session
	if err := c.Do(ctx, http.MethodGet, queryPath("/chats", query), nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetChat fetches one session together with up to limit transcript messages.
func (c *Client) GetChat(ctx context.Context, chatID string, limit int) (*ChatDetail, error) {
	query := map[string]string{}
	if limit > 0 {
		query["limit"] = strconv.Itoa(limit)
	}

	var detail ChatDetail
	if err := c.Do(ctx, http.MethodGet, queryPath("/chats/"+chatID, query), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// SendMessage posts a user message and returns the assistant reply plus
// updated counters.
func (c *Client) SendMessage(ctx context.Context, chatID string, req SendMessageRequest) (*SendMessageResponse, error) {
	var resp SendMessageResponse
	if err := c.Do(ctx, http.MethodPost, "/chats/"+chatID+"/message", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteChat removes a session server-side.
func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	return c.Do(ctx, http.MethodDelete, "/chats/"+chatID, nil, nil)
}

// UpdateChatTitle renames a session.
func (c *Client) UpdateChatTitle(ctx context.Context, chatID, title string) error {
	body := map[string]string{"title": title}
	return c.Do(ctx, http.MethodPatch, "/chats/"+chatID+"/title", body, nil)
}
