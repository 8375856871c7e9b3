package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/atlasprime/atlas/internal/models"
)

// AgentRequest is the payload for agent create/update. Tools is always sent
// as an array, never null.
type AgentRequest struct {
	Name         string   `json:"name"`
	Instructions string   `json:"instructions"`
	Tools        []string `json:"tools"`
	IconName     string   `json:"icon_name,omitempty"`
}

// ListAgents fetches all configured agents.
func (c *Client) ListAgents(ctx context.Context) ([]models.Agent, error) {
	var agents []models.Agent
	if err := c.Do(ctx, http.MethodGet, "/agents", nil, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// GetAgent fetches one agent by id.
func (c *Client) GetAgent(ctx context.Context, id string) (*models.Agent, error) {
	var agent models.Agent
	if err := c.Do(ctx, http.MethodGet, "/agents/"+id, nil, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// CreateAgent registers a new agent.
func (c *Client) CreateAgent(ctx context.Context, req AgentRequest) (*models.Agent, error) {
	if req.Tools == nil {
		req.Tools = []string{}
	}
	var agent models.Agent
	if err := c.Do(ctx, http.MethodPost, "/agents", req, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// UpdateAgent replaces an agent's definition.
func (c *Client) UpdateAgent(ctx context.Context, id string, req AgentRequest) (*models.Agent, error) {
	if req.Tools == nil {
		req.Tools = []string{}
	}
	var agent models.Agent
	if err := c.Do(ctx, http.MethodPut, "/agents/"+id, req, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// DeleteAgent removes an agent.
func (c *Client) DeleteAgent(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, "/agents/"+id, nil, nil)
}

// ListTools fetches the available tool definitions. The endpoint has shipped
// two shapes, a bare array and a {tools, total} wrapper; both are accepted.
func (c *Client) ListTools(ctx context.Context) ([]models.Tool, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodGet, "/tools", nil, &raw); err != nil {
		return nil, err
	}

	var tools []models.Tool
	if err := json.Unmarshal(raw, &tools); err == nil {
		return tools, nil
	}

	var wrapped struct {
		Tools []models.Tool `json:"tools"`
		Total int           `json:"total"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, &Error{Code: CodeUnknown, Message: "Unexpected response from server.", Details: raw}
	}
	return wrapped.Tools, nil
}
