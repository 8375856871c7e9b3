package api

import (
	"context"
	"net/http"

	"github.com/atlasprime/atlas/internal/models"
)

// LoginResponse is the POST /auth/login payload.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type,omitempty"`
	User        *models.User `json:"user,omitempty"`
}

// Login exchanges email/password for a bearer token. The caller is
// responsible for persisting it into the credential store.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}

	var resp LoginResponse
	if err := c.Do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout invalidates the token server-side. Local credential teardown happens
// regardless of whether this call succeeds.
func (c *Client) Logout(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Me fetches the authenticated account.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.Do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
