// Package api is the HTTP client gateway to the Atlas Prime backend. It is
// the only package permitted to perform outbound calls: it attaches the
// bearer credential, translates every failure into the closed Error taxonomy
// and tears the stored credential down on a 401 from any endpoint.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/atlasprime/atlas/internal/auth"
	"github.com/atlasprime/atlas/internal/logger"
)

const defaultTimeout = 30 * time.Second

// Client is the gateway. All typed endpoint wrappers go through Do.
type Client struct {
	baseURL string
	http    *http.Client
	creds   *auth.Store
}

// NewClient builds a gateway for the given backend base URL. The credential
// store is injected so auth lifecycle stays testable in isolation.
func NewClient(baseURL string, creds *auth.Store) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		creds:   creds,
	}
}

// BaseURL returns the configured backend endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs one JSON request. body (when non-nil) is JSON-encoded; a 2xx
// response is decoded into out (when non-nil). Every failure is returned as
// *Error; raw transport errors never escape.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Code: CodeUnknown, Message: fmt.Sprintf("encoding request: %v", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Code: CodeUnknown, Message: fmt.Sprintf("building request: %v", err)}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

// DoMultipart performs a multipart upload (file ingestion endpoints).
// contentType must be the multipart writer's FormDataContentType.
func (c *Client) DoMultipart(ctx context.Context, path, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return &Error{Code: CodeUnknown, Message: fmt.Sprintf("building request: %v", err)}
	}
	req.Header.Set("Content-Type", contentType)
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out interface{}) error {
	if token := c.creds.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Debugf("api: %s %s transport error: %v", req.Method, req.URL.Path, err)
		return networkError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Global session teardown: the stored credential is cleared no matter
		// which operation triggered the 401.
		logger.Infof("api: 401 from %s %s, clearing stored credentials", req.Method, req.URL.Path)
		c.creds.Clear()
		return classify(resp.StatusCode, data)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := classify(resp.StatusCode, data)
		logger.Debugf("api: %s %s -> %s", req.Method, req.URL.Path, apiErr)
		return apiErr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return &Error{
				Code:    CodeUnknown,
				Status:  resp.StatusCode,
				Message: "Unexpected response from server.",
				Details: json.RawMessage(data),
			}
		}
	}
	return nil
}

// queryPath appends url-encoded parameters to a path, skipping empty values.
func queryPath(path string, params map[string]string) string {
	q := url.Values{}
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	if encoded := q.Encode(); encoded != "" {
		return path + "?" + encoded
	}
	return path
}
