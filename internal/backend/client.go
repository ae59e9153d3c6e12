// Package backend is the HTTP client for the agent backend's REST API.
// It owns the wire format translation; callers only ever see domain types.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/emiliopalmerini/agentdeck/internal/domain"
)

// Observer is notified of every backend request, for metrics.
type Observer func(op string, elapsed time.Duration, err error)

// Client talks to the agent backend. Construct one at startup and pass it
// down explicitly; there is no package-level instance.
type Client struct {
	baseURL  string
	token    string
	http     *http.Client
	observer Observer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithObserver installs a request observer.
func WithObserver(obs Observer) Option {
	return func(c *Client) { c.observer = obs }
}

// NewClient creates a backend client for the given base URL. The token is
// sent as a bearer credential when non-empty.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListSessions fetches all sessions visible to the user.
func (c *Client) ListSessions(ctx context.Context) ([]domain.Session, error) {
	var resp struct {
		Sessions []sessionDTO `json:"sessions"`
	}
	if err := c.do(ctx, "sessions.list", http.MethodGet, "/api/sessions", nil, &resp); err != nil {
		return nil, err
	}
	return decodeSessions(resp.Sessions), nil
}

// GetSession fetches one session by id.
func (c *Client) GetSession(ctx context.Context, id string) (domain.Session, error) {
	var resp struct {
		Session sessionDTO `json:"session"`
	}
	if err := c.do(ctx, "sessions.get", http.MethodGet, "/api/sessions/"+id, nil, &resp); err != nil {
		return domain.Session{}, err
	}
	return decodeSession(resp.Session), nil
}

// CreateSession creates a session. Input validation is the caller's job;
// the client sends whatever it is given.
func (c *Client) CreateSession(ctx context.Context, data domain.CreateSessionData) (domain.Session, error) {
	var resp struct {
		Session sessionDTO `json:"session"`
	}
	if err := c.do(ctx, "sessions.create", http.MethodPost, "/api/sessions", encodeCreateSession(data), &resp); err != nil {
		return domain.Session{}, err
	}
	return decodeSession(resp.Session), nil
}

// UpdateSession applies a partial update and returns the authoritative
// server state.
func (c *Client) UpdateSession(ctx context.Context, id string, patch domain.UpdateSessionData) (domain.Session, error) {
	var resp struct {
		Session sessionDTO `json:"session"`
	}
	if err := c.do(ctx, "sessions.update", http.MethodPatch, "/api/sessions/"+id, encodeUpdateSession(patch), &resp); err != nil {
		return domain.Session{}, err
	}
	return decodeSession(resp.Session), nil
}

// ArchiveSession moves a session to the archived lifecycle state.
func (c *Client) ArchiveSession(ctx context.Context, id string) (domain.Session, error) {
	var resp struct {
		Session sessionDTO `json:"session"`
	}
	if err := c.do(ctx, "sessions.archive", http.MethodPost, "/api/sessions/"+id+"/archive", nil, &resp); err != nil {
		return domain.Session{}, err
	}
	return decodeSession(resp.Session), nil
}

// UnarchiveSession restores an archived session.
func (c *Client) UnarchiveSession(ctx context.Context, id string) (domain.Session, error) {
	var resp struct {
		Session sessionDTO `json:"session"`
	}
	if err := c.do(ctx, "sessions.unarchive", http.MethodPost, "/api/sessions/"+id+"/unarchive", nil, &resp); err != nil {
		return domain.Session{}, err
	}
	return decodeSession(resp.Session), nil
}

// DeleteSession permanently removes a session.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, "sessions.delete", http.MethodDelete, "/api/sessions/"+id, nil, nil)
}

// ListPrompts fetches the prompts of a session in storage order.
func (c *Client) ListPrompts(ctx context.Context, sessionID string) ([]domain.Prompt, error) {
	var resp struct {
		Prompts []promptDTO `json:"prompts"`
	}
	if err := c.do(ctx, "prompts.list", http.MethodGet, "/api/sessions/"+sessionID+"/prompts", nil, &resp); err != nil {
		return nil, err
	}
	return decodePrompts(resp.Prompts), nil
}

// CreatePrompt submits a new user instruction to a session.
func (c *Client) CreatePrompt(ctx context.Context, sessionID, content string) (domain.Prompt, error) {
	var resp struct {
		Prompt promptDTO `json:"prompt"`
	}
	if err := c.do(ctx, "prompts.create", http.MethodPost, "/api/sessions/"+sessionID+"/prompts", createPromptDTO{Content: content}, &resp); err != nil {
		return domain.Prompt{}, err
	}
	return decodePrompt(resp.Prompt), nil
}

// ListMessages fetches the agent trace for one prompt. Order is the API
// return order; no reliable per-message timestamp exists.
func (c *Client) ListMessages(ctx context.Context, promptID string) ([]domain.BackendMessage, error) {
	var resp struct {
		Messages []messageEnvelope `json:"messages"`
	}
	if err := c.do(ctx, "messages.list", http.MethodGet, "/api/prompts/"+promptID+"/messages", nil, &resp); err != nil {
		return nil, err
	}
	return decodeMessages(resp.Messages), nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	start := time.Now()
	err := c.doRequest(ctx, method, path, body, out)
	if c.observer != nil {
		c.observer(op, time.Since(start), err)
	}
	return err
}

func (c *Client) doRequest(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// readErrorMessage pulls a human-readable message out of an error body,
// tolerating both {"error": "..."} and plain text.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return strings.TrimSpace(string(data))
}
