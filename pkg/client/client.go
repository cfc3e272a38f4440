// Package client is the Go REST client for the snowsarva-engine API. It
// carries the session cookie across calls and satisfies registry.Backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/apperrors"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/models"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/registry"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/retry"
)

var _ registry.Backend = (*Client)(nil)

const defaultTimeout = 30 * time.Second

// envelope mirrors the API's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// ConnectionRequest carries connection fields for create, update, and test
// calls. Zero-valued fields are omitted from the body.
type ConnectionRequest struct {
	Name      string `json:"name,omitempty"`
	Account   string `json:"account,omitempty"`
	Username  string `json:"username,omitempty"`
	Password  string `json:"password,omitempty"`
	Role      string `json:"role,omitempty"`
	Warehouse string `json:"warehouse,omitempty"`
	IsActive  *bool  `json:"isActive,omitempty"`
}

// Client talks to one engine instance on behalf of one session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retryCfg   *retry.Config
}

// New creates a client for the given base URL (e.g. "http://localhost:5000").
// The client holds a cookie jar, so Login establishes a session for all
// subsequent calls.
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: defaultTimeout,
		},
		retryCfg: retry.DefaultConfig(),
	}, nil
}

// Login authenticates and stores the session cookie.
func (c *Client) Login(ctx context.Context, username, password string) (*models.User, error) {
	body := map[string]string{"username": username, "password": password}
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Register creates an account and stores the session cookie.
func (c *Client) Register(ctx context.Context, username, password string) (*models.User, error) {
	body := map[string]string{"username": username, "password": password}
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout ends the session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// ListConnections returns all connections in server order. Idempotent, so
// transient failures are retried; rejections and auth failures surface
// immediately.
func (c *Client) ListConnections(ctx context.Context) ([]models.Connection, error) {
	return retry.DoWithResultIf(ctx, c.retryCfg, transient, func() ([]models.Connection, error) {
		var connections []models.Connection
		if err := c.do(ctx, http.MethodGet, "/api/connections", nil, &connections); err != nil {
			return nil, err
		}
		return connections, nil
	})
}

// transient reports whether a failure is worth retrying.
func transient(err error) bool {
	return errors.Is(err, apperrors.ErrUnavailable)
}

// CreateConnection tests the credentials server-side and persists the
// connection.
func (c *Client) CreateConnection(ctx context.Context, req ConnectionRequest) (*models.Connection, error) {
	var conn models.Connection
	if err := c.do(ctx, http.MethodPost, "/api/connections", req, &conn); err != nil {
		return nil, err
	}
	return &conn, nil
}

// UpdateConnection updates settings or credentials on a connection.
func (c *Client) UpdateConnection(ctx context.Context, id int64, req ConnectionRequest) (*models.Connection, error) {
	var conn models.Connection
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/connections/%d", id), req, &conn); err != nil {
		return nil, err
	}
	return &conn, nil
}

// ActivateConnection marks the connection active and all others inactive.
func (c *Client) ActivateConnection(ctx context.Context, id int64) error {
	active := true
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/connections/%d", id),
		ConnectionRequest{IsActive: &active}, nil)
}

// DeleteConnection removes a connection.
func (c *Client) DeleteConnection(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/connections/%d", id), nil, nil)
}

// do runs one request/response cycle: encode body, send, decode the
// envelope, and map failures onto the stable error taxonomy.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", apperrors.ErrUnavailable, err)
	}

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: server returned %d", apperrors.ErrUnavailable, resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: malformed response body: %v", apperrors.ErrUnavailable, err)
	}

	if resp.StatusCode >= 400 || !env.Success {
		return rejectionError(resp.StatusCode, &env)
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%w: malformed response payload: %v", apperrors.ErrUnavailable, err)
		}
	}

	return nil
}

// rejectionError maps a structured error response to a sentinel, keeping the
// server's message so callers can display it verbatim.
func rejectionError(status int, env *envelope) error {
	message := env.Message
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}

	switch {
	case status == http.StatusNotFound || env.Error == "not_found":
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, message)
	case status == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", apperrors.ErrUnauthorized, message)
	default:
		return fmt.Errorf("%w: %s", apperrors.ErrRejected, message)
	}
}
