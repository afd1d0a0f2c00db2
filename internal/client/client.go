// Package client talks to the tutorial todo backend over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Makepad-fr/tada-remote/internal/model"
)

// DefaultBaseURL is where the tutorial backend listens.
const DefaultBaseURL = "http://localhost:8000"

// RequestIDHeader carries a per-call id so client and server logs line up.
const RequestIDHeader = "X-Request-ID"

// Client issues the four todo calls. It never retries and sets no timeout of
// its own; callers bound a call through its context.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a client rooted at baseURL. An empty baseURL means DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the root every path is resolved against.
func (c *Client) BaseURL() string { return c.baseURL }

// List fetches every todo.
func (c *Client) List(ctx context.Context) ([]model.Todo, error) {
	var todos []model.Todo
	if err := c.do(ctx, OpList, http.MethodGet, "/todos/", nil, &todos); err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	return todos, nil
}

// Create posts a new todo and returns the record the server assigned.
func (c *Client) Create(ctx context.Context, title string) (model.Todo, error) {
	var todo model.Todo
	err := c.do(ctx, OpCreate, http.MethodPost, "/todos/", model.NewTodo{Title: title}, &todo)
	return todo, err
}

// Complete hits the per-todo complete endpoint; the server decides the new state.
func (c *Client) Complete(ctx context.Context, id int) (model.Todo, error) {
	var todo model.Todo
	err := c.do(ctx, OpUpdate, http.MethodPatch, "/todos/"+strconv.Itoa(id)+"/complete", nil, &todo)
	return todo, err
}

// Delete removes a todo and returns the server's confirmation payload untouched.
func (c *Client) Delete(ctx context.Context, id int) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, OpDelete, http.MethodDelete, "/todos/"+strconv.Itoa(id), nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) do(ctx context.Context, op Op, method, path string, body, out any) error {
	reqID := uuid.NewString()
	fail := func(status int, err error) error {
		return &RequestFailedError{Op: op, StatusCode: status, RequestID: reqID, Err: err}
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fail(0, fmt.Errorf("json marshal: %w", err))
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fail(0, fmt.Errorf("new request: %w", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request error", "method", method, "path", path, "request_id", reqID, "err", err)
		return fail(0, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request", "method", method, "path", path, "status", resp.StatusCode, "request_id", reqID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(resp.StatusCode, detail(resp.Body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fail(resp.StatusCode, fmt.Errorf("json decode: %w", err))
	}
	return nil
}

// detail pulls FastAPI-style {"detail": ...} out of an error body when present.
func detail(r io.Reader) error {
	b, err := io.ReadAll(io.LimitReader(r, 4<<10))
	if err != nil || len(b) == 0 {
		return nil
	}
	var payload struct {
		Detail any `json:"detail"`
	}
	if json.Unmarshal(b, &payload) == nil && payload.Detail != nil {
		return fmt.Errorf("%v", payload.Detail)
	}
	return nil
}
