// Package client provides a Go consumer for the snippet API together with a
// synchronization Store that mirrors the server collection and applies
// optimistic mutations.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotFound is returned when the server reports a missing snippet.
var ErrNotFound = errors.New("client: snippet not found")

// Snippet mirrors the server's snippet representation.
type Snippet struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	CodeContent string    `json:"code_content"`
	Language    string    `json:"language"`
	Description *string   `json:"description,omitempty"`
	Tags        []string  `json:"tags"`
	IsFavorite  bool      `json:"is_favorite"`
	CreatedAt   time.Time `json:"created_at"`
}

// SnippetInput carries the fields accepted by Create and Update.
type SnippetInput struct {
	Title       string   `json:"title"`
	CodeContent string   `json:"code_content"`
	Language    string   `json:"language"`
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	IsFavorite  bool     `json:"is_favorite"`
}

// FieldError describes a single failing field from a validation response.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param,omitempty"`
}

// APIError is a non-2xx response decoded from the server envelope.
type APIError struct {
	StatusCode int
	Message    string
	Fields     []FieldError
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		parts := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			parts[i] = f.Field + " failed on " + f.Tag
		}
		return fmt.Sprintf("client: validation failed (%s)", strings.Join(parts, "; "))
	}
	if e.Message != "" {
		return fmt.Sprintf("client: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("client: request failed with status %d", e.StatusCode)
}

// envelope is the server's base payload shape.
type envelope struct {
	Success bool            `json:"success"`
	Count   *int            `json:"count,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Errors []FieldError `json:"errors,omitempty"`
}

// Client is a thin REST consumer for the snippet API.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option customises the Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New constructs a Client targeting the given base URL, e.g.
// "http://localhost:8000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches the full collection, optionally filtered server-side.
func (c *Client) List(ctx context.Context, search string) ([]Snippet, error) {
	path := "/api/snippets"
	if search = strings.TrimSpace(search); search != "" {
		path += "?search=" + url.QueryEscape(search)
	}

	env, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var snippets []Snippet
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &snippets); err != nil {
			return nil, fmt.Errorf("client: decode snippets: %w", err)
		}
	}
	return snippets, nil
}

// Get fetches a single snippet by identifier.
func (c *Client) Get(ctx context.Context, id uint) (*Snippet, error) {
	env, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/snippets/%d", id), nil)
	if err != nil {
		return nil, err
	}
	return decodeSnippet(env)
}

// Create stores a new snippet and returns the server-assigned row.
func (c *Client) Create(ctx context.Context, input SnippetInput) (*Snippet, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/snippets", input)
	if err != nil {
		return nil, err
	}
	return decodeSnippet(env)
}

// Update replaces the mutable fields of an existing snippet.
func (c *Client) Update(ctx context.Context, id uint, input SnippetInput) (*Snippet, error) {
	env, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/snippets/%d", id), input)
	if err != nil {
		return nil, err
	}
	return decodeSnippet(env)
}

// Delete removes a snippet and returns the deleted snapshot.
func (c *Client) Delete(ctx context.Context, id uint) (*Snippet, error) {
	env, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/snippets/%d", id), nil)
	if err != nil {
		return nil, err
	}
	return decodeSnippet(env)
}

func decodeSnippet(env *envelope) (*Snippet, error) {
	var snippet Snippet
	if err := json.Unmarshal(env.Data, &snippet); err != nil {
		return nil, fmt.Errorf("client: decode snippet: %w", err)
	}
	return &snippet, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("client: encode body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: read response: %w", err)
	}

	var env envelope
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &env); err != nil {
			return nil, fmt.Errorf("client: decode response (status %d): %w", resp.StatusCode, err)
		}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && env.Success {
		return &env, nil
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}

	apiErr := &APIError{StatusCode: resp.StatusCode, Fields: env.Errors}
	switch {
	case env.Error != nil:
		apiErr.Message = env.Error.Message
	case env.Message != "":
		apiErr.Message = env.Message
	}
	return nil, apiErr
}
