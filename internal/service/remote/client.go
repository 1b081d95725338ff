// Package remote is the authenticated REST client for server-held chat
// transcripts. Every operation obtains a bearer token from the identity
// provider before issuing its request.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ranjankr/ranjanchat/backend/internal/model/chat"
)

// ErrUnauthenticated reports that no identity is currently established.
var ErrUnauthenticated = errors.New("user not authenticated")

// TokenProvider supplies the current user's bearer token.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// APIError carries a non-success response. Message is the server-provided
// error text when present, else a generic status-coded message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client talks to the chat persistence API.
type Client struct {
	baseURL string
	tokens  TokenProvider
	http    *http.Client
}

// NewClient builds a client for the API at baseURL (e.g.
// "http://localhost:5000/api").
func NewClient(baseURL string, tokens TokenProvider) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// GetAll fetches every chat owned by the current user, newest first.
func (c *Client) GetAll(ctx context.Context) ([]chat.UserChat, error) {
	var chats []chat.UserChat
	if err := c.do(ctx, http.MethodGet, "/chats", nil, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// GetByID fetches a single chat by its server-assigned id.
func (c *Client) GetByID(ctx context.Context, id string) (chat.UserChat, error) {
	var out chat.UserChat
	if err := c.do(ctx, http.MethodGet, "/chats/"+id, nil, &out); err != nil {
		return chat.UserChat{}, err
	}
	return out, nil
}

// Create persists a new chat. An empty title lets the server default it to a
// timestamp-derived string.
func (c *Client) Create(ctx context.Context, messages []chat.Message, title string) (chat.UserChat, error) {
	body := chatPayload{Messages: messages, Title: title}
	var out chat.UserChat
	if err := c.do(ctx, http.MethodPost, "/chats", body, &out); err != nil {
		return chat.UserChat{}, err
	}
	return out, nil
}

// Update replaces the messages (and optionally the title) of an existing
// chat.
func (c *Client) Update(ctx context.Context, id string, messages []chat.Message, title string) (chat.UserChat, error) {
	body := chatPayload{Messages: messages, Title: title}
	var out chat.UserChat
	if err := c.do(ctx, http.MethodPut, "/chats/"+id, body, &out); err != nil {
		return chat.UserChat{}, err
	}
	return out, nil
}

// Delete removes a chat by id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/chats/"+id, nil, nil)
}

// GenerateTitle derives a title from the transcript's first user message.
func (c *Client) GenerateTitle(messages []chat.Message) string {
	return chat.GenerateTitle(messages)
}

type chatPayload struct {
	Messages []chat.Message `json:"messages"`
	Title    string         `json:"title,omitempty"`
}

// do issues one authenticated request and decodes the response into out when
// non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.tokens == nil {
		return ErrUnauthenticated
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

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
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.apiError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// apiError extracts the server-provided message when the failure body is
// `{"error": "..."}`, else falls back to a status-coded message.
func (c *Client) apiError(resp *http.Response) error {
	message := fmt.Sprintf("API error: %d", resp.StatusCode)

	var failure struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&failure); err == nil && failure.Error != "" {
		message = failure.Error
	}

	return &APIError{Status: resp.StatusCode, Message: message}
}
