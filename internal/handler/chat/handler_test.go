package chat_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ranjankr/ranjanchat/backend/internal/auth"
	"github.com/ranjankr/ranjanchat/backend/internal/handler"
	chatModel "github.com/ranjankr/ranjanchat/backend/internal/model/chat"
	"github.com/ranjankr/ranjanchat/backend/internal/repository"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := repository.OpenDB(filepath.Join(t.TempDir(), "userchats.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo, err := repository.NewChatRepository(db)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}

	server := httptest.NewServer(handler.NewRouter(repo, testSecret))
	t.Cleanup(server.Close)
	return server
}

func bearerToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.NewJWTProvider(testSecret, userID).Token(context.Background())
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	return token
}

func doRequest(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeChat(t *testing.T, resp *http.Response) chatModel.UserChat {
	t.Helper()
	defer resp.Body.Close()

	var c chatModel.UserChat
	if err := json.NewDecoder(resp.Body).Decode(&c); err != nil {
		t.Fatalf("failed to decode chat: %v", err)
	}
	return c
}

func chatPayload() map[string]any {
	return map[string]any{
		"title": "hello chat",
		"messages": []chatModel.Message{
			{ID: "m1", Text: "hello", Sender: chatModel.SenderUser},
			{ID: "m2", Text: "hi!", Sender: chatModel.SenderBot},
		},
	}
}

func TestChatCRUD(t *testing.T) {
	server := newTestServer(t)
	token := bearerToken(t, "user-1")

	// Create
	resp := doRequest(t, http.MethodPost, server.URL+"/api/chats", token, chatPayload())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	created := decodeChat(t, resp)
	if created.ID == "" || created.Title != "hello chat" {
		t.Fatalf("unexpected created chat: %+v", created)
	}

	// List
	resp = doRequest(t, http.MethodGet, server.URL+"/api/chats", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var chats []chatModel.UserChat
	if err := json.NewDecoder(resp.Body).Decode(&chats); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	resp.Body.Close()
	if len(chats) != 1 || chats[0].ID != created.ID {
		t.Fatalf("unexpected chat list: %+v", chats)
	}

	// Get
	resp = doRequest(t, http.MethodGet, server.URL+"/api/chats/"+created.ID, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	got := decodeChat(t, resp)
	if len(got.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got.Messages))
	}

	// Update
	payload := chatPayload()
	payload["title"] = "renamed"
	resp = doRequest(t, http.MethodPut, server.URL+"/api/chats/"+created.ID, token, payload)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if updated := decodeChat(t, resp); updated.Title != "renamed" {
		t.Fatalf("expected renamed title, got %q", updated.Title)
	}

	// Delete
	resp = doRequest(t, http.MethodDelete, server.URL+"/api/chats/"+created.ID, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var msg map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		t.Fatalf("failed to decode delete response: %v", err)
	}
	resp.Body.Close()
	if msg["message"] != "Chat deleted successfully" {
		t.Fatalf("unexpected delete message: %q", msg["message"])
	}

	resp = doRequest(t, http.MethodGet, server.URL+"/api/chats/"+created.ID, token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestUnauthorizedWithoutToken(t *testing.T) {
	server := newTestServer(t)

	resp := doRequest(t, http.MethodGet, server.URL+"/api/chats", "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body["error"] != "Unauthorized" {
		t.Fatalf("unexpected error message: %q", body["error"])
	}
}

func TestUnauthorizedWithWrongSecret(t *testing.T) {
	server := newTestServer(t)

	forged, err := auth.NewJWTProvider("other-secret", "user-1").Token(context.Background())
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}

	resp := doRequest(t, http.MethodGet, server.URL+"/api/chats", forged, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestChatsAreScopedToOwner(t *testing.T) {
	server := newTestServer(t)
	owner := bearerToken(t, "user-1")
	other := bearerToken(t, "user-2")

	resp := doRequest(t, http.MethodPost, server.URL+"/api/chats", owner, chatPayload())
	created := decodeChat(t, resp)

	resp = doRequest(t, http.MethodGet, server.URL+"/api/chats/"+created.ID, other, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for another user's chat, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodDelete, server.URL+"/api/chats/"+created.ID, other, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 deleting another user's chat, got %d", resp.StatusCode)
	}
}

func TestCreateInvalidBody(t *testing.T) {
	server := newTestServer(t)
	token := bearerToken(t, "user-1")

	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/chats", bytes.NewBufferString("{not json"))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
