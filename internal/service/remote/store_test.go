package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ranjankr/ranjanchat/backend/internal/model/chat"
)

// fakeChatAPI is a minimal in-memory stand-in for the chat persistence API.
type fakeChatAPI struct {
	mu    sync.Mutex
	chats map[string]chat.UserChat
	next  int
}

func newFakeChatAPI() *fakeChatAPI {
	return &fakeChatAPI{chats: make(map[string]chat.UserChat)}
}

func (f *fakeChatAPI) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		id := strings.TrimPrefix(r.URL.Path, "/chats/")

		var payload struct {
			Messages []chat.Message `json:"messages"`
			Title    string         `json:"title"`
		}
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&payload)
		}

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/chats":
			out := make([]chat.UserChat, 0, len(f.chats))
			for _, c := range f.chats {
				out = append(out, c)
			}
			json.NewEncoder(w).Encode(out)
		case r.Method == http.MethodGet:
			c, ok := f.chats[id]
			if !ok {
				f.notFound(w)
				return
			}
			json.NewEncoder(w).Encode(c)
		case r.Method == http.MethodPost:
			f.next++
			c := chat.UserChat{
				ID:        fmt.Sprintf("srv-%d", f.next),
				UserID:    "user-1",
				Title:     payload.Title,
				Messages:  payload.Messages,
				CreatedAt: time.Now().UTC(),
				UpdatedAt: time.Now().UTC(),
			}
			f.chats[c.ID] = c
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(c)
		case r.Method == http.MethodPut:
			c, ok := f.chats[id]
			if !ok {
				f.notFound(w)
				return
			}
			c.Title = payload.Title
			c.Messages = payload.Messages
			c.UpdatedAt = time.Now().UTC()
			f.chats[id] = c
			json.NewEncoder(w).Encode(c)
		case r.Method == http.MethodDelete:
			if _, ok := f.chats[id]; !ok {
				f.notFound(w)
				return
			}
			delete(f.chats, id)
			json.NewEncoder(w).Encode(map[string]string{"message": "Chat deleted successfully"})
		}
	})
}

func (f *fakeChatAPI) notFound(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{"error": "Chat not found"})
}

func newTestStore(t *testing.T) (*Store, *fakeChatAPI) {
	t.Helper()

	api := newFakeChatAPI()
	server := httptest.NewServer(api.handler())
	t.Cleanup(server.Close)

	return NewStore(NewClient(server.URL, staticTokens{token: "tok"})), api
}

func TestStoreSaveCreatesThenUpdates(t *testing.T) {
	store, api := newTestStore(t)
	ctx := context.Background()

	c := chat.Chat{
		ID:    "local-1",
		Title: "hello",
		Messages: []chat.Message{
			{ID: "m1", Text: "hello", Sender: chat.SenderUser},
		},
	}
	if err := store.Save(ctx, c); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if len(api.chats) != 1 {
		t.Fatalf("expected one server chat, got %d", len(api.chats))
	}

	// A second save under the same local id must update the server record,
	// not create another one.
	c.Title = "renamed"
	if err := store.Save(ctx, c); err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	if len(api.chats) != 1 {
		t.Fatalf("expected update to reuse the server chat, got %d records", len(api.chats))
	}
	for _, stored := range api.chats {
		if stored.Title != "renamed" {
			t.Fatalf("expected updated title, got %q", stored.Title)
		}
	}
}

func TestStoreRoundTripThroughAlias(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	c := chat.Chat{
		ID:       "local-1",
		Title:    "aliased",
		Messages: []chat.Message{{ID: "m1", Text: "hi", Sender: chat.SenderUser}},
	}
	if err := store.Save(ctx, c); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// The local id still resolves after the server assigned its own.
	got, ok, err := store.GetByID(ctx, "local-1")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if !ok || got.Title != "aliased" {
		t.Fatalf("expected aliased chat, got ok=%v %+v", ok, got)
	}

	if err := store.DeleteByID(ctx, "local-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok, _ := store.GetByID(ctx, "local-1"); ok {
		t.Fatal("expected chat gone after delete")
	}
}

func TestStoreGetAll(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		c := chat.Chat{ID: id, Title: id, Messages: []chat.Message{{ID: "m", Text: id, Sender: chat.SenderUser}}}
		if err := store.Save(ctx, c); err != nil {
			t.Fatalf("save %s failed: %v", id, err)
		}
	}

	chats, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(chats) != 2 {
		t.Fatalf("expected 2 chats, got %d", len(chats))
	}
}

func TestStoreMissingChat(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, ok, err := store.GetByID(ctx, "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected chat to be absent")
	}

	if err := store.DeleteByID(ctx, "missing"); err != nil {
		t.Fatalf("deleting a missing chat must be a no-op, got %v", err)
	}
}
