package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ranjankr/ranjanchat/backend/internal/model/chat"
)

// failingBackend errors on every operation, standing in for a broken primary.
type failingBackend struct{}

var errBroken = errors.New("backend broken")

func (failingBackend) Save(context.Context, chat.Chat) error { return errBroken }
func (failingBackend) GetAll(context.Context) ([]chat.Chat, error) {
	return nil, errBroken
}
func (failingBackend) GetByID(context.Context, string) (chat.Chat, bool, error) {
	return chat.Chat{}, false, errBroken
}
func (failingBackend) DeleteByID(context.Context, string) error { return errBroken }
func (failingBackend) Close() error                             { return nil }

func newFallbackOnlyService(t *testing.T) *Service {
	t.Helper()
	return NewWithBackends(nil, NewFlatFile(filepath.Join(t.TempDir(), "chats.json")))
}

func TestSaveAndGetByID(t *testing.T) {
	svc := newFallbackOnlyService(t)
	ctx := context.Background()

	c := chat.Chat{
		ID:    "chat-1",
		Title: "greetings",
		Messages: []chat.Message{
			{ID: "m1", Text: "hello", Sender: chat.SenderUser, Timestamp: time.Now()},
			{ID: "m2", Text: "hi there", Sender: chat.SenderBot, Timestamp: time.Now()},
		},
	}
	if err := svc.Save(ctx, c); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, ok, err := svc.GetByID(ctx, "chat-1")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if !ok {
		t.Fatal("expected chat to exist")
	}
	if got.Title != "greetings" {
		t.Fatalf("expected title %q, got %q", "greetings", got.Title)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got.Messages))
	}
	if got.Messages[0].Text != "hello" || got.Messages[1].Text != "hi there" {
		t.Fatalf("message order not preserved: %+v", got.Messages)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set on save")
	}
}

func TestGetByIDNotFound(t *testing.T) {
	svc := newFallbackOnlyService(t)

	_, ok, err := svc.GetByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected chat to be absent")
	}
}

func TestSavePreservesCreatedAt(t *testing.T) {
	svc := newFallbackOnlyService(t)
	ctx := context.Background()

	c := chat.Chat{ID: "chat-1", Title: "first"}
	if err := svc.Save(ctx, c); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	first, _, err := svc.GetByID(ctx, "chat-1")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	c.Title = "second"
	if err := svc.Save(ctx, c); err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	second, _, err := svc.GetByID(ctx, "chat-1")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}

	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("createdAt changed on re-save: %v vs %v", first.CreatedAt, second.CreatedAt)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Fatalf("updatedAt not refreshed: %v vs %v", first.UpdatedAt, second.UpdatedAt)
	}
	if second.Title != "second" {
		t.Fatalf("expected updated title, got %q", second.Title)
	}
}

func TestGetAllOrderedByUpdatedAt(t *testing.T) {
	svc := newFallbackOnlyService(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := svc.Save(ctx, chat.Chat{ID: id}); err != nil {
			t.Fatalf("save %s failed: %v", id, err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Touch "a" again so it becomes the most recent.
	if err := svc.Save(ctx, chat.Chat{ID: "a"}); err != nil {
		t.Fatalf("re-save failed: %v", err)
	}

	chats, err := svc.GetAll(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(chats) != 3 {
		t.Fatalf("expected 3 chats, got %d", len(chats))
	}

	got := []string{chats[0].ID, chats[1].ID, chats[2].ID}
	want := []string{"a", "c", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestDeleteByID(t *testing.T) {
	svc := newFallbackOnlyService(t)
	ctx := context.Background()

	if err := svc.Save(ctx, chat.Chat{ID: "chat-1"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := svc.DeleteByID(ctx, "chat-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	_, ok, err := svc.GetByID(ctx, "chat-1")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if ok {
		t.Fatal("expected chat to be gone after delete")
	}
}

func TestFallbackOnPrimaryFailure(t *testing.T) {
	fallback := NewFlatFile(filepath.Join(t.TempDir(), "chats.json"))
	svc := NewWithBackends(failingBackend{}, fallback)
	ctx := context.Background()

	if err := svc.Save(ctx, chat.Chat{ID: "chat-1", Title: "fallback"}); err != nil {
		t.Fatalf("save should succeed via fallback: %v", err)
	}

	got, ok, err := svc.GetByID(ctx, "chat-1")
	if err != nil {
		t.Fatalf("lookup should succeed via fallback: %v", err)
	}
	if !ok || got.Title != "fallback" {
		t.Fatalf("expected chat from fallback, got ok=%v chat=%+v", ok, got)
	}

	chats, err := svc.GetAll(ctx)
	if err != nil {
		t.Fatalf("list should succeed via fallback: %v", err)
	}
	if len(chats) != 1 {
		t.Fatalf("expected 1 chat, got %d", len(chats))
	}

	if err := svc.DeleteByID(ctx, "chat-1"); err != nil {
		t.Fatalf("delete should succeed via fallback: %v", err)
	}
}

func TestAllBackendsFailing(t *testing.T) {
	svc := NewWithBackends(failingBackend{}, failingBackend{})

	err := svc.Save(context.Background(), chat.Chat{ID: "chat-1"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestCorruptFallbackFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chats.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to seed corrupt file: %v", err)
	}

	svc := NewWithBackends(nil, NewFlatFile(path))
	ctx := context.Background()

	chats, err := svc.GetAll(ctx)
	if err != nil {
		t.Fatalf("corrupt file should read as empty, got error: %v", err)
	}
	if len(chats) != 0 {
		t.Fatalf("expected no chats, got %d", len(chats))
	}

	// New chats can still be created over the corrupt slot.
	if err := svc.Save(ctx, chat.Chat{ID: "chat-1"}); err != nil {
		t.Fatalf("save over corrupt file failed: %v", err)
	}
	chats, err = svc.GetAll(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(chats) != 1 {
		t.Fatalf("expected 1 chat, got %d", len(chats))
	}
}
