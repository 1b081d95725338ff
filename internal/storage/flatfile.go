package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ranjankr/ranjanchat/backend/internal/model/chat"
)

// FlatFileBackend is the universally available fallback: every chat lives in
// a single serialized array under one file, newest first. A malformed file is
// treated as empty so a corrupted cache never blocks new chat creation.
type FlatFileBackend struct {
	mu   sync.Mutex
	path string
}

// NewFlatFile returns a fallback backend rooted at path. The file is created
// lazily on first save.
func NewFlatFile(path string) *FlatFileBackend {
	return &FlatFileBackend{path: path}
}

func (b *FlatFileBackend) Save(_ context.Context, c chat.Chat) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	chats := b.load()

	replaced := false
	for i := range chats {
		if chats[i].ID == c.ID {
			// Preserve the original creation time.
			c.CreatedAt = chats[i].CreatedAt
			chats[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		chats = append(chats, c)
	}

	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].UpdatedAt.After(chats[j].UpdatedAt)
	})

	return b.write(chats)
}

func (b *FlatFileBackend) GetAll(_ context.Context) ([]chat.Chat, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.load(), nil
}

func (b *FlatFileBackend) GetByID(_ context.Context, id string) (chat.Chat, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, c := range b.load() {
		if c.ID == id {
			return c, true, nil
		}
	}
	return chat.Chat{}, false, nil
}

func (b *FlatFileBackend) DeleteByID(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	chats := b.load()
	kept := chats[:0]
	for _, c := range chats {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	return b.write(kept)
}

func (b *FlatFileBackend) Close() error {
	return nil
}

// load reads the slot file. Missing or corrupt data yields an empty list.
func (b *FlatFileBackend) load() []chat.Chat {
	data, err := os.ReadFile(b.path)
	if err != nil {
		return nil
	}

	var chats []chat.Chat
	if err := json.Unmarshal(data, &chats); err != nil {
		return nil
	}
	return chats
}

// write replaces the slot file atomically via a temp file rename.
func (b *FlatFileBackend) write(chats []chat.Chat) error {
	if chats == nil {
		chats = []chat.Chat{}
	}

	data, err := json.MarshalIndent(chats, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode chats: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(b.path), ".chats-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write chats: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, b.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace chats file: %w", err)
	}
	return nil
}
