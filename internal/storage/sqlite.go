package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ranjankr/ranjanchat/backend/internal/model/chat"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS chats (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	messages TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chats_updated_at ON chats(updated_at);
`

// SQLiteBackend is the structured local backend: one record per chat keyed by
// id, with a secondary index on updated_at for descending iteration.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the chat database at path.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open chat database: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize chat schema: %w", err)
	}

	return &SQLiteBackend{db: db}, nil
}

// Save upserts the chat, carrying forward the stored created_at for an
// existing id.
func (b *SQLiteBackend) Save(ctx context.Context, c chat.Chat) error {
	var existingCreated string
	err := b.db.QueryRowContext(ctx, `SELECT created_at FROM chats WHERE id = ?`, c.ID).Scan(&existingCreated)
	switch {
	case err == nil:
		c.CreatedAt = parseStoredTime(existingCreated, c.CreatedAt)
	case errors.Is(err, sql.ErrNoRows):
		// first save for this id
	default:
		return fmt.Errorf("failed to read existing chat: %w", err)
	}

	messages, err := json.Marshal(c.Messages)
	if err != nil {
		return fmt.Errorf("failed to encode messages: %w", err)
	}

	_, err = b.db.ExecContext(ctx, `
		INSERT INTO chats (id, title, messages, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			messages = excluded.messages,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		c.ID, c.Title, string(messages), formatStoredTime(c.CreatedAt), formatStoredTime(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save chat: %w", err)
	}
	return nil
}

// GetAll returns every stored chat ordered by updated_at descending.
func (b *SQLiteBackend) GetAll(ctx context.Context) ([]chat.Chat, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT id, title, messages, created_at, updated_at
		FROM chats ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer rows.Close()

	var chats []chat.Chat
	for rows.Next() {
		c, err := scanChat(rows.Scan)
		if err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

// GetByID returns the matching chat; a missing id is reported via the bool,
// not an error.
func (b *SQLiteBackend) GetByID(ctx context.Context, id string) (chat.Chat, bool, error) {
	row := b.db.QueryRowContext(ctx, `
		SELECT id, title, messages, created_at, updated_at
		FROM chats WHERE id = ?`, id)

	c, err := scanChat(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return chat.Chat{}, false, nil
	}
	if err != nil {
		return chat.Chat{}, false, err
	}
	return c, true, nil
}

// DeleteByID removes the chat with the given id. Deleting a missing id is a
// no-op.
func (b *SQLiteBackend) DeleteByID(ctx context.Context, id string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM chats WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

func scanChat(scan func(dest ...any) error) (chat.Chat, error) {
	var (
		c                  chat.Chat
		messages           string
		createdAt, updated string
	)
	if err := scan(&c.ID, &c.Title, &messages, &createdAt, &updated); err != nil {
		return chat.Chat{}, err
	}
	if err := json.Unmarshal([]byte(messages), &c.Messages); err != nil {
		return chat.Chat{}, fmt.Errorf("failed to decode messages for chat %s: %w", c.ID, err)
	}
	c.CreatedAt = parseStoredTime(createdAt, time.Time{})
	c.UpdatedAt = parseStoredTime(updated, time.Time{})
	return c, nil
}

// storedTimeLayout keeps a fixed-width fraction so the TEXT column sorts
// chronologically.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatStoredTime(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

func parseStoredTime(raw string, fallback time.Time) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return fallback
	}
	return t
}
