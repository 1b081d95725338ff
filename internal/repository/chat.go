// Package repository persists server-held chats, scoping every query to the
// owning user.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ranjankr/ranjanchat/backend/internal/model/chat"
)

const userChatSchema = `
CREATE TABLE IF NOT EXISTS user_chats (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	title TEXT NOT NULL,
	messages TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_user_chats_user_updated ON user_chats(user_id, updated_at);
`

// storedTimeLayout keeps a fixed-width fraction so the TEXT column sorts
// chronologically.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// OpenDB opens (or creates) the server chat database at path.
func OpenDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// ChatRepository stores user chats in SQLite.
type ChatRepository struct {
	db *sql.DB
}

// NewChatRepository prepares the schema and returns the repository.
func NewChatRepository(db *sql.DB) (*ChatRepository, error) {
	if _, err := db.Exec(userChatSchema); err != nil {
		return nil, fmt.Errorf("failed to initialize user_chats schema: %w", err)
	}
	return &ChatRepository{db: db}, nil
}

// ListByUser returns the user's chats sorted by updated_at descending.
func (r *ChatRepository) ListByUser(ctx context.Context, userID string) ([]chat.UserChat, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, title, messages, created_at, updated_at
		FROM user_chats WHERE user_id = ? ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer rows.Close()

	chats := make([]chat.UserChat, 0)
	for rows.Next() {
		c, err := scanUserChat(rows.Scan)
		if err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

// GetByID returns the chat only when it belongs to userID.
func (r *ChatRepository) GetByID(ctx context.Context, userID, id string) (chat.UserChat, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, messages, created_at, updated_at
		FROM user_chats WHERE id = ? AND user_id = ?`, id, userID)

	c, err := scanUserChat(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return chat.UserChat{}, false, nil
	}
	if err != nil {
		return chat.UserChat{}, false, err
	}
	return c, true, nil
}

// Create stores a new chat for the user. A blank title defaults to a
// timestamp-derived string.
func (r *ChatRepository) Create(ctx context.Context, userID string, messages []chat.Message, title string) (chat.UserChat, error) {
	now := time.Now().UTC()
	if title == "" {
		title = "Chat " + now.Format("1/2/2006, 3:04:05 PM")
	}

	c := chat.UserChat{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Messages:  messages,
		CreatedAt: now,
		UpdatedAt: now,
	}

	encoded, err := json.Marshal(c.Messages)
	if err != nil {
		return chat.UserChat{}, fmt.Errorf("failed to encode messages: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO user_chats (id, user_id, title, messages, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Title, string(encoded),
		now.Format(storedTimeLayout), now.Format(storedTimeLayout))
	if err != nil {
		return chat.UserChat{}, fmt.Errorf("failed to create chat: %w", err)
	}
	return c, nil
}

// Update replaces the chat's messages and refreshes updated_at. A blank
// title keeps the stored one. Returns false when the chat does not exist for
// this user.
func (r *ChatRepository) Update(ctx context.Context, userID, id string, messages []chat.Message, title string) (chat.UserChat, bool, error) {
	existing, ok, err := r.GetByID(ctx, userID, id)
	if err != nil || !ok {
		return chat.UserChat{}, ok, err
	}

	if title == "" {
		title = existing.Title
	}
	now := time.Now().UTC()

	encoded, err := json.Marshal(messages)
	if err != nil {
		return chat.UserChat{}, false, fmt.Errorf("failed to encode messages: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE user_chats SET title = ?, messages = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		title, string(encoded), now.Format(storedTimeLayout), id, userID)
	if err != nil {
		return chat.UserChat{}, false, fmt.Errorf("failed to update chat: %w", err)
	}

	existing.Title = title
	existing.Messages = messages
	existing.UpdatedAt = now
	return existing, true, nil
}

// Delete removes the chat when it belongs to userID; delete is all-or-nothing
// by id.
func (r *ChatRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM user_chats WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete chat: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func scanUserChat(scan func(dest ...any) error) (chat.UserChat, error) {
	var (
		c                  chat.UserChat
		messages           string
		createdAt, updated string
	)
	if err := scan(&c.ID, &c.UserID, &c.Title, &messages, &createdAt, &updated); err != nil {
		return chat.UserChat{}, err
	}
	if err := json.Unmarshal([]byte(messages), &c.Messages); err != nil {
		return chat.UserChat{}, fmt.Errorf("failed to decode messages for chat %s: %w", c.ID, err)
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		c.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, updated); err == nil {
		c.UpdatedAt = t
	}
	return c, nil
}
