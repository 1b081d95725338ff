package storage

import (
	"context"

	"github.com/ranjankr/ranjanchat/backend/internal/model/chat"
)

// Backend persists chat transcripts. Implementations must keep CreatedAt
// immutable: when a record with the same id already exists, Save carries the
// stored CreatedAt forward instead of the incoming one.
type Backend interface {
	Save(ctx context.Context, c chat.Chat) error
	GetAll(ctx context.Context) ([]chat.Chat, error)
	GetByID(ctx context.Context, id string) (chat.Chat, bool, error)
	DeleteByID(ctx context.Context, id string) error
	Close() error
}
