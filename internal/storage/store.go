// Package storage persists chat transcripts entirely on the local machine,
// preferring a structured SQLite backend and falling back to a flat JSON
// slot when the structured backend is unavailable or misbehaves.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/ranjankr/ranjanchat/backend/internal/model/chat"
)

// ErrUnavailable reports that every local backend failed for an operation.
var ErrUnavailable = errors.New("all storage backends failed")

// Service fronts the two local backends. Each operation tries the primary
// first and retries against the fallback on error; the decision is made per
// call, so a transient primary failure self-heals without crashing the
// session. Fallback is silent: callers only see an error when both backends
// fail.
type Service struct {
	primary  Backend // nil when the structured backend could not be opened
	fallback Backend
}

// New probes the structured backend under dataDir and wires the fallback.
// A structured-backend initialization failure is not fatal.
func New(dataDir string) *Service {
	fallback := NewFlatFile(filepath.Join(dataDir, "chats.json"))

	primary, err := OpenSQLite(filepath.Join(dataDir, "chats.db"))
	if err != nil {
		log.Printf("[storage] structured backend unavailable, using fallback only: %v", err)
		return &Service{fallback: fallback}
	}

	return &Service{primary: primary, fallback: fallback}
}

// NewWithBackends wires explicit backends; primary may be nil.
func NewWithBackends(primary, fallback Backend) *Service {
	return &Service{primary: primary, fallback: fallback}
}

// Save normalizes timestamps and persists the chat. UpdatedAt is refreshed on
// every save; CreatedAt is preserved by the target backend when the id
// already exists there.
func (s *Service) Save(ctx context.Context, c chat.Chat) error {
	c = normalize(c)

	if s.primary != nil {
		err := s.primary.Save(ctx, c)
		if err == nil {
			return nil
		}
		log.Printf("[storage] primary save failed, falling back: %v", err)
	}

	if err := s.fallback.Save(ctx, c); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// GetAll returns every stored chat ordered by UpdatedAt descending.
func (s *Service) GetAll(ctx context.Context) ([]chat.Chat, error) {
	if s.primary != nil {
		chats, err := s.primary.GetAll(ctx)
		if err == nil {
			return chats, nil
		}
		log.Printf("[storage] primary list failed, falling back: %v", err)
	}

	chats, err := s.fallback.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return chats, nil
}

// GetByID returns the matching chat; "not found" is reported via the bool
// and never as an error.
func (s *Service) GetByID(ctx context.Context, id string) (chat.Chat, bool, error) {
	if s.primary != nil {
		c, ok, err := s.primary.GetByID(ctx, id)
		if err == nil {
			return c, ok, nil
		}
		log.Printf("[storage] primary lookup failed, falling back: %v", err)
	}

	c, ok, err := s.fallback.GetByID(ctx, id)
	if err != nil {
		return chat.Chat{}, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return c, ok, nil
}

// DeleteByID removes the chat from whichever backend holds it. Delete is
// all-or-nothing by id.
func (s *Service) DeleteByID(ctx context.Context, id string) error {
	if s.primary != nil {
		if err := s.primary.DeleteByID(ctx, id); err != nil {
			log.Printf("[storage] primary delete failed, falling back: %v", err)
			if ferr := s.fallback.DeleteByID(ctx, id); ferr != nil {
				return fmt.Errorf("%w: %v", ErrUnavailable, ferr)
			}
			return nil
		}
		// The record may predate the structured backend; clear any fallback
		// copy as well so delete is total.
		if err := s.fallback.DeleteByID(ctx, id); err != nil {
			log.Printf("[storage] fallback delete failed: %v", err)
		}
		return nil
	}

	if err := s.fallback.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// GenerateTitle derives a title from the transcript's first user message.
func (s *Service) GenerateTitle(messages []chat.Message) string {
	return chat.GenerateTitle(messages)
}

// Close releases backend resources.
func (s *Service) Close() error {
	var err error
	if s.primary != nil {
		err = s.primary.Close()
	}
	if ferr := s.fallback.Close(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

// normalize brings every timestamp onto a canonical UTC instant and refreshes
// UpdatedAt for this save.
func normalize(c chat.Chat) chat.Chat {
	now := time.Now().UTC()

	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	} else {
		c.CreatedAt = c.CreatedAt.UTC()
	}
	c.UpdatedAt = now

	messages := make([]chat.Message, len(c.Messages))
	for i, m := range c.Messages {
		m.Timestamp = m.Timestamp.UTC()
		messages[i] = m
	}
	c.Messages = messages
	return c
}
