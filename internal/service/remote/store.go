package remote

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/ranjankr/ranjanchat/backend/internal/model/chat"
)

// Store adapts the REST client to the session controller's persistence
// surface. The server assigns its own ids on create, so a locally generated
// id is aliased to its server counterpart after the first save and every
// later operation translates through the alias.
type Store struct {
	client *Client

	mu    sync.Mutex
	alias map[string]string // local id -> server id
}

// NewStore wraps the client as a controller-facing store.
func NewStore(client *Client) *Store {
	return &Store{client: client, alias: make(map[string]string)}
}

// Save updates the chat when the server already knows the id, otherwise
// creates it and records the server-assigned id under the local one.
func (s *Store) Save(ctx context.Context, c chat.Chat) error {
	id := s.resolve(c.ID)

	_, err := s.client.Update(ctx, id, c.Messages, c.Title)
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return err
	}

	created, err := s.client.Create(ctx, c.Messages, c.Title)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.alias[c.ID] = created.ID
	s.mu.Unlock()
	return nil
}

// GetAll returns the user's server-held chats, newest first.
func (s *Store) GetAll(ctx context.Context) ([]chat.Chat, error) {
	userChats, err := s.client.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	chats := make([]chat.Chat, len(userChats))
	for i, uc := range userChats {
		chats[i] = toChat(uc)
	}
	return chats, nil
}

// GetByID returns the matching chat; a missing id is reported via the bool.
func (s *Store) GetByID(ctx context.Context, id string) (chat.Chat, bool, error) {
	uc, err := s.client.GetByID(ctx, s.resolve(id))
	if isNotFound(err) {
		return chat.Chat{}, false, nil
	}
	if err != nil {
		return chat.Chat{}, false, err
	}
	return toChat(uc), true, nil
}

// DeleteByID removes the chat; deleting a missing id is a no-op.
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	err := s.client.Delete(ctx, s.resolve(id))
	if isNotFound(err) {
		return nil
	}
	return err
}

func (s *Store) resolve(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if server, ok := s.alias[id]; ok {
		return server
	}
	return id
}

func isNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func toChat(uc chat.UserChat) chat.Chat {
	return chat.Chat{
		ID:        uc.ID,
		Title:     uc.Title,
		Messages:  uc.Messages,
		CreatedAt: uc.CreatedAt,
		UpdatedAt: uc.UpdatedAt,
	}
}
