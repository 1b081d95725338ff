// Package session owns the active chat transcript and coordinates response
// acquisition with local persistence.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ranjankr/ranjanchat/backend/internal/model/chat"
	"github.com/ranjankr/ranjanchat/backend/internal/service/ai"
)

var (
	ErrEmptyMessage    = errors.New("message text is empty")
	ErrEmptyTranscript = errors.New("transcript is empty")
	ErrChatNotFound    = errors.New("chat not found")
	ErrNoResponder     = errors.New("response service unavailable")
)

// Store is the persistence surface the controller drives; the local storage
// service satisfies it, as does a remote-backed adapter.
type Store interface {
	Save(ctx context.Context, c chat.Chat) error
	GetAll(ctx context.Context) ([]chat.Chat, error)
	GetByID(ctx context.Context, id string) (chat.Chat, bool, error)
	DeleteByID(ctx context.Context, id string) error
}

// Responder acquires a reply for a user utterance. It never returns an
// error; failures surface as user-facing reply text.
type Responder interface {
	ChatResponse(ctx context.Context, utterance string, forceHinglish bool, state *ai.LanguageState) string
}

// Controller holds exactly one active chat at a time. Sends against the same
// transcript are serialized: a second SendMessage waits until the first
// round trip has appended both messages.
type Controller struct {
	store     Store
	responder Responder
	lang      *ai.LanguageState

	sendMu sync.Mutex // serializes full send round trips

	mu       sync.RWMutex
	activeID string
	messages []chat.Message
	chats    []chat.Chat
	busy     bool
	lastErr  error
}

// New wires a controller over the given store and responder. responder may be
// nil when AI is not configured; sends then fail without touching persistence
// of the reply.
func New(store Store, responder Responder) *Controller {
	return &Controller{
		store:     store,
		responder: responder,
		lang:      ai.NewLanguageState(),
	}
}

// SendMessage appends the user entry, acquires the reply, appends it, and
// auto-saves once the transcript has at least two entries. A failed response
// acquisition never rolls back the already-appended user message.
func (c *Controller) SendMessage(ctx context.Context, text string, forceHinglish bool) (msg chat.Message, err error) {
	if isBlank(text) {
		return chat.Message{}, ErrEmptyMessage
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	c.setBusy(true)
	defer func() {
		c.mu.Lock()
		c.busy = false
		c.lastErr = err
		c.mu.Unlock()
	}()

	userMsg := chat.Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    chat.SenderUser,
		Timestamp: time.Now().UTC(),
	}
	c.append(userMsg)

	if c.responder == nil {
		return chat.Message{}, ErrNoResponder
	}

	reply := c.responder.ChatResponse(ctx, text, forceHinglish, c.lang)

	botMsg := chat.Message{
		ID:        uuid.NewString(),
		Text:      reply,
		Sender:    chat.SenderBot,
		Timestamp: time.Now().UTC(),
	}
	c.append(botMsg)

	if len(c.Messages()) >= 2 {
		if err := c.autoSave(ctx); err != nil {
			return botMsg, fmt.Errorf("failed to save chat: %w", err)
		}
	}

	return botMsg, nil
}

// NewChat resets the active transcript to a fresh, unsaved chat.
func (c *Controller) NewChat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeID = ""
	c.messages = nil
}

// SelectChat loads a persisted chat into the active state.
func (c *Controller) SelectChat(ctx context.Context, id string) error {
	stored, ok, err := c.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrChatNotFound
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeID = stored.ID
	c.messages = append([]chat.Message(nil), stored.Messages...)
	return nil
}

// SaveWithTitle persists the active transcript under the given title, or a
// generated one when title is blank.
func (c *Controller) SaveWithTitle(ctx context.Context, title string) (chat.Chat, error) {
	c.mu.RLock()
	messages := append([]chat.Message(nil), c.messages...)
	c.mu.RUnlock()

	if len(messages) == 0 {
		return chat.Chat{}, ErrEmptyTranscript
	}

	if isBlank(title) {
		title = chat.GenerateTitle(messages)
	}
	return c.persist(ctx, messages, title)
}

// DeleteChat removes a persisted chat. Deleting the active chat resets the
// session to a fresh, unsaved chat.
func (c *Controller) DeleteChat(ctx context.Context, id string) error {
	if err := c.store.DeleteByID(ctx, id); err != nil {
		return err
	}

	if err := c.RefreshChats(ctx); err != nil {
		log.Printf("[session] failed to refresh chat list: %v", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.activeID == id {
		c.activeID = ""
		c.messages = nil
	}
	return nil
}

// RefreshChats reloads the visible chat list from the store.
func (c *Controller) RefreshChats(ctx context.Context) error {
	chats, err := c.store.GetAll(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.chats = chats
	c.mu.Unlock()
	return nil
}

// ResetLanguagePreference clears the session's sticky Hinglish preference.
func (c *Controller) ResetLanguagePreference() {
	c.lang.Reset()
}

// Messages returns a copy of the active transcript.
func (c *Controller) Messages() []chat.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]chat.Message(nil), c.messages...)
}

// Chats returns a copy of the last refreshed chat list.
func (c *Controller) Chats() []chat.Chat {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]chat.Chat(nil), c.chats...)
}

// Busy reports whether a send round trip is currently in flight.
func (c *Controller) Busy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.busy
}

// LastError returns the error from the most recent send, or nil when it
// succeeded.
func (c *Controller) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

func (c *Controller) setBusy(v bool) {
	c.mu.Lock()
	c.busy = v
	c.mu.Unlock()
}

// ActiveChatID returns the persisted id of the active chat, or "" while the
// chat is unsaved.
func (c *Controller) ActiveChatID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activeID
}

// SuggestedTitle derives a title from the active transcript.
func (c *Controller) SuggestedTitle() string {
	return chat.GenerateTitle(c.Messages())
}

func (c *Controller) append(m chat.Message) {
	c.mu.Lock()
	c.messages = append(c.messages, m)
	c.mu.Unlock()
}

// autoSave persists the active transcript under a generated title.
func (c *Controller) autoSave(ctx context.Context) error {
	messages := c.Messages()
	_, err := c.persist(ctx, messages, chat.GenerateTitle(messages))
	return err
}

// persist writes the transcript, keeping the known CreatedAt for an existing
// chat, then refreshes the chat list.
func (c *Controller) persist(ctx context.Context, messages []chat.Message, title string) (chat.Chat, error) {
	c.mu.RLock()
	id := c.activeID
	var createdAt time.Time
	for _, known := range c.chats {
		if known.ID == id {
			createdAt = known.CreatedAt
			break
		}
	}
	c.mu.RUnlock()

	if id == "" {
		id = uuid.NewString()
	}

	toSave := chat.Chat{
		ID:        id,
		Title:     title,
		Messages:  messages,
		CreatedAt: createdAt,
		UpdatedAt: time.Now().UTC(),
	}

	if err := c.store.Save(ctx, toSave); err != nil {
		return chat.Chat{}, err
	}

	c.mu.Lock()
	c.activeID = id
	c.mu.Unlock()

	if err := c.RefreshChats(ctx); err != nil {
		log.Printf("[session] failed to refresh chat list: %v", err)
	}
	return toSave, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
