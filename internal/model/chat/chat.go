package chat

import "time"

// Chat is a locally persisted transcript. CreatedAt is set at first
// persistence and never overwritten afterwards; UpdatedAt is refreshed on
// every save.
type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserChat is a server-held transcript scoped to its owning user. The id is
// assigned server-side and the record is only ever visible to its owner.
type UserChat struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
