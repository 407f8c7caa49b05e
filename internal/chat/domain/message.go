package domain

import "time"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Message is one post in a chat. Files holds /files/... URLs of blobs in the sender's workspace.
type Message struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chatId"`
	SenderID  int64     `json:"senderId"`
	Content   string    `json:"content"`
	Files     []string  `json:"files"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateMessage is the input of sending a message.
type CreateMessage struct {
	Content string   `json:"content"`
	Files   []string `json:"files"`
}

// ListMessages selects a page of messages older than LastID, newest first. LastID 0 means from
// the newest message.
type ListMessages struct {
	LastID int64 `form:"last_id"`
	Limit  int   `form:"limit"`
}

// PageSize clamps Limit into [1, MaxPageSize], defaulting to DefaultPageSize.
func (l ListMessages) PageSize() int {
	switch {
	case l.Limit <= 0:
		return DefaultPageSize
	case l.Limit > MaxPageSize:
		return MaxPageSize
	}
	return l.Limit
}
