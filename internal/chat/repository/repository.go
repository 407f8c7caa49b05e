package repository

import (
	"context"

	"chat-server/backend/internal/chat/domain"
)

// Repository defines persistence for chats and their messages. Lookups return nil, not an error,
// for missing rows.
type Repository interface {
	IsChatMember(ctx context.Context, chatID, userID int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*domain.Chat, error)
	ListByWorkspace(ctx context.Context, workspaceID int64) ([]domain.Chat, error)
	Create(ctx context.Context, c *domain.Chat) error
	// Update sets name and members of chat id in workspaceID; nil if no row matched.
	Update(ctx context.Context, workspaceID, id int64, name *string, members []int64) (*domain.Chat, error)
	// Delete removes chat id from workspaceID and reports whether a row was deleted.
	Delete(ctx context.Context, workspaceID, id int64) (bool, error)

	CreateMessage(ctx context.Context, m *domain.Message) error
	// ListMessages returns up to limit messages of chatID with id < beforeID, newest first.
	ListMessages(ctx context.Context, chatID, beforeID int64, limit int) ([]domain.Message, error)
}
