package repository

import (
	"context"
	"errors"

	"chat-server/backend/internal/user/domain"
)

// ErrEmailExists is returned by Create when the email is already registered.
var ErrEmailExists = errors.New("email already exists")

// Repository defines persistence for users and their workspaces.
type Repository interface {
	// GetByEmail returns the user with its password hash, or nil if not found.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create inserts the user with passwordHash, creating the named workspace on first use.
	// The first user of a workspace becomes its owner.
	Create(ctx context.Context, in domain.CreateUser, passwordHash string) (*domain.User, error)
	ListByWorkspace(ctx context.Context, workspaceID int64) ([]domain.ChatUser, error)
	// CountInWorkspace returns how many of ids are users of workspaceID. Duplicates count once.
	CountInWorkspace(ctx context.Context, workspaceID int64, ids []int64) (int, error)
}
