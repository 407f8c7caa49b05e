// Package service holds the chat and message rules: member counts, chat typing, workspace
// scoping, and attachment checks.
package service

import (
	"context"
	"log"
	"math"
	"strings"

	"chat-server/backend/internal/chat/domain"
	"chat-server/backend/internal/filestore"
	identitydomain "chat-server/backend/internal/identity/domain"
	"chat-server/backend/internal/platform/apperr"
)

// ChatRepo is the chat persistence used by ChatService.
type ChatRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Chat, error)
	ListByWorkspace(ctx context.Context, workspaceID int64) ([]domain.Chat, error)
	Create(ctx context.Context, c *domain.Chat) error
	Update(ctx context.Context, workspaceID, id int64, name *string, members []int64) (*domain.Chat, error)
	Delete(ctx context.Context, workspaceID, id int64) (bool, error)
	CreateMessage(ctx context.Context, m *domain.Message) error
	ListMessages(ctx context.Context, chatID, beforeID int64, limit int) ([]domain.Message, error)
}

// MemberCounter counts how many of ids are users of a workspace.
type MemberCounter interface {
	CountInWorkspace(ctx context.Context, workspaceID int64, ids []int64) (int, error)
}

// BlobChecker reports whether an attachment blob exists.
type BlobChecker interface {
	Exists(fid filestore.FileID) bool
}

// ChatService implements chat and message operations for an authenticated identity.
type ChatService struct {
	chats ChatRepo
	users MemberCounter
	blobs BlobChecker
}

// NewChatService returns a ChatService.
func NewChatService(chats ChatRepo, users MemberCounter, blobs BlobChecker) *ChatService {
	return &ChatService{chats: chats, users: users, blobs: blobs}
}

// ListChats returns the chats of the caller's workspace.
func (s *ChatService) ListChats(ctx context.Context, id identitydomain.Identity) ([]domain.Chat, error) {
	chats, err := s.chats.ListByWorkspace(ctx, id.WorkspaceID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "list chats of workspace %d", id.WorkspaceID)
	}
	return chats, nil
}

// CreateChat creates a chat in the caller's workspace. Every member must be a user of it.
func (s *ChatService) CreateChat(ctx context.Context, id identitydomain.Identity, in domain.CreateChat) (*domain.Chat, error) {
	name := domain.NormalizeName(in.Name)
	members := domain.UniqueMembers(in.Members)
	if err := s.checkMembers(ctx, id.WorkspaceID, name, members); err != nil {
		return nil, err
	}
	c := &domain.Chat{
		WorkspaceID: id.WorkspaceID,
		Name:        name,
		Type:        domain.ResolveType(name, len(members), in.Public),
		Members:     members,
	}
	if err := s.chats.Create(ctx, c); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "create chat")
	}
	log.Printf("chat: user %d created %s chat %d in workspace %d", id.ID, c.Type, c.ID, c.WorkspaceID)
	return c, nil
}

// UpdateChat replaces the name and members of chatID. The chat type is left as created.
func (s *ChatService) UpdateChat(ctx context.Context, id identitydomain.Identity, chatID int64, in domain.UpdateChat) (*domain.Chat, error) {
	name := domain.NormalizeName(in.Name)
	members := domain.UniqueMembers(in.Members)
	if err := s.checkMembers(ctx, id.WorkspaceID, name, members); err != nil {
		return nil, err
	}
	c, err := s.chats.Update(ctx, id.WorkspaceID, chatID, name, members)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "update chat %d", chatID)
	}
	if c == nil {
		return nil, apperr.New(apperr.KindNotFound, "chat %d not in workspace %d", chatID, id.WorkspaceID)
	}
	return c, nil
}

// DeleteChat removes chatID and its messages. Chats of another workspace are refused.
func (s *ChatService) DeleteChat(ctx context.Context, id identitydomain.Identity, chatID int64) error {
	c, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, err, "load chat %d", chatID)
	}
	if c == nil {
		return apperr.New(apperr.KindNotFound, "chat %d not found", chatID)
	}
	if c.WorkspaceID != id.WorkspaceID {
		return apperr.New(apperr.KindAuthorizationDenied, "user %d (workspace %d) may not delete chat %d of workspace %d",
			id.ID, id.WorkspaceID, chatID, c.WorkspaceID)
	}
	ok, err := s.chats.Delete(ctx, id.WorkspaceID, chatID)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, err, "delete chat %d", chatID)
	}
	if !ok {
		return apperr.New(apperr.KindNotFound, "chat %d already deleted", chatID)
	}
	log.Printf("chat: user %d deleted chat %d", id.ID, chatID)
	return nil
}

// SendMessage posts a message from the caller to chatID. Content is required; every file must be
// a stored blob of the caller's workspace.
func (s *ChatService) SendMessage(ctx context.Context, id identitydomain.Identity, chatID int64, in domain.CreateMessage) (*domain.Message, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, apperr.New(apperr.KindBadRequest, "content cannot be empty")
	}
	for _, u := range in.Files {
		if err := s.checkFile(id, u); err != nil {
			return nil, err
		}
	}
	m := &domain.Message{ChatID: chatID, SenderID: id.ID, Content: in.Content, Files: in.Files}
	if m.Files == nil {
		m.Files = []string{}
	}
	if err := s.chats.CreateMessage(ctx, m); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "create message in chat %d", chatID)
	}
	return m, nil
}

// ListMessages returns one page of chatID, newest first.
func (s *ChatService) ListMessages(ctx context.Context, chatID int64, q domain.ListMessages) ([]domain.Message, error) {
	before := q.LastID
	if before <= 0 {
		before = math.MaxInt64
	}
	msgs, err := s.chats.ListMessages(ctx, chatID, before, q.PageSize())
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "list messages of chat %d", chatID)
	}
	return msgs, nil
}

func (s *ChatService) checkMembers(ctx context.Context, workspaceID int64, name *string, members []int64) error {
	if err := domain.ValidateMembers(name, members); err != nil {
		return &apperr.Error{Kind: apperr.KindBadRequest, Err: err}
	}
	n, err := s.users.CountInWorkspace(ctx, workspaceID, members)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, err, "count members")
	}
	if n != len(members) {
		return apperr.New(apperr.KindBadRequest, "some members do not exist")
	}
	return nil
}

func (s *ChatService) checkFile(id identitydomain.Identity, url string) error {
	fid, err := filestore.ParseURL(url)
	if err == nil {
		err = fid.Validate()
	}
	if err != nil {
		return apperr.Wrap(apperr.KindBadRequest, err, "invalid file url %q", url)
	}
	if fid.WorkspaceID != id.WorkspaceID {
		log.Printf("chat: user %d (workspace %d) referenced file of workspace %d", id.ID, id.WorkspaceID, fid.WorkspaceID)
		return apperr.New(apperr.KindBadRequest, "file %s does not exist", url)
	}
	if !s.blobs.Exists(fid) {
		return apperr.New(apperr.KindBadRequest, "file %s does not exist", url)
	}
	return nil
}
