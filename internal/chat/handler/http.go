// Package handler exposes chats and messages over HTTP. Chat-scoped routes run behind the
// membership guard, which has already verified the :id parameter.
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-server/backend/internal/chat/domain"
	identitydomain "chat-server/backend/internal/identity/domain"
	"chat-server/backend/internal/platform/apperr"
	"chat-server/backend/internal/server/interceptors"
)

// Chats is the subset of service.ChatService used by the handler.
type Chats interface {
	ListChats(ctx context.Context, id identitydomain.Identity) ([]domain.Chat, error)
	CreateChat(ctx context.Context, id identitydomain.Identity, in domain.CreateChat) (*domain.Chat, error)
	UpdateChat(ctx context.Context, id identitydomain.Identity, chatID int64, in domain.UpdateChat) (*domain.Chat, error)
	DeleteChat(ctx context.Context, id identitydomain.Identity, chatID int64) error
	SendMessage(ctx context.Context, id identitydomain.Identity, chatID int64, in domain.CreateMessage) (*domain.Message, error)
	ListMessages(ctx context.Context, chatID int64, q domain.ListMessages) ([]domain.Message, error)
}

// ChatHandler serves /api/chats.
type ChatHandler struct {
	chats Chats
}

// NewChatHandler returns a ChatHandler backed by chats.
func NewChatHandler(chats Chats) *ChatHandler {
	return &ChatHandler{chats: chats}
}

// List handles GET /api/chats.
func (h *ChatHandler) List(c *gin.Context) {
	out, err := h.chats.ListChats(c.Request.Context(), interceptors.MustIdentity(c))
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Create handles POST /api/chats.
func (h *ChatHandler) Create(c *gin.Context) {
	var in domain.CreateChat
	if !bind(c, &in) {
		return
	}
	out, err := h.chats.CreateChat(c.Request.Context(), interceptors.MustIdentity(c), in)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// Update handles PATCH /api/chats/:id.
func (h *ChatHandler) Update(c *gin.Context) {
	chatID := mustChatID(c)
	var in domain.UpdateChat
	if !bind(c, &in) {
		return
	}
	out, err := h.chats.UpdateChat(c.Request.Context(), interceptors.MustIdentity(c), chatID, in)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Delete handles DELETE /api/chats/:id.
func (h *ChatHandler) Delete(c *gin.Context) {
	if err := h.chats.DeleteChat(c.Request.Context(), interceptors.MustIdentity(c), mustChatID(c)); err != nil {
		apperr.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SendMessage handles POST /api/chats/:id.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	chatID := mustChatID(c)
	var in domain.CreateMessage
	if !bind(c, &in) {
		return
	}
	out, err := h.chats.SendMessage(c.Request.Context(), interceptors.MustIdentity(c), chatID, in)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// ListMessages handles GET /api/chats/:id/messages?last_id=&limit=.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	chatID := mustChatID(c)
	var q domain.ListMessages
	if err := c.ShouldBindQuery(&q); err != nil {
		apperr.Abort(c, apperr.Wrap(apperr.KindBadRequest, err, "invalid query"))
		return
	}
	out, err := h.chats.ListMessages(c.Request.Context(), chatID, q)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		apperr.Abort(c, apperr.Wrap(apperr.KindBadRequest, err, "invalid request body"))
		return false
	}
	return true
}

// mustChatID returns the chat id stored by the membership guard. It panics when the route was
// registered without the guard.
func mustChatID(c *gin.Context) int64 {
	id, ok := interceptors.ChatID(c)
	if !ok {
		panic("chat handler: route registered without RequireChatMember")
	}
	return id
}
