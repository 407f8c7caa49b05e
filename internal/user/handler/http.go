// Package handler exposes the workspace user directory over HTTP.
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-server/backend/internal/platform/apperr"
	"chat-server/backend/internal/server/interceptors"
	"chat-server/backend/internal/user/domain"
)

// Directory lists the users of a workspace.
type Directory interface {
	ListByWorkspace(ctx context.Context, workspaceID int64) ([]domain.ChatUser, error)
}

// UserHandler serves /api/users.
type UserHandler struct {
	users Directory
}

// NewUserHandler returns a UserHandler backed by users.
func NewUserHandler(users Directory) *UserHandler {
	return &UserHandler{users: users}
}

// List handles GET /api/users: every user of the caller's workspace.
func (h *UserHandler) List(c *gin.Context) {
	id := interceptors.MustIdentity(c)
	users, err := h.users.ListByWorkspace(c.Request.Context(), id.WorkspaceID)
	if err != nil {
		apperr.Abort(c, apperr.Wrap(apperr.KindInternal, err, "list users of workspace %d", id.WorkspaceID))
		return
	}
	c.JSON(http.StatusOK, users)
}
