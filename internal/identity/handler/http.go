// Package handler exposes sign-up and sign-in over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"chat-server/backend/internal/identity/service"
	"chat-server/backend/internal/platform/apperr"
	userdomain "chat-server/backend/internal/user/domain"
)

// Authenticator is the subset of service.AuthService used by the handler.
type Authenticator interface {
	SignUp(ctx context.Context, in userdomain.CreateUser) (*service.AuthResult, error)
	SignIn(ctx context.Context, in userdomain.SigninUser) (*service.AuthResult, error)
}

// AuthOutput is the body of a successful sign-up or sign-in.
type AuthOutput struct {
	Token string `json:"token"`
}

// AuthHandler serves /signup and /signin.
type AuthHandler struct {
	auth Authenticator
}

// NewAuthHandler returns an AuthHandler backed by auth.
func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// SignUp handles POST /api/signup and answers 201 with a token.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var in userdomain.CreateUser
	if err := c.ShouldBindJSON(&in); err != nil {
		apperr.Abort(c, apperr.Wrap(apperr.KindBadRequest, err, "invalid request body"))
		return
	}
	res, err := h.auth.SignUp(c.Request.Context(), in)
	if err != nil {
		apperr.Abort(c, toAppErr(err))
		return
	}
	c.JSON(http.StatusCreated, AuthOutput{Token: res.Token})
}

// SignIn handles POST /api/signin.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var in userdomain.SigninUser
	if err := c.ShouldBindJSON(&in); err != nil {
		apperr.Abort(c, apperr.Wrap(apperr.KindBadRequest, err, "invalid request body"))
		return
	}
	res, err := h.auth.SignIn(c.Request.Context(), in)
	if err != nil {
		apperr.Abort(c, toAppErr(err))
		return
	}
	c.JSON(http.StatusOK, AuthOutput{Token: res.Token})
}

func toAppErr(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return &apperr.Error{Kind: apperr.KindBadRequest, Msg: strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": ")}
	case errors.Is(err, service.ErrEmailAlreadyRegistered):
		return apperr.New(apperr.KindConflict, "email already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		return apperr.Wrap(apperr.KindInvalidCredentials, err, "sign-in")
	}
	return apperr.Wrap(apperr.KindInternal, err, "auth")
}
