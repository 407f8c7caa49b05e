package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

// User is a workspace member as stored. PasswordHash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	WorkspaceID  int64     `json:"wsId"`
	FullName     string    `json:"fullname"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ChatUser is the public projection used when listing members of a workspace.
type ChatUser struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullname"`
	Email    string `json:"email"`
}

// Workspace groups users. OwnerID is 0 until the first user signs up.
type Workspace struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   int64     `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateUser is the sign-up input.
type CreateUser struct {
	FullName  string `json:"fullname"`
	Email     string `json:"email"`
	Workspace string `json:"workspace"`
	Password  string `json:"password"`
}

// SigninUser is the sign-in input.
type SigninUser struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

const (
	maxFullNameLen  = 64
	maxEmailLen     = 64
	maxWorkspaceLen = 32
	minPasswordLen  = 6
)

// Normalize trims every field except the password and lowercases the email.
func (in *CreateUser) Normalize() {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Workspace = strings.TrimSpace(in.Workspace)
}

// Validate returns the first problem with the sign-up input. Call Normalize first.
func (in *CreateUser) Validate() error {
	switch {
	case in.FullName == "":
		return errors.New("fullname is required")
	case len(in.FullName) > maxFullNameLen:
		return errors.New("fullname is too long")
	case in.Workspace == "":
		return errors.New("workspace is required")
	case len(in.Workspace) > maxWorkspaceLen:
		return errors.New("workspace is too long")
	case len(in.Email) > maxEmailLen:
		return errors.New("email is too long")
	case len(in.Password) < minPasswordLen:
		return errors.New("password must be at least 6 characters")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return errors.New("invalid email format")
	}
	return nil
}
