package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"chat-server/backend/internal/audit"
	auditdomain "chat-server/backend/internal/audit/domain"
	identitydomain "chat-server/backend/internal/identity/domain"
	userdomain "chat-server/backend/internal/user/domain"
	userrepo "chat-server/backend/internal/user/repository"
)

// Sentinel errors for the auth service; the handler maps them to HTTP statuses.
var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrEmailAlreadyRegistered = errors.New("email already exists")
	ErrInvalidCredentials     = errors.New("invalid credentials")
)

// AuthResult holds the token issued by SignUp or SignIn.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	Identity  identitydomain.Identity
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, in userdomain.CreateUser, passwordHash string) (*userdomain.User, error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
	VerifyMissing(password string)
}

// TokenSigner issues bearer tokens for an identity.
type TokenSigner interface {
	Sign(id identitydomain.Identity) (string, time.Time, error)
}

// AuthService implements password sign-up and sign-in.
type AuthService struct {
	users  UserRepo
	hasher PasswordHasher
	tokens TokenSigner
	audit  audit.AuditLogger
}

// NewAuthService returns an AuthService. auditLogger may be nil.
func NewAuthService(users UserRepo, hasher PasswordHasher, tokens TokenSigner, auditLogger audit.AuditLogger) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, audit: auditLogger}
}

// SignUp registers a user, creating the workspace on first use, and returns a token.
func (s *AuthService) SignUp(ctx context.Context, in userdomain.CreateUser) (*AuthResult, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	existing, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Create(ctx, in, hash)
	if err != nil {
		if errors.Is(err, userrepo.ErrEmailExists) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, err
	}
	log.Printf("auth: user %d signed up in workspace %d", user.ID, user.WorkspaceID)
	return s.issue(user)
}

// SignIn checks the email and password and returns a token. Unknown email and wrong password
// are indistinguishable to the caller.
func (s *AuthService) SignIn(ctx context.Context, in userdomain.SigninUser) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.hasher.VerifyMissing(in.Password)
		s.denied(ctx, 0, "unknown email")
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(user.PasswordHash, in.Password) {
		s.denied(ctx, user.ID, "wrong password")
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *userdomain.User) (*AuthResult, error) {
	id := identitydomain.Identity{
		ID:          user.ID,
		WorkspaceID: user.WorkspaceID,
		FullName:    user.FullName,
		Email:       user.Email,
	}
	token, exp, err := s.tokens.Sign(id)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: exp, Identity: id}, nil
}

func (s *AuthService) denied(ctx context.Context, userID int64, reason string) {
	log.Printf("auth: sign-in rejected for user %d: %s", userID, reason)
	if s.audit != nil {
		s.audit.LogEvent(ctx, auditdomain.SystemWorkspaceID, userID, "signin_failed", "user", reason)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
