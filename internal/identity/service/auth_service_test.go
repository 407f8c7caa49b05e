package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"chat-server/backend/internal/security"
	userdomain "chat-server/backend/internal/user/domain"
	userrepo "chat-server/backend/internal/user/repository"
)

type memUserRepo struct {
	mu         sync.Mutex
	byEmail    map[string]*userdomain.User
	workspaces map[string]int64
	nextID     int64
	createErr  error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: map[string]*userdomain.User{}, workspaces: map[string]int64{}}
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byEmail[email], nil
}

func (r *memUserRepo) Create(ctx context.Context, in userdomain.CreateUser, hash string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, ok := r.byEmail[in.Email]; ok {
		return nil, userrepo.ErrEmailExists
	}
	ws, ok := r.workspaces[in.Workspace]
	if !ok {
		ws = int64(len(r.workspaces) + 1)
		r.workspaces[in.Workspace] = ws
	}
	r.nextID++
	u := &userdomain.User{ID: r.nextID, WorkspaceID: ws, FullName: in.FullName, Email: in.Email, PasswordHash: hash}
	r.byEmail[in.Email] = u
	return u, nil
}

type auditCall struct {
	userID int64
	action string
}

type mockAudit struct {
	mu    sync.Mutex
	calls []auditCall
}

func (m *mockAudit) LogEvent(_ context.Context, _, userID int64, action, _, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, auditCall{userID, action})
}

func newTestService(t *testing.T) (*AuthService, *memUserRepo, *mockAudit, *security.TokenProvider) {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	repo := newMemUserRepo()
	aud := &mockAudit{}
	return NewAuthService(repo, security.NewHasher(bcrypt.MinCost), tokens, aud), repo, aud, tokens
}

func validSignUp() userdomain.CreateUser {
	return userdomain.CreateUser{
		FullName:  "Alice Example",
		Email:     "  Alice@Example.com ",
		Workspace: "acme",
		Password:  "hunter22",
	}
}

func TestSignUp_IssuesVerifiableToken(t *testing.T) {
	svc, repo, _, tokens := newTestService(t)
	res, err := svc.SignUp(context.Background(), validSignUp())
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if res.Token == "" || res.ExpiresAt.Before(time.Now()) {
		t.Fatalf("unexpected result %+v", res)
	}
	id, err := tokens.Verify(res.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.Email != "alice@example.com" || id.WorkspaceID != 1 || id.ID != 1 || id.FullName != "Alice Example" {
		t.Errorf("identity = %+v", id)
	}
	stored := repo.byEmail["alice@example.com"]
	if stored == nil || stored.PasswordHash == "hunter22" || stored.PasswordHash == "" {
		t.Error("password should be stored hashed")
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.SignUp(ctx, validSignUp()); err != nil {
		t.Fatalf("first SignUp: %v", err)
	}
	in := validSignUp()
	in.Email = "ALICE@example.com"
	if _, err := svc.SignUp(ctx, in); !errors.Is(err, ErrEmailAlreadyRegistered) {
		t.Errorf("err = %v, want ErrEmailAlreadyRegistered", err)
	}
}

func TestSignUp_RaceOnCreateMapsToDuplicate(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	repo.createErr = userrepo.ErrEmailExists
	if _, err := svc.SignUp(context.Background(), validSignUp()); !errors.Is(err, ErrEmailAlreadyRegistered) {
		t.Errorf("err = %v, want ErrEmailAlreadyRegistered", err)
	}
}

func TestSignUp_InvalidInput(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*userdomain.CreateUser)
	}{
		{"missing fullname", func(in *userdomain.CreateUser) { in.FullName = " " }},
		{"missing workspace", func(in *userdomain.CreateUser) { in.Workspace = "" }},
		{"bad email", func(in *userdomain.CreateUser) { in.Email = "not-an-email" }},
		{"short password", func(in *userdomain.CreateUser) { in.Password = "abc" }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, _, _ := newTestService(t)
			in := validSignUp()
			tc.mutate(&in)
			if _, err := svc.SignUp(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestSignUp_SameWorkspaceSharesID(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	a, err := svc.SignUp(ctx, validSignUp())
	if err != nil {
		t.Fatalf("SignUp a: %v", err)
	}
	in := validSignUp()
	in.Email = "bob@example.com"
	b, err := svc.SignUp(ctx, in)
	if err != nil {
		t.Fatalf("SignUp b: %v", err)
	}
	if a.Identity.WorkspaceID != b.Identity.WorkspaceID {
		t.Errorf("workspaces differ: %d vs %d", a.Identity.WorkspaceID, b.Identity.WorkspaceID)
	}
	if a.Identity.ID == b.Identity.ID {
		t.Error("user ids should differ")
	}
}

func TestSignIn(t *testing.T) {
	svc, _, aud, tokens := newTestService(t)
	ctx := context.Background()
	if _, err := svc.SignUp(ctx, validSignUp()); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	res, err := svc.SignIn(ctx, userdomain.SigninUser{Email: "ALICE@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if id, err := tokens.Verify(res.Token); err != nil || id.Email != "alice@example.com" {
		t.Errorf("Verify = %+v, %v", id, err)
	}

	_, err = svc.SignIn(ctx, userdomain.SigninUser{Email: "alice@example.com", Password: "wrong-password"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v", err)
	}
	_, err = svc.SignIn(ctx, userdomain.SigninUser{Email: "nobody@example.com", Password: "hunter22"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v", err)
	}

	aud.mu.Lock()
	defer aud.mu.Unlock()
	if len(aud.calls) != 2 {
		t.Fatalf("audit calls = %d, want 2", len(aud.calls))
	}
	if aud.calls[0] != (auditCall{1, "signin_failed"}) || aud.calls[1] != (auditCall{0, "signin_failed"}) {
		t.Errorf("audit calls = %+v", aud.calls)
	}
}

func TestSignIn_NilAuditLogger(t *testing.T) {
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	svc := NewAuthService(newMemUserRepo(), security.NewHasher(bcrypt.MinCost), tokens, nil)
	if _, err := svc.SignIn(context.Background(), userdomain.SigninUser{Email: "x@y.io", Password: "p"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v", err)
	}
}
