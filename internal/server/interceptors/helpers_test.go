package interceptors

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"chat-server/backend/internal/identity/domain"
	"chat-server/backend/internal/platform/apperr"
	"chat-server/backend/internal/security"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// mockMembership implements rbac.ChatMembershipGetter over a chat -> members map.
type mockMembership struct {
	chats map[int64][]int64
	err   error
	calls int
}

func (m *mockMembership) IsChatMember(ctx context.Context, chatID, userID int64) (bool, error) {
	m.calls++
	if m.err != nil {
		return false, m.err
	}
	for _, id := range m.chats[chatID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func newTokens(t *testing.T) *security.TokenProvider {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	return tokens
}

func sign(t *testing.T, tokens *security.TokenProvider, id domain.Identity) string {
	t.Helper()
	token, _, err := tokens.Sign(id)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	return token
}

// echoIdentity writes the identity from context as JSON.
func echoIdentity(c *gin.Context) {
	c.JSON(http.StatusOK, MustIdentity(c))
}

func do(r http.Handler, method, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body apperr.Body
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal error body %q: %v", w.Body.String(), err)
	}
	return body.Error
}
