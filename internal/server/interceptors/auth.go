package interceptors

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"chat-server/backend/internal/identity/domain"
	"chat-server/backend/internal/platform/apperr"
)

const bearerPrefix = "bearer "

var (
	errMissingAuthorization   = errors.New("missing authorization header")
	errMalformedAuthorization = errors.New("authorization header is not a bearer token")
)

// TokenVerifier resolves a bearer token to an identity. *security.TokenProvider implements it.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

// Authenticate returns a handler that validates the Bearer token from the Authorization header and
// attaches the identity to the request context. Missing, malformed, or invalid tokens abort with 403;
// the reason is logged, the wire body stays generic.
func Authenticate(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractBearer(c.GetHeader("Authorization"))
		if err != nil {
			apperr.Abort(c, apperr.Wrap(apperr.KindToken, err, "authenticate"))
			return
		}
		id, err := tokens.Verify(token)
		if err != nil {
			apperr.Abort(c, apperr.Wrap(apperr.KindToken, err, "authenticate"))
			return
		}
		setContext(c, WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// extractBearer returns the token from an Authorization header value.
func extractBearer(header string) (string, error) {
	v := strings.TrimSpace(header)
	if v == "" {
		return "", errMissingAuthorization
	}
	if len(v) < len(bearerPrefix) || !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return "", errMalformedAuthorization
	}
	token := strings.TrimSpace(v[len(bearerPrefix):])
	if token == "" {
		return "", errMalformedAuthorization
	}
	return token, nil
}
