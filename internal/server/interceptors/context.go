package interceptors

import (
	"context"

	"github.com/gin-gonic/gin"

	"chat-server/backend/internal/identity/domain"
)

type contextKey struct{ name string }

var (
	identityKey  = contextKey{"identity"}
	requestIDKey = contextKey{"request_id"}
	clientIPKey  = contextKey{"client_ip"}
)

// WithIdentity returns a context carrying the authenticated identity.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity returns the identity from context and true if set; otherwise the zero Identity, false.
func GetIdentity(ctx context.Context) (domain.Identity, bool) {
	v, ok := ctx.Value(identityKey).(domain.Identity)
	return v, ok
}

// MustIdentity returns the identity set by Authenticate. It panics when none is present:
// a handler reading the identity on a route without authentication is a wiring bug.
func MustIdentity(c *gin.Context) domain.Identity {
	id, ok := GetIdentity(c.Request.Context())
	if !ok {
		panic("interceptors: no identity in context for " + c.Request.Method + " " + c.FullPath() + "; route is not behind Authenticate")
	}
	return id
}

// WithRequestID returns a context carrying the request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID returns the request id from context or "".
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// WithClientIP returns a context carrying the client IP.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIP returns the client IP from context, or "unknown".
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}

func setContext(c *gin.Context, ctx context.Context) {
	c.Request = c.Request.WithContext(ctx)
}
