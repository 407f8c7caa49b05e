package interceptors

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id on requests and responses.
const RequestIDHeader = "x-request-id"

const maxRequestIDLen = 128

// RequestContext returns a handler that propagates the caller's x-request-id (or generates a UUIDv7),
// echoes it on the response, and stores it and the client IP in the request context.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" || len(reqID) > maxRequestIDLen {
			reqID = newRequestID()
		}
		c.Header(RequestIDHeader, reqID)
		ctx := WithRequestID(c.Request.Context(), reqID)
		setContext(c, WithClientIP(ctx, c.ClientIP()))
		c.Next()
	}
}

func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		log.Printf("http: uuidv7 failed, falling back to v4: %v", err)
		return uuid.NewString()
	}
	return id.String()
}
