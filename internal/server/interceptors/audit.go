package interceptors

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-server/backend/internal/audit"
	auditdomain "chat-server/backend/internal/audit/domain"
)

// Audit returns a handler that records an audit entry after each authenticated request and after
// every 403 denial, authenticated or not. Entries are best-effort. skipRoutes holds gin route
// patterns not to audit (sign-in and sign-up audit themselves).
func Audit(logger audit.AuditLogger, skipRoutes map[string]bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if logger == nil || route == "" || skipRoutes[route] {
			return
		}
		ctx := c.Request.Context()
		status := c.Writer.Status()
		id, authenticated := GetIdentity(ctx)
		denied := status == http.StatusForbidden
		if !authenticated && !denied {
			return
		}
		ar := audit.ParseRoute(c.Request.Method, route)
		action := ar.Action
		if denied {
			action += "_denied"
		}
		workspaceID := auditdomain.SystemWorkspaceID
		if authenticated {
			workspaceID = id.WorkspaceID
		}
		meta := fmt.Sprintf("status=%d path=%s", status, c.Request.URL.Path)
		if chatID, ok := ChatID(c); ok {
			meta += fmt.Sprintf(" chat_id=%d", chatID)
		}
		logger.LogEvent(ctx, workspaceID, id.ID, action, ar.Resource, meta)
	}
}
