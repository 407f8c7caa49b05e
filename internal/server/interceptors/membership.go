package interceptors

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"chat-server/backend/internal/platform/apperr"
	"chat-server/backend/internal/platform/rbac"
)

// chatIDKey is the gin context key under which RequireChatMember stores the parsed chat id.
const chatIDKey = "chat_id"

// RequireChatMember returns a handler that reads the chat id from the named path parameter and aborts
// unless the authenticated identity is a member of that chat. A malformed id aborts with 400, a
// non-member (or a failed lookup) with 403. It must run after Authenticate; see Pipeline.
func RequireChatMember(getter rbac.ChatMembershipGetter, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := MustIdentity(c)
		raw := c.Param(param)
		chatID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || chatID <= 0 {
			apperr.Abort(c, apperr.New(apperr.KindBadRequest, "invalid chat id %q", raw))
			return
		}
		if err := rbac.RequireChatMember(c.Request.Context(), getter, id, chatID); err != nil {
			apperr.Abort(c, err)
			return
		}
		c.Set(chatIDKey, chatID)
		c.Next()
	}
}

// ChatID returns the chat id verified by RequireChatMember, or 0 and false.
func ChatID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(chatIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
