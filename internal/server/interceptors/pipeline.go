package interceptors

import (
	"github.com/gin-gonic/gin"

	"chat-server/backend/internal/platform/rbac"
)

// ChatIDParam is the path parameter holding the chat id on chat-scoped routes.
const ChatIDParam = "id"

// Pipeline builds the per-route handler chains. The membership guard is only reachable through
// ChatScoped, which always places Authenticate first.
type Pipeline struct {
	authenticate gin.HandlerFunc
	chatMember   gin.HandlerFunc
}

// NewPipeline returns a Pipeline verifying tokens with tokens and chat membership with members.
func NewPipeline(tokens TokenVerifier, members rbac.ChatMembershipGetter) *Pipeline {
	return &Pipeline{
		authenticate: Authenticate(tokens),
		chatMember:   RequireChatMember(members, ChatIDParam),
	}
}

// Authenticated returns [Authenticate, handlers...].
func (p *Pipeline) Authenticated(handlers ...gin.HandlerFunc) gin.HandlersChain {
	return p.chain([]gin.HandlerFunc{p.authenticate}, handlers)
}

// ChatScoped returns [Authenticate, RequireChatMember, handlers...].
func (p *Pipeline) ChatScoped(handlers ...gin.HandlerFunc) gin.HandlersChain {
	return p.chain([]gin.HandlerFunc{p.authenticate, p.chatMember}, handlers)
}

func (p *Pipeline) chain(stages, handlers []gin.HandlerFunc) gin.HandlersChain {
	out := make(gin.HandlersChain, 0, len(stages)+len(handlers))
	out = append(out, stages...)
	return append(out, handlers...)
}
