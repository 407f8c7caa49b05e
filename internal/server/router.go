// Package server assembles the HTTP API and the gRPC health server.
package server

import (
	"github.com/gin-gonic/gin"

	"chat-server/backend/internal/audit"
	chathandler "chat-server/backend/internal/chat/handler"
	filehandler "chat-server/backend/internal/filestore/handler"
	healthhandler "chat-server/backend/internal/health/handler"
	identityhandler "chat-server/backend/internal/identity/handler"
	"chat-server/backend/internal/platform/rbac"
	"chat-server/backend/internal/server/interceptors"
	"chat-server/backend/internal/telemetry"
	userhandler "chat-server/backend/internal/user/handler"
)

// Route patterns shared by the router, the telemetry skip list, and the audit skip list.
const (
	RouteIndex    = "/"
	RouteHealthz  = "/healthz"
	RouteSignin   = "/api/signin"
	RouteSignup   = "/api/signup"
	RouteUsers    = "/api/users"
	RouteChats    = "/api/chats"
	RouteChat     = "/api/chats/:" + interceptors.ChatIDParam
	RouteMessages = RouteChat + "/messages"
	RouteUpload   = "/api/upload"
	RouteFiles    = "/api/files/:ws_id/*path"
)

// Deps holds everything the router needs. Tokens, Members, and every handler are required;
// Emitter and Audit may be nil.
type Deps struct {
	Tokens  interceptors.TokenVerifier
	Members rbac.ChatMembershipGetter

	Auth   *identityhandler.AuthHandler
	Users  *userhandler.UserHandler
	Chats  *chathandler.ChatHandler
	Files  *filehandler.FileHandler
	Health *healthhandler.Checker

	// Emitter receives one http_request event per request. If nil, requests are traced only.
	Emitter telemetry.EventEmitter
	// Audit records authenticated requests and denials. If nil, nothing is audited.
	Audit audit.AuditLogger
}

// NewRouter returns the gin engine serving the HTTP API. Global middleware runs in this order:
// panic recovery, request id and client ip, x-server-time, telemetry, audit.
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		interceptors.RequestContext(),
		interceptors.ServerTime(),
		interceptors.Telemetry(deps.Emitter, map[string]bool{RouteIndex: true, RouteHealthz: true}),
		interceptors.Audit(deps.Audit, map[string]bool{RouteSignin: true, RouteSignup: true}),
	)

	r.GET(RouteIndex, healthhandler.Index)
	r.GET(RouteHealthz, deps.Health.Healthz)

	r.POST(RouteSignin, deps.Auth.SignIn)
	r.POST(RouteSignup, deps.Auth.SignUp)

	p := interceptors.NewPipeline(deps.Tokens, deps.Members)
	r.GET(RouteUsers, p.Authenticated(deps.Users.List)...)

	r.GET(RouteChats, p.Authenticated(deps.Chats.List)...)
	r.POST(RouteChats, p.Authenticated(deps.Chats.Create)...)
	r.PATCH(RouteChat, p.ChatScoped(deps.Chats.Update)...)
	r.DELETE(RouteChat, p.ChatScoped(deps.Chats.Delete)...)
	r.POST(RouteChat, p.ChatScoped(deps.Chats.SendMessage)...)
	r.GET(RouteMessages, p.ChatScoped(deps.Chats.ListMessages)...)

	r.POST(RouteUpload, p.Authenticated(deps.Files.Upload)...)
	r.GET(RouteFiles, p.Authenticated(deps.Files.Download)...)

	return r
}
