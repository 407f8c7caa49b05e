package audit

import (
	"net/http"
	"strings"
)

// ActionResource holds action and resource derived from an HTTP route.
type ActionResource struct {
	Action   string
	Resource string
}

// Route overrides where the generic verb/noun derivation would mislabel the operation.
var routeOverrides = map[string]ActionResource{
	"POST /api/signin":            {Action: "signin", Resource: "user"},
	"POST /api/signup":            {Action: "signup", Resource: "user"},
	"POST /api/upload":            {Action: "upload", Resource: "file"},
	"GET /api/files/:ws_id/*path": {Action: "download", Resource: "file"},
	"POST /api/chats/:id":         {Action: "send", Resource: "message"},
	"GET /api/chats/:id/messages": {Action: "list", Resource: "message"},
}

// ParseRoute returns action and resource for an HTTP method and a gin route pattern (c.FullPath()).
// Action follows the method: GET on a collection is list, GET on an item is get, POST create,
// PUT/PATCH update, DELETE delete. Resource is the singular of the last literal path segment.
func ParseRoute(method, route string) ActionResource {
	if ar, ok := routeOverrides[method+" "+route]; ok {
		return ar
	}
	segments := strings.Split(strings.Trim(route, "/"), "/")
	resource := ""
	item := false
	for _, s := range segments {
		if s == "" || s == "api" {
			continue
		}
		if strings.HasPrefix(s, ":") || strings.HasPrefix(s, "*") {
			item = true
			continue
		}
		resource = s
		item = false
	}
	if resource == "" {
		return ActionResource{Action: "unknown", Resource: "unknown"}
	}
	return ActionResource{Action: methodToAction(method, item), Resource: singular(resource)}
}

func methodToAction(method string, item bool) string {
	switch method {
	case http.MethodGet, http.MethodHead:
		if item {
			return "get"
		}
		return "list"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return strings.ToLower(method)
	}
}

func singular(s string) string {
	s = strings.ToLower(s)
	if strings.HasSuffix(s, "ies") && len(s) > 3 {
		return s[:len(s)-3] + "y"
	}
	if strings.HasSuffix(s, "s") && !strings.HasSuffix(s, "ss") {
		return s[:len(s)-1]
	}
	return s
}
