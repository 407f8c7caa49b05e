package domain

// Identity is the authenticated caller resolved from a bearer token. It is embedded as the
// custom claims of every token and lives only for the duration of a request.
type Identity struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"ws_id"`
	FullName    string `json:"fullname"`
	Email       string `json:"email"`
}
