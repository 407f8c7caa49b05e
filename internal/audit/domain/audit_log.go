package domain

import "time"

// SystemWorkspaceID is recorded for events with no workspace (e.g. a failed sign-in).
const SystemWorkspaceID int64 = 0

// AuditLog is a single audit record. It travels as the metadata of a telemetry event.
type AuditLog struct {
	ID          string    `json:"id"`
	WorkspaceID int64     `json:"ws_id"`
	UserID      int64     `json:"user_id,omitempty"`
	Action      string    `json:"action"`
	Resource    string    `json:"resource"`
	IP          string    `json:"ip"`
	RequestID   string    `json:"request_id,omitempty"`
	Metadata    string    `json:"metadata,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
