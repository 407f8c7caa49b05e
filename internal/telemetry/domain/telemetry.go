package domain

import (
	"encoding/json"
	"time"
)

// Event types emitted by the server.
const (
	EventHTTPRequest = "http_request"
	EventAudit       = "audit"
)

// Event is a telemetry event scoped to a workspace, optionally tied to a user and request.
// It is serialized as JSON on the Kafka topic and relayed to Loki by the worker.
type Event struct {
	ID          string          `json:"id"`
	WorkspaceID int64           `json:"workspaceId,omitempty"`
	UserID      int64           `json:"userId,omitempty"`
	RequestID   string          `json:"requestId,omitempty"`
	EventType   string          `json:"eventType"`
	Source      string          `json:"source"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}
