// Package audit records who did what to which resource. Records are emitted as telemetry events
// so they reach Kafka, Loki, and OTel Logs alongside request telemetry.
package audit

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"chat-server/backend/internal/audit/domain"
	"chat-server/backend/internal/telemetry"
	telemetrydomain "chat-server/backend/internal/telemetry/domain"
)

const source = "audit_logger"

// Extractor reads a request attribute (client IP, request id) from the context.
type Extractor func(context.Context) string

// AuditLogger writes a single audit event with explicit action and resource.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, workspaceID, userID int64, action, resource, metadata string)
}

// Logger implements AuditLogger on top of a telemetry emitter.
type Logger struct {
	emitter   telemetry.EventEmitter
	ip        Extractor
	requestID Extractor
	now       func() time.Time
}

// NewLogger returns a Logger that emits to emitter. ip and requestID may be nil;
// then the IP is recorded as "unknown" and the request id is left empty.
func NewLogger(emitter telemetry.EventEmitter, ip, requestID Extractor) *Logger {
	return &Logger{emitter: emitter, ip: ip, requestID: requestID, now: time.Now}
}

// Entry builds the audit record LogEvent would emit.
func (l *Logger) Entry(ctx context.Context, workspaceID, userID int64, action, resource, metadata string) *domain.AuditLog {
	ip := "unknown"
	if l.ip != nil {
		if v := l.ip(ctx); v != "" {
			ip = v
		}
	}
	var reqID string
	if l.requestID != nil {
		reqID = l.requestID(ctx)
	}
	return &domain.AuditLog{
		ID:          uuid.New().String(),
		WorkspaceID: workspaceID,
		UserID:      userID,
		Action:      action,
		Resource:    resource,
		IP:          ip,
		RequestID:   reqID,
		Metadata:    metadata,
		CreatedAt:   l.now().UTC(),
	}
}

// LogEvent emits one audit record asynchronously.
func (l *Logger) LogEvent(ctx context.Context, workspaceID, userID int64, action, resource, metadata string) {
	if l == nil || l.emitter == nil {
		return
	}
	entry := l.Entry(ctx, workspaceID, userID, action, resource, metadata)
	payload, err := json.Marshal(entry)
	if err != nil {
		log.Printf("audit: failed to encode event %s/%s: %v", action, resource, err)
		return
	}
	telemetry.EmitAsync(l.emitter, &telemetrydomain.Event{
		ID:          entry.ID,
		WorkspaceID: entry.WorkspaceID,
		UserID:      entry.UserID,
		RequestID:   entry.RequestID,
		EventType:   telemetrydomain.EventAudit,
		Source:      source,
		Metadata:    payload,
		CreatedAt:   entry.CreatedAt,
	})
}
