package interceptors

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"chat-server/backend/internal/telemetry"
	"chat-server/backend/internal/telemetry/domain"
)

const tracerName = "chat-server/http"

// httpRequestMetadata is the JSON shape stored in Event.Metadata for http_request events.
type httpRequestMetadata struct {
	Method     string `json:"method"`
	Route      string `json:"route"`
	Status     int    `json:"status"`
	DurationMs int64  `json:"duration_ms"`
	ClientIP   string `json:"client_ip"`
}

// Telemetry returns a handler that traces each request with an OTel server span, records its
// duration in the http.server.request.duration histogram, and emits an http_request event after
// the chain completes. Emission is best-effort and asynchronous.
// emitter may be nil; skipRoutes holds gin route patterns to leave out (e.g. /healthz).
func Telemetry(emitter telemetry.EventEmitter, skipRoutes map[string]bool) gin.HandlerFunc {
	duration, err := otel.Meter(tracerName).Float64Histogram("http.server.request.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of HTTP server requests."),
	)
	if err != nil {
		log.Printf("http: request duration histogram disabled: %v", err)
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if skipRoutes[route] {
			c.Next()
			return
		}
		start := time.Now()
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		spanName := c.Request.Method + " " + route
		if route == "" {
			spanName = c.Request.Method
		}
		ctx, span := otel.Tracer(tracerName).Start(ctx, spanName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", c.Request.Method),
				attribute.String("http.route", route),
			),
		)
		defer span.End()
		setContext(c, ctx)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= 500 {
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))
		}
		if duration != nil {
			duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
				attribute.String("http.request.method", c.Request.Method),
				attribute.String("http.route", route),
				attribute.Int("http.response.status_code", status),
			))
		}
		if emitter == nil {
			return
		}
		reqCtx := c.Request.Context()
		meta, _ := json.Marshal(httpRequestMetadata{
			Method:     c.Request.Method,
			Route:      route,
			Status:     status,
			DurationMs: time.Since(start).Milliseconds(),
			ClientIP:   ClientIP(reqCtx),
		})
		event := &domain.Event{
			ID:        uuid.NewString(),
			RequestID: GetRequestID(reqCtx),
			EventType: domain.EventHTTPRequest,
			Source:    "http_middleware",
			Metadata:  meta,
			CreatedAt: start.UTC(),
		}
		if id, ok := GetIdentity(reqCtx); ok {
			event.WorkspaceID = id.WorkspaceID
			event.UserID = id.ID
		}
		telemetry.EmitAsync(emitter, event)
	}
}
