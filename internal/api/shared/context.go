package shared

import (
	"context"
	"encoding/hex"
	"log/slog"
	"regexp"

	"github.com/google/uuid"
)

// ContextKey is the type of request-scoped context keys.
type ContextKey string

const (
	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"

	// TraceIDHeader carries the trace ID in requests and responses.
	TraceIDHeader = "X-Trace-ID"

	// TraceIDLength is the number of hex characters in a trace ID.
	TraceIDLength = 32
)

var traceIDPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// SetTraceID adds a freshly generated trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return WithTraceID(ctx, NewTraceID())
}

// WithTraceID adds the given trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// ValidTraceID reports whether id looks like a trace ID this package issued.
// Client-supplied IDs that fail this check are replaced.
func ValidTraceID(id string) bool {
	return traceIDPattern.MatchString(id)
}

// NewTraceID returns a random 32-character hex trace ID. If the random
// source fails it falls back to a time-based UUID.
func NewTraceID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		slog.Error("failed to generate random trace ID", "error", err, "fallback", "uuid v1")
		id, err = uuid.NewUUID()
		if err != nil {
			return hex.EncodeToString(make([]byte, TraceIDLength/2))
		}
	}
	return hex.EncodeToString(id[:])
}
