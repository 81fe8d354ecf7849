package middleware

import (
	"log/slog"
	"net/http"

	"github.com/nathfavour/plantainbanana/internal/api/shared"
)

// TraceMiddleware adds a trace ID to the request context and echoes it in
// the X-Trace-ID response header. A well-formed X-Trace-ID request header is
// reused so a client can correlate its own logs with ours.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(shared.TraceIDHeader)
		if !shared.ValidTraceID(traceID) {
			traceID = shared.NewTraceID()
		}
		ctx := shared.WithTraceID(r.Context(), traceID)
		w.Header().Set(shared.TraceIDHeader, traceID)

		slog.DebugContext(ctx, "request started",
			slog.String("trace_id", traceID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
