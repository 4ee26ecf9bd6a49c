package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// actorCapture is a slot the Logger middleware plants in the request
// context so the auth middleware, which runs further down the chain, can
// report the authenticated user back up to the access log.
type actorCapture struct {
	userID string
}

type actorCaptureKey struct{}

func withActorCapture(ctx context.Context) context.Context {
	return context.WithValue(ctx, actorCaptureKey{}, &actorCapture{})
}

// recordActor stores the authenticated user ID for the access log.
// No-op when no capture slot is present (e.g. in isolated handler tests).
func recordActor(ctx context.Context, userID string) {
	if c, ok := ctx.Value(actorCaptureKey{}).(*actorCapture); ok {
		c.userID = userID
	}
}

func capturedActor(ctx context.Context) string {
	if c, ok := ctx.Value(actorCaptureKey{}).(*actorCapture); ok {
		return c.userID
	}
	return ""
}

// Logger returns a middleware that logs HTTP requests. Authenticated
// requests carry a user_id field so moderation and compliance actions in
// the access log can be tied back to an actor.
func Logger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := newResponseWriter(w)
			r = r.WithContext(withActorCapture(r.Context()))

			// Process request
			next.ServeHTTP(wrapped, r)

			// Log request
			duration := time.Since(start)
			requestID := GetRequestID(r.Context())

			// Extract trace ID from span context
			spanCtx := trace.SpanContextFromContext(r.Context())
			traceID := ""
			spanID := ""
			if spanCtx.IsValid() {
				traceID = spanCtx.TraceID().String()
				spanID = spanCtx.SpanID().String()
			}

			evt := log.Info().
				Str("request_id", requestID).
				Str("trace_id", traceID).
				Str("span_id", spanID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapped.statusCode).
				Int64("bytes", wrapped.written).
				Dur("duration", duration).
				Str("remote_addr", r.RemoteAddr).
				Str("user_agent", r.UserAgent())
			if userID := capturedActor(r.Context()); userID != "" {
				evt = evt.Str("user_id", userID)
			}
			evt.Msg("request completed")
		})
	}
}
