// Package ctxutil carries the request-scoped caller identity of a macrotrack
// request: the authenticated user, the client address of anonymous callers
// and the request id.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type ctxKey int

const (
	userIDKey ctxKey = iota
	requestIDKey
	clientIPKey
)

// AnonymousCaller is the caller key of a request that has neither a user nor
// a known client address.
const AnonymousCaller = "anonymous"

// WithUserID stores the authenticated user in the context.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromCtx extracts the user ID from the context.
// Returns uuid.Nil and false if the value is missing, nil UUID, or wrong type.
func UserIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithClientIP stores the remote address of the caller. Empty values are
// ignored.
func WithClientIP(ctx context.Context, ip string) context.Context {
	if ip == "" {
		return ctx
	}
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIPFromCtx returns the caller's remote address if one was recorded.
func ClientIPFromCtx(ctx context.Context) (string, bool) {
	ip, ok := ctx.Value(clientIPKey).(string)
	return ip, ok && ip != ""
}

// CallerKey identifies who is making the request for per-caller quotas:
// "user:<id>" when authenticated, otherwise "ip:<addr>", otherwise
// AnonymousCaller.
func CallerKey(ctx context.Context) string {
	if id, ok := UserIDFromCtx(ctx); ok {
		return "user:" + id.String()
	}
	if ip, ok := ClientIPFromCtx(ctx); ok {
		return "ip:" + ip
	}
	return AnonymousCaller
}

// LogAttrs returns the request id and user id present in ctx as slog
// attributes, for log lines written outside the access log.
func LogAttrs(ctx context.Context) []any {
	attrs := make([]any, 0, 2)
	if id := RequestIDFromCtx(ctx); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	if id, ok := UserIDFromCtx(ctx); ok {
		attrs = append(attrs, slog.String("user_id", id.String()))
	}
	return attrs
}
