package rbplog

import (
	"context"
	"fmt"
)

type contextKey struct{}

var logContextKey = contextKey{}

// SessionContext holds per-client logging fields (a client URI and
// protocol version) threaded through a context.Context.
type SessionContext struct {
	ClientURI string
	Major     uint8
	Minor     uint8
}

// WithSession attaches sc to ctx.
func WithSession(ctx context.Context, sc *SessionContext) context.Context {
	return context.WithValue(ctx, logContextKey, sc)
}

// SessionFromContext retrieves the SessionContext attached to ctx, or
// nil if none is present.
func SessionFromContext(ctx context.Context) *SessionContext {
	if ctx == nil {
		return nil
	}
	sc, _ := ctx.Value(logContextKey).(*SessionContext)
	return sc
}

// DebugCtx logs at debug level, prepending the session's fields ahead
// of args so they appear first in the line.
func DebugCtx(ctx context.Context, msg string, args ...any) {
	get().Debug(msg, withSessionArgs(ctx, args)...)
}

// InfoCtx logs at info level, prepending the session's fields.
func InfoCtx(ctx context.Context, msg string, args ...any) {
	get().Info(msg, withSessionArgs(ctx, args)...)
}

// WarnCtx logs at warn level, prepending the session's fields.
func WarnCtx(ctx context.Context, msg string, args ...any) {
	get().Warn(msg, withSessionArgs(ctx, args)...)
}

// ErrorCtx logs at error level, prepending the session's fields.
func ErrorCtx(ctx context.Context, msg string, args ...any) {
	get().Error(msg, withSessionArgs(ctx, args)...)
}

func withSessionArgs(ctx context.Context, args []any) []any {
	sc := SessionFromContext(ctx)
	if sc == nil {
		return args
	}
	prefixed := make([]any, 0, 6+len(args))
	if sc.ClientURI != "" {
		prefixed = append(prefixed, "client_uri", sc.ClientURI)
	}
	if sc.Major != 0 || sc.Minor != 0 {
		prefixed = append(prefixed, "rbp_version", formatVersion(sc.Major, sc.Minor))
	}
	return append(prefixed, args...)
}

func formatVersion(major, minor uint8) string {
	return fmt.Sprintf("%d.%d", major, minor)
}
