package auth

import "context"

type contextKey string

const sessionKey contextKey = "session"

// WithSession returns a context carrying the given session.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext returns the session from the context, or nil.
func SessionFromContext(ctx context.Context) *Session {
	v := ctx.Value(sessionKey)
	if v == nil {
		return nil
	}
	s, _ := v.(*Session)
	return s
}
