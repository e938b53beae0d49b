package session

import "context"

type sessionCtx struct{}

// WithContext binds a Session to the context. Bindings nest naturally:
// re-binding in a derived context shadows the outer Session and the outer
// binding is restored when the derived context goes out of scope.
func WithContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionCtx{}, s)
}

// FromContext returns the Session bound to the context, or nil.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(sessionCtx{}).(*Session); ok {
		return s
	}
	return nil
}
