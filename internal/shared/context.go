package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// RequireSession is SessionFromContext for callers that cannot proceed
// without one.
func RequireSession(ctx context.Context) (*Session, error) {
	if sess := SessionFromContext(ctx); sess != nil {
		return sess, nil
	}
	return nil, ErrSessionMissing
}

// Flash queues a flash message on the request's session. It reports false
// when the request has no session.
func Flash(ctx context.Context, kind, message string) bool {
	sess := SessionFromContext(ctx)
	if sess == nil {
		return false
	}
	sess.AddFlash(FlashMessage{Kind: kind, Message: message})
	return true
}
