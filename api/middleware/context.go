package middleware

import (
	"context"

	"github.com/syed-hamad/Retail-POS-sub001/pkg/auth/session"
)

type contextKey string

const ctxSession contextKey = "staff_session"

// SessionFromContext returns the authenticated staff session, if any.
func SessionFromContext(ctx context.Context) (session.Session, bool) {
	if ctx == nil {
		return session.Session{}, false
	}
	sess, ok := ctx.Value(ctxSession).(session.Session)
	return sess, ok
}

// WithSession injects the staff session into the context.
func WithSession(ctx context.Context, sess session.Session) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSession, sess)
}
