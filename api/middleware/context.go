package middleware

import (
	"context"

	"github.com/smartcart/smartcart-backend/internal/auth"
	"github.com/smartcart/smartcart-backend/internal/storefront"
)

type contextKey string

const (
	ctxSession  contextKey = "storefront_session"
	ctxIdentity contextKey = "session_info"
)

// SessionFromContext returns the storefront session attached by Storefront.
func SessionFromContext(ctx context.Context) *storefront.Session {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxSession).(*storefront.Session); ok {
		return v
	}
	return nil
}

// IdentityFromContext returns the signed-in account, if any.
func IdentityFromContext(ctx context.Context) *auth.SessionInfo {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxIdentity).(*auth.SessionInfo); ok {
		return v
	}
	return nil
}

// WithSession injects the storefront session into the context.
func WithSession(ctx context.Context, sess *storefront.Session) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSession, sess)
}

func WithIdentity(ctx context.Context, info *auth.SessionInfo) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, info)
}
