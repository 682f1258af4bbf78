package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/smartcart/smartcart-backend/api/responses"
	"github.com/smartcart/smartcart-backend/api/validators"
	"github.com/smartcart/smartcart-backend/internal/auth"
	"github.com/smartcart/smartcart-backend/internal/storefront"
	pkgerrors "github.com/smartcart/smartcart-backend/pkg/errors"
	"github.com/smartcart/smartcart-backend/pkg/logger"
)

// SessionHeader carries the client-generated key that names a browser's
// storefront session.
const SessionHeader = "X-SC-Session"

// sessionQueryParam is the fallback for clients that cannot set headers,
// such as browser websockets.
const sessionQueryParam = "session"

type sessionChecker interface {
	Session(ctx context.Context, accessToken string) (*auth.SessionInfo, error)
}

type sessionRestorer interface {
	Restore(ctx context.Context, key string, info *auth.SessionInfo) (*storefront.Session, error)
}

// Storefront resolves the request's storefront session. A bearer token is
// optional: without one, or with one that maps to no live session, the
// request runs as a guest. Restore brings the session's role and cart in
// step with the token before the handler runs.
func Storefront(checker sessionChecker, sessions sessionRestorer, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			key := SessionKey(r)
			if !storefront.ValidKey(key) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing or invalid session key").
					WithDetails(map[string]any{"header": SessionHeader}))
				return
			}

			info, err := checker.Session(ctx, validators.BearerToken(r))
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			sess, err := sessions.Restore(ctx, key, info)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			ctx = WithSession(ctx, sess)
			if logg != nil {
				ctx = logg.WithSessionKey(ctx, key)
			}
			if info != nil {
				ctx = WithIdentity(ctx, info)
				if logg != nil {
					ctx = logg.WithUserID(ctx, info.Identity.AccountID.String())
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionKey reads the storefront session key from the header, falling back
// to the session query parameter.
func SessionKey(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get(SessionHeader)); key != "" {
		return key
	}
	return strings.TrimSpace(r.URL.Query().Get(sessionQueryParam))
}
