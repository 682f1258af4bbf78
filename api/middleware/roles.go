package middleware

import (
	"net/http"

	"github.com/smartcart/smartcart-backend/api/responses"
	"github.com/smartcart/smartcart-backend/internal/navigation"
	"github.com/smartcart/smartcart-backend/pkg/enums"
	pkgerrors "github.com/smartcart/smartcart-backend/pkg/errors"
	"github.com/smartcart/smartcart-backend/pkg/logger"
)

// RequireRole admits sessions whose settled role is role. A session still
// resolving gets OPERATION_IN_FLIGHT so the client can retry.
func RequireRole(role enums.Role, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFromContext(r.Context())
			if sess == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "storefront session required"))
				return
			}

			state := sess.State()
			if state == enums.SessionResolving {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeBusy, "role resolution in progress"))
				return
			}

			got, ok := state.Role()
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required"))
				return
			}
			if got != role {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required").
					WithDetails(map[string]any{"role": string(role)}))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ShopperScreens rejects owners on the shopper-only screen a route backs.
// Guests and shoppers pass.
func ShopperScreens(screen string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sess := SessionFromContext(r.Context()); sess != nil {
				if role, ok := sess.State().Role(); ok && !navigation.Allowed(role, screen) {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "screen not available for role").
						WithDetails(map[string]any{"role": string(role), "screen": screen}))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
