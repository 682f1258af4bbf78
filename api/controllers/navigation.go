package controllers

import (
	"net/http"
	"strings"

	"github.com/smartcart/smartcart-backend/api/responses"
	"github.com/smartcart/smartcart-backend/internal/navigation"
	"github.com/smartcart/smartcart-backend/pkg/enums"
	pkgerrors "github.com/smartcart/smartcart-backend/pkg/errors"
	"github.com/smartcart/smartcart-backend/pkg/logger"
)

type navigationResponse struct {
	Path     string             `json:"path"`
	State    enums.SessionState `json:"state"`
	Redirect string             `json:"redirect,omitempty"`
}

// Navigation tells the client where a route change should land for the
// session's current role. While the role is resolving no redirect is given.
func Navigation(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionFrom(w, r, logg)
		if !ok {
			return
		}

		path := strings.TrimSpace(r.URL.Query().Get("path"))
		if path == "" || !strings.HasPrefix(path, "/") {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "path must be an absolute route").
				WithDetails(map[string]any{"field": "path"}))
			return
		}

		state := sess.State()
		resp := navigationResponse{Path: path, State: state}
		if target, redirect := navigation.Redirect(state, path); redirect {
			resp.Redirect = target
		}
		responses.WriteSuccess(w, resp)
	}
}
