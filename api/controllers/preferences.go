package controllers

import (
	"net/http"

	"github.com/smartcart/smartcart-backend/api/responses"
	"github.com/smartcart/smartcart-backend/api/validators"
	"github.com/smartcart/smartcart-backend/internal/users"
	"github.com/smartcart/smartcart-backend/pkg/enums"
	pkgerrors "github.com/smartcart/smartcart-backend/pkg/errors"
	"github.com/smartcart/smartcart-backend/pkg/logger"
)

type preferencesResponse struct {
	Preferences []enums.DietaryTag `json:"preferences"`
	Available   []enums.DietaryTag `json:"available"`
}

// GetPreferences returns the signed-in shopper's dietary preferences.
func GetPreferences(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}
		id, ok := accountID(w, r, logg)
		if !ok {
			return
		}

		prefs, err := svc.Preferences(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writePreferences(w, prefs)
	}
}

// UpdatePreferences replaces the signed-in shopper's dietary preferences.
func UpdatePreferences(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}
		id, ok := accountID(w, r, logg)
		if !ok {
			return
		}

		var body users.PreferencesRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		prefs, err := svc.UpdatePreferences(r.Context(), id, body.Preferences)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writePreferences(w, prefs)
	}
}

func writePreferences(w http.ResponseWriter, prefs []enums.DietaryTag) {
	if prefs == nil {
		prefs = []enums.DietaryTag{}
	}
	responses.WriteSuccess(w, preferencesResponse{Preferences: prefs, Available: enums.DietaryTags()})
}
