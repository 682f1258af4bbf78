package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/smartcart/smartcart-backend/api/responses"
	"github.com/smartcart/smartcart-backend/api/validators"
	"github.com/smartcart/smartcart-backend/internal/catalog"
	"github.com/smartcart/smartcart-backend/internal/recipes"
	"github.com/smartcart/smartcart-backend/internal/users"
	pkgerrors "github.com/smartcart/smartcart-backend/pkg/errors"
	"github.com/smartcart/smartcart-backend/pkg/logger"
)

// ListRecipes returns the recipes carrying every tag in ?tags=.
func ListRecipes(svc recipes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipe service unavailable"))
			return
		}

		tags, err := users.ParsePreferences(validators.ParseQueryList(r, "tags"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, svc.List(tags))
	}
}

// GetRecipe returns a recipe annotated against the shopper's preferences.
func GetRecipe(svc recipes.Service, prefs preferenceReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipe service unavailable"))
			return
		}
		sess, ok := sessionFrom(w, r, logg)
		if !ok {
			return
		}

		active, err := shopperPreferences(r.Context(), sess, prefs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Get(recipeIDParam(r), active)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// AddRecipeToCart adds every ingredient compatible with the shopper's
// preferences to the session's cart.
func AddRecipeToCart(svc recipes.Service, prefs preferenceReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipe service unavailable"))
			return
		}
		sess, ok := sessionFrom(w, r, logg)
		if !ok {
			return
		}

		active, err := shopperPreferences(r.Context(), sess, prefs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		add := func(ctx context.Context, p catalog.Product, qty int) error {
			_, err := sess.Cart.Add(ctx, p, qty)
			return err
		}
		summary, err := svc.AddToCart(r.Context(), recipeIDParam(r), active, add)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, cartError(err))
			return
		}
		snap, err := sess.Cart.Snapshot(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, cartError(err))
			return
		}
		responses.WriteSuccess(w, map[string]any{"summary": summary, "cart": snap})
	}
}

func recipeIDParam(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "id"))
}
