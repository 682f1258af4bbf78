package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/smartcart/smartcart-backend/api/responses"
	"github.com/smartcart/smartcart-backend/api/validators"
	"github.com/smartcart/smartcart-backend/internal/catalog"
	pkgerrors "github.com/smartcart/smartcart-backend/pkg/errors"
	"github.com/smartcart/smartcart-backend/pkg/logger"
)

const maxSearchLen = 100

// ListProducts serves the storefront catalog, filtered by category,
// subcategory, q and popular.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		q := r.URL.Query()
		filter := catalog.Filter{
			Category:    validators.SanitizeString(q.Get("category"), maxSearchLen),
			Subcategory: validators.SanitizeString(q.Get("subcategory"), maxSearchLen),
			Query:       validators.SanitizeString(q.Get("q"), maxSearchLen),
			PopularOnly: strings.EqualFold(strings.TrimSpace(q.Get("popular")), "true"),
		}
		responses.WriteSuccess(w, svc.List(r.Context(), filter))
	}
}

func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		product, err := svc.Get(r.Context(), strings.TrimSpace(chi.URLParam(r, "id")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func ListCategories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.Categories())
	}
}
