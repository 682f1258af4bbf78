package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/smartcart/smartcart-backend/api/responses"
	"github.com/smartcart/smartcart-backend/api/validators"
	"github.com/smartcart/smartcart-backend/internal/cart"
	"github.com/smartcart/smartcart-backend/internal/catalog"
	"github.com/smartcart/smartcart-backend/internal/storefront"
	"github.com/smartcart/smartcart-backend/pkg/logger"
)

type addCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// cartResponse pairs a mutation's notice with the cart it produced.
type cartResponse struct {
	Notice *cart.Notice  `json:"notice,omitempty"`
	Cart   cart.Snapshot `json:"cart"`
}

func GetCart(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionFrom(w, r, logg)
		if !ok {
			return
		}
		snap, err := sess.Cart.Snapshot(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, cartError(err))
			return
		}
		responses.WriteSuccess(w, cartResponse{Cart: snap})
	}
}

// AddCartItem adds a catalog product to the session's cart.
func AddCartItem(products catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionFrom(w, r, logg)
		if !ok {
			return
		}

		var body addCartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := products.ProductByRef(r.Context(), body.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notice, err := sess.Cart.Add(r.Context(), product, body.Quantity)
		writeCartMutation(w, r, logg, sess, notice, err)
	}
}

// UpdateCartItem sets an item's quantity; zero removes the item.
func UpdateCartItem(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionFrom(w, r, logg)
		if !ok {
			return
		}

		var body updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notice, err := sess.Cart.UpdateQuantity(r.Context(), productIDParam(r), body.Quantity)
		writeCartMutation(w, r, logg, sess, notice, err)
	}
}

func RemoveCartItem(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionFrom(w, r, logg)
		if !ok {
			return
		}
		notice, err := sess.Cart.Remove(r.Context(), productIDParam(r))
		writeCartMutation(w, r, logg, sess, notice, err)
	}
}

func ClearCart(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionFrom(w, r, logg)
		if !ok {
			return
		}
		notice, err := sess.Cart.Clear(r.Context())
		writeCartMutation(w, r, logg, sess, notice, err)
	}
}

func productIDParam(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "productId"))
}

func writeCartMutation(w http.ResponseWriter, r *http.Request, logg *logger.Logger, sess *storefront.Session, notice cart.Notice, err error) {
	if err != nil {
		responses.WriteError(r.Context(), logg, w, cartError(err))
		return
	}
	snap, err := sess.Cart.Snapshot(r.Context())
	if err != nil {
		responses.WriteError(r.Context(), logg, w, cartError(err))
		return
	}
	responses.WriteSuccess(w, cartResponse{Notice: &notice, Cart: snap})
}
