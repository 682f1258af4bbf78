package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/smartcart/smartcart-backend/api/middleware"
	"github.com/smartcart/smartcart-backend/api/responses"
	"github.com/smartcart/smartcart-backend/internal/cart"
	"github.com/smartcart/smartcart-backend/internal/storefront"
	"github.com/smartcart/smartcart-backend/pkg/enums"
	pkgerrors "github.com/smartcart/smartcart-backend/pkg/errors"
	"github.com/smartcart/smartcart-backend/pkg/logger"
)

// preferenceReader is the slice of users.Service the storefront reads.
type preferenceReader interface {
	Preferences(ctx context.Context, id uuid.UUID) ([]enums.DietaryTag, error)
}

func sessionFrom(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (*storefront.Session, bool) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "storefront session missing"))
		return nil, false
	}
	return sess, true
}

// accountID returns the signed-in account of r.
func accountID(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (uuid.UUID, bool) {
	info := middleware.IdentityFromContext(r.Context())
	if info == nil || info.Identity.AccountID == uuid.Nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required"))
		return uuid.Nil, false
	}
	return info.Identity.AccountID, true
}

// shopperPreferences returns the dietary preferences of a signed-in shopper.
// Guests and owners have none.
func shopperPreferences(ctx context.Context, sess *storefront.Session, prefs preferenceReader) ([]enums.DietaryTag, error) {
	if prefs == nil || sess.State() != enums.SessionShopper {
		return nil, nil
	}
	info := middleware.IdentityFromContext(ctx)
	if info == nil {
		return nil, nil
	}
	return prefs.Preferences(ctx, info.Identity.AccountID)
}

// cartError maps engine errors to API errors. A closed engine means the
// session was evicted mid-request; the client retries against a fresh one.
func cartError(err error) error {
	if errors.Is(err, cart.ErrClosed) || errors.Is(err, storefront.ErrClosed) {
		return pkgerrors.Wrap(pkgerrors.CodeBusy, err, "storefront session restarting")
	}
	return err
}
