package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/smartcart/smartcart-backend/api/responses"
	"github.com/smartcart/smartcart-backend/api/validators"
	"github.com/smartcart/smartcart-backend/internal/inventory"
	"github.com/smartcart/smartcart-backend/internal/scanner"
	"github.com/smartcart/smartcart-backend/internal/users"
	pkgerrors "github.com/smartcart/smartcart-backend/pkg/errors"
	"github.com/smartcart/smartcart-backend/pkg/logger"
	"github.com/smartcart/smartcart-backend/pkg/pagination"
)

const dashboardScanSource = "dashboard"

// ScanPublisher submits scans to the scanner topic. *scanner.Publisher satisfies it.
type ScanPublisher interface {
	Publish(ctx context.Context, scan scanner.Scan, source string) (string, error)
}

type scanRequest struct {
	RFIDTag string `json:"rfid_tag" validate:"required"`
	Barcode string `json:"barcode" validate:"required"`
}

// ListInventory returns the owner's working copy of the product catalog.
func ListInventory(editor inventory.Editor, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := accountID(w, r, logg)
		if !ok {
			return
		}
		products, err := editor.List(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func CreateInventoryProduct(editor inventory.Editor, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := accountID(w, r, logg)
		if !ok {
			return
		}

		var body inventory.ProductInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := editor.Create(r.Context(), owner, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, product)
	}
}

func UpdateInventoryProduct(editor inventory.Editor, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := accountID(w, r, logg)
		if !ok {
			return
		}

		var body inventory.ProductPatch
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := editor.Update(r.Context(), owner, inventoryIDParam(r), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func DeleteInventoryProduct(editor inventory.Editor, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := accountID(w, r, logg)
		if !ok {
			return
		}
		id := inventoryIDParam(r)
		if err := editor.Delete(r.Context(), owner, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"id": id, "status": "deleted"})
	}
}

// ResetInventory discards the owner's edits and reseeds from the products table.
func ResetInventory(editor inventory.Editor, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := accountID(w, r, logg)
		if !ok {
			return
		}
		products, err := editor.Reset(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func InventoryAnalytics(editor inventory.Editor, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := accountID(w, r, logg)
		if !ok {
			return
		}
		report, err := editor.Analytics(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// ListShoppers pages through the shoppers table, newest first.
func ListShoppers(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListShoppers(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// PublishScan submits a test scan to the scanner topic. The worker applies it
// like any cart reader's scan.
func PublishScan(pub ScanPublisher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pub == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "scanner publishing disabled"))
			return
		}

		var body scanRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pub.Publish(r.Context(), scanner.Scan{RFIDTag: body.RFIDTag, Barcode: body.Barcode}, dashboardScanSource)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"message_id": id})
	}
}

func inventoryIDParam(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "id"))
}
