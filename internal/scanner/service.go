// Package scanner turns RFID cart scans into shopping_list rows.
package scanner

import (
	"context"
	"fmt"
	"strings"

	"github.com/smartcart/smartcart-backend/internal/catalog"
	"github.com/smartcart/smartcart-backend/internal/shoppinglist"
	"github.com/smartcart/smartcart-backend/pkg/db"
	"github.com/smartcart/smartcart-backend/pkg/db/models"
	pkgerrors "github.com/smartcart/smartcart-backend/pkg/errors"
	"github.com/smartcart/smartcart-backend/pkg/logger"
)

// Scan is one read from a cart's RFID reader.
type Scan struct {
	RFIDTag string `json:"rfid_tag" validate:"required"`
	Barcode string `json:"barcode" validate:"required"`
}

type shopperLookup interface {
	FindByRFID(ctx context.Context, tag string) (*models.Shopper, error)
}

type productLookup interface {
	ProductByRef(ctx context.Context, ref string) (catalog.Product, error)
}

// Service records scans. Every scan is a new row, so scanning the same item
// twice reaches the cart as two insert events.
type Service interface {
	HandleScan(ctx context.Context, scan Scan) (shoppinglist.Entry, error)
}

type service struct {
	shoppers shopperLookup
	products productLookup
	list     shoppinglist.Store
	logg     *logger.Logger
}

func NewService(shoppers shopperLookup, products productLookup, list shoppinglist.Store, logg *logger.Logger) (Service, error) {
	if shoppers == nil {
		return nil, fmt.Errorf("shopper lookup required")
	}
	if products == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	if list == nil {
		return nil, fmt.Errorf("shopping list store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{shoppers: shoppers, products: products, list: list, logg: logg}, nil
}

func (s *service) HandleScan(ctx context.Context, scan Scan) (shoppinglist.Entry, error) {
	tag := strings.TrimSpace(scan.RFIDTag)
	barcode := strings.TrimSpace(scan.Barcode)
	if tag == "" || barcode == "" {
		return shoppinglist.Entry{}, pkgerrors.New(pkgerrors.CodeValidation, "rfid_tag and barcode are required")
	}

	shopper, err := s.shoppers.FindByRFID(ctx, tag)
	if err != nil {
		if db.IsNotFound(err) {
			return shoppinglist.Entry{}, pkgerrors.New(pkgerrors.CodeNotFound, "no shopper paired with tag")
		}
		return shoppinglist.Entry{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup shopper by tag")
	}
	ctx = s.logg.WithShopperID(ctx, shopper.ID.String())

	product, err := s.products.ProductByRef(ctx, barcode)
	if err != nil {
		return shoppinglist.Entry{}, err
	}

	entry, err := s.list.Insert(ctx, shopper.ID, product.Ref(), true)
	if err != nil {
		return shoppinglist.Entry{}, err
	}
	s.logg.Info(s.logg.WithField(ctx, "product_ref", product.Ref()), "scanner.item_scanned")
	return entry, nil
}
