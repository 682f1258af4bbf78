// Package inventory is the owner dashboard's editable product working copy.
// Edits never reach the products table; Reset reseeds from it.
package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smartcart/smartcart-backend/internal/catalog"
	pkgerrors "github.com/smartcart/smartcart-backend/pkg/errors"
	"github.com/smartcart/smartcart-backend/pkg/logger"
)

// ProductInput creates a working-copy product. ID is generated when empty.
type ProductInput struct {
	ID              string          `json:"id"`
	BarcodeID       string          `json:"barcode_id"`
	Name            string          `json:"name" validate:"required"`
	Description     string          `json:"description"`
	ImageURL        string          `json:"image_url"`
	Category        string          `json:"category" validate:"required"`
	Subcategory     string          `json:"subcategory"`
	Aisle           string          `json:"aisle"`
	Price           decimal.Decimal `json:"price"`
	QuantityInStock int             `json:"quantity_in_stock" validate:"gte=0"`
	Popular         bool            `json:"popular"`
}

// ProductPatch changes only the fields that are set.
type ProductPatch struct {
	Name            *string          `json:"name,omitempty"`
	Description     *string          `json:"description,omitempty"`
	ImageURL        *string          `json:"image_url,omitempty"`
	Category        *string          `json:"category,omitempty"`
	Subcategory     *string          `json:"subcategory,omitempty"`
	Aisle           *string          `json:"aisle,omitempty"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	QuantityInStock *int             `json:"quantity_in_stock,omitempty" validate:"omitempty,gte=0"`
	Popular         *bool            `json:"popular,omitempty"`
}

// Source supplies the products a working copy is seeded from.
type Source interface {
	Remote(ctx context.Context) ([]catalog.Product, error)
}

// Editor edits one working copy per owner.
type Editor interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]catalog.Product, error)
	Get(ctx context.Context, ownerID uuid.UUID, id string) (catalog.Product, error)
	Create(ctx context.Context, ownerID uuid.UUID, in ProductInput) (catalog.Product, error)
	Update(ctx context.Context, ownerID uuid.UUID, id string, patch ProductPatch) (catalog.Product, error)
	Delete(ctx context.Context, ownerID uuid.UUID, id string) error
	Reset(ctx context.Context, ownerID uuid.UUID) ([]catalog.Product, error)
	Analytics(ctx context.Context, ownerID uuid.UUID) (Analytics, error)
}

type editor struct {
	source    Source
	store     Store
	threshold int
	logg      *logger.Logger

	// serializes load-modify-save per process
	mu sync.Mutex
}

func NewEditor(source Source, store Store, lowStockThreshold int, logg *logger.Logger) (Editor, error) {
	if source == nil {
		return nil, fmt.Errorf("product source required")
	}
	if store == nil {
		return nil, fmt.Errorf("inventory store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &editor{source: source, store: store, threshold: lowStockThreshold, logg: logg}, nil
}

func (e *editor) List(ctx context.Context, ownerID uuid.UUID) ([]catalog.Product, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.load(ctx, ownerID)
}

func (e *editor) Get(ctx context.Context, ownerID uuid.UUID, id string) (catalog.Product, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	products, err := e.load(ctx, ownerID)
	if err != nil {
		return catalog.Product{}, err
	}
	i := find(products, id)
	if i < 0 {
		return catalog.Product{}, notFound(id)
	}
	return products[i], nil
}

func (e *editor) Create(ctx context.Context, ownerID uuid.UUID, in ProductInput) (catalog.Product, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	products, err := e.load(ctx, ownerID)
	if err != nil {
		return catalog.Product{}, err
	}

	p := catalog.Product{
		ID:              strings.TrimSpace(in.ID),
		BarcodeID:       strings.TrimSpace(in.BarcodeID),
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		ImageURL:        in.ImageURL,
		Category:        strings.TrimSpace(in.Category),
		Subcategory:     strings.TrimSpace(in.Subcategory),
		Aisle:           strings.TrimSpace(in.Aisle),
		Price:           in.Price,
		QuantityInStock: in.QuantityInStock,
		Popular:         in.Popular,
	}
	if p.ID == "" {
		p.ID = nextID(products)
	}
	if p.BarcodeID == "" {
		p.BarcodeID = p.ID
	}
	if err := validate(p); err != nil {
		return catalog.Product{}, err
	}
	for _, existing := range products {
		if existing.Same(p) {
			return catalog.Product{}, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("product %s already exists", p.ID))
		}
	}

	products = append(products, p)
	if err := e.save(ctx, ownerID, products); err != nil {
		return catalog.Product{}, err
	}
	return p, nil
}

func (e *editor) Update(ctx context.Context, ownerID uuid.UUID, id string, patch ProductPatch) (catalog.Product, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	products, err := e.load(ctx, ownerID)
	if err != nil {
		return catalog.Product{}, err
	}
	i := find(products, id)
	if i < 0 {
		return catalog.Product{}, notFound(id)
	}

	p := products[i]
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}
	if patch.Category != nil {
		p.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Subcategory != nil {
		p.Subcategory = strings.TrimSpace(*patch.Subcategory)
	}
	if patch.Aisle != nil {
		p.Aisle = strings.TrimSpace(*patch.Aisle)
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.QuantityInStock != nil {
		p.QuantityInStock = *patch.QuantityInStock
	}
	if patch.Popular != nil {
		p.Popular = *patch.Popular
	}
	if err := validate(p); err != nil {
		return catalog.Product{}, err
	}

	products[i] = p
	if err := e.save(ctx, ownerID, products); err != nil {
		return catalog.Product{}, err
	}
	return p, nil
}

func (e *editor) Delete(ctx context.Context, ownerID uuid.UUID, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	products, err := e.load(ctx, ownerID)
	if err != nil {
		return err
	}
	i := find(products, id)
	if i < 0 {
		return notFound(id)
	}
	products = append(products[:i], products[i+1:]...)
	return e.save(ctx, ownerID, products)
}

func (e *editor) Reset(ctx context.Context, ownerID uuid.UUID) ([]catalog.Product, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.Clear(ctx, ownerID.String()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear inventory")
	}
	return e.load(ctx, ownerID)
}

func (e *editor) Analytics(ctx context.Context, ownerID uuid.UUID) (Analytics, error) {
	products, err := e.List(ctx, ownerID)
	if err != nil {
		return Analytics{}, err
	}
	return Analyze(products, e.threshold), nil
}

// load returns the owner's working copy, seeding it from the source on first
// use. An unreadable copy is discarded and reseeded.
func (e *editor) load(ctx context.Context, ownerID uuid.UUID) ([]catalog.Product, error) {
	data, err := e.store.Load(ctx, ownerID.String())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory")
	}
	if data != nil {
		var products []catalog.Product
		if err := json.Unmarshal(data, &products); err == nil {
			return products, nil
		}
		e.logg.Warn(e.logg.WithField(ctx, "owner_id", ownerID.String()), "inventory.working_copy_corrupt")
	}

	products, err := e.source.Remote(ctx)
	if err != nil {
		return nil, err
	}
	if err := e.save(ctx, ownerID, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (e *editor) save(ctx context.Context, ownerID uuid.UUID, products []catalog.Product) error {
	if products == nil {
		products = []catalog.Product{}
	}
	data, err := json.Marshal(products)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode inventory")
	}
	if err := e.store.Save(ctx, ownerID.String(), data); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save inventory")
	}
	return nil
}

func find(products []catalog.Product, id string) int {
	for i, p := range products {
		if p.Matches(id) {
			return i
		}
	}
	return -1
}

// nextID continues the numeric id sequence of the seed catalog.
func nextID(products []catalog.Product) string {
	highest := 0
	for _, p := range products {
		if n, err := strconv.Atoi(p.ID); err == nil && n > highest {
			highest = n
		}
	}
	return strconv.Itoa(highest + 1)
}

func validate(p catalog.Product) error {
	if p.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := p.Validate(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	return nil
}

func notFound(id string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", id))
}
