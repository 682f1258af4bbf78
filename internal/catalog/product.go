package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smartcart/smartcart-backend/pkg/db/models"
)

// Product is the one canonical product shape used past the catalog boundary.
type Product struct {
	ID              string          `json:"id"`
	BarcodeID       string          `json:"barcode_id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	ImageURL        string          `json:"image_url"`
	Category        string          `json:"category"`
	Subcategory     string          `json:"subcategory"`
	Aisle           string          `json:"aisle"`
	Price           decimal.Decimal `json:"price"`
	QuantityInStock int             `json:"quantity_in_stock"`
	Popular         bool            `json:"popular"`
}

// Ref is the reference stored in shopping_list.product_id: the barcode when
// present, otherwise the id.
func (p Product) Ref() string {
	if p.BarcodeID != "" {
		return p.BarcodeID
	}
	return p.ID
}

// Same reports whether p and other identify the same product.
func (p Product) Same(other Product) bool {
	if p.ID != "" && p.ID == other.ID {
		return true
	}
	return p.BarcodeID != "" && p.BarcodeID == other.BarcodeID
}

// Matches reports whether ref names this product by id or barcode.
func (p Product) Matches(ref string) bool {
	ref = strings.TrimSpace(ref)
	return ref != "" && (ref == p.ID || ref == p.BarcodeID)
}

// FromModel converts a products row. Remote rows are keyed by barcode, so
// the row id fills both identifiers.
func FromModel(m models.Product) Product {
	return Product{
		ID:              m.ID,
		BarcodeID:       m.ID,
		Name:            m.Name,
		Description:     m.Description,
		ImageURL:        m.ImageURL,
		Category:        m.Category,
		Subcategory:     m.Subcategory,
		Aisle:           m.Aisle,
		Price:           m.Price,
		QuantityInStock: m.Stock,
		Popular:         m.Popular,
	}
}

// ToModel builds the products row for p, keyed by its reference.
func ToModel(p Product) models.Product {
	return models.Product{
		ID:          p.Ref(),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Subcategory: p.Subcategory,
		Stock:       p.QuantityInStock,
		Aisle:       p.Aisle,
		Popular:     p.Popular,
		ImageURL:    p.ImageURL,
	}
}

// rawProduct accepts every field spelling seen from older clients and the
// remote table export.
type rawProduct struct {
	ID             flexString      `json:"id"`
	BarcodeID      flexString      `json:"barcode_id"`
	BarcodeIDCamel flexString      `json:"barcodeId"`
	Name           string          `json:"name"`
	NameColumn     string          `json:"Product"`
	Description    string          `json:"description"`
	ImageURL       string          `json:"image_url"`
	ImageDash      string          `json:"image-url"`
	Image          string          `json:"image"`
	Category       string          `json:"category"`
	Subcategory    string          `json:"subcategory"`
	Aisle          flexString      `json:"aisle"`
	Price          decimal.Decimal `json:"price"`
	Stock          *int            `json:"quantity_in_stock"`
	StockCamel     *int            `json:"quantityInStock"`
	Popular        bool            `json:"popular"`
}

// DecodeProduct normalizes one product JSON object into the canonical shape.
func DecodeProduct(data []byte) (Product, error) {
	var raw rawProduct
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return Product{}, fmt.Errorf("decode product: %w", err)
	}

	p := Product{
		ID:          string(raw.ID),
		BarcodeID:   firstNonEmpty(string(raw.BarcodeID), string(raw.BarcodeIDCamel)),
		Name:        firstNonEmpty(raw.Name, raw.NameColumn),
		Description: raw.Description,
		ImageURL:    firstNonEmpty(raw.ImageURL, raw.ImageDash, raw.Image),
		Category:    raw.Category,
		Subcategory: raw.Subcategory,
		Aisle:       string(raw.Aisle),
		Price:       raw.Price,
		Popular:     raw.Popular,
	}
	switch {
	case raw.Stock != nil:
		p.QuantityInStock = *raw.Stock
	case raw.StockCamel != nil:
		p.QuantityInStock = *raw.StockCamel
	}
	return p, p.Validate()
}

// Validate checks the invariants every canonical product holds.
func (p Product) Validate() error {
	if p.ID == "" && p.BarcodeID == "" {
		return fmt.Errorf("product has no identity")
	}
	if p.QuantityInStock < 0 {
		return fmt.Errorf("product %s has negative stock", p.Ref())
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("product %s has negative price", p.Ref())
	}
	return nil
}

// flexString decodes either a JSON string or number into its string form.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*f = flexString(strconv.FormatInt(i, 10))
		return nil
	}
	*f = flexString(n.String())
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
