package cart

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/smartcart/smartcart-backend/internal/catalog"
)

// Item is one cart line. A cart holds at most one item per product.
type Item struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Snapshot is a read-only view of a cart.
type Snapshot struct {
	Items         []Item          `json:"items"`
	TotalItems    int             `json:"total_items"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Authenticated bool            `json:"authenticated"`
}

func snapshotOf(items []Item, authenticated bool) Snapshot {
	out := Snapshot{
		Items:         make([]Item, len(items)),
		TotalPrice:    decimal.Zero,
		Authenticated: authenticated,
	}
	copy(out.Items, items)
	for _, it := range items {
		out.TotalItems += it.Quantity
		out.TotalPrice = out.TotalPrice.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return out
}

// capQuantity bounds qty by stock when stock is known.
func capQuantity(qty int, p catalog.Product) int {
	if p.QuantityInStock > 0 && qty > p.QuantityInStock {
		return p.QuantityInStock
	}
	return qty
}

func indexOf(items []Item, p catalog.Product) int {
	for i, it := range items {
		if it.Product.Same(p) {
			return i
		}
	}
	return -1
}

func indexOfRef(items []Item, ref string) int {
	for i, it := range items {
		if it.Product.Matches(ref) {
			return i
		}
	}
	return -1
}

// addItem increments the existing item for p or appends a new one.
// appended reports which of the two happened.
func addItem(items []Item, p catalog.Product, qty int) (out []Item, appended bool) {
	if i := indexOf(items, p); i >= 0 {
		items[i].Quantity = capQuantity(items[i].Quantity+qty, items[i].Product)
		return items, false
	}
	return append(items, Item{Product: p, Quantity: capQuantity(qty, p)}), true
}

func removeAt(items []Item, i int) []Item {
	return append(items[:i:i], items[i+1:]...)
}

// mergeRemote folds the remote rows into local. Local quantities win;
// remote-only products are appended in remote order at quantity 1. Further
// rows for the same remote-only product add one unit each, the same as an
// insert arriving on the change feed, so a list scanned twice loads as 2.
func mergeRemote(local []Item, remote []catalog.Product) []Item {
	localCount := len(local)
	for _, p := range remote {
		i := indexOf(local, p)
		switch {
		case i < 0:
			local = append(local, Item{Product: p, Quantity: 1})
		case i >= localCount:
			local[i].Quantity++
		}
	}
	return local
}

type storedItem struct {
	Product  json.RawMessage `json:"product"`
	Quantity int             `json:"quantity"`
}

// decodeItems parses a stored cart. Any malformed product, non-positive
// quantity or duplicate product rejects the whole payload.
func decodeItems(data []byte) ([]Item, error) {
	var raw []storedItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	items := make([]Item, 0, len(raw))
	for i, r := range raw {
		p, err := catalog.DecodeProduct(r.Product)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if r.Quantity <= 0 {
			return nil, fmt.Errorf("item %d: quantity %d", i, r.Quantity)
		}
		if indexOf(items, p) >= 0 {
			return nil, fmt.Errorf("item %d: duplicate product %s", i, p.Ref())
		}
		items = append(items, Item{Product: p, Quantity: r.Quantity})
	}
	return items, nil
}

func encodeItems(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(items)
}
