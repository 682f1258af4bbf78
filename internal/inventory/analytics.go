package inventory

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/smartcart/smartcart-backend/internal/catalog"
)

const uncategorized = "Uncategorized"

// CategoryTotal aggregates one category of the working copy.
type CategoryTotal struct {
	Category string          `json:"category"`
	Products int             `json:"products"`
	Stock    int             `json:"stock"`
	Value    decimal.Decimal `json:"value"`
}

// Analytics is the dashboard summary of a working copy.
type Analytics struct {
	TotalProducts     int               `json:"total_products"`
	TotalStock        int               `json:"total_stock"`
	TotalValue        decimal.Decimal   `json:"total_value"`
	LowStockThreshold int               `json:"low_stock_threshold"`
	ByCategory        []CategoryTotal   `json:"by_category"`
	LowStock          []catalog.Product `json:"low_stock"`
	Popular           []catalog.Product `json:"popular"`
}

// Analyze computes stock and value per category (price x stock), products at
// or below threshold ordered by stock then name, and popular products.
func Analyze(products []catalog.Product, threshold int) Analytics {
	out := Analytics{
		TotalValue:        decimal.Zero,
		LowStockThreshold: threshold,
		ByCategory:        []CategoryTotal{},
		LowStock:          []catalog.Product{},
		Popular:           []catalog.Product{},
	}

	index := map[string]int{}
	for _, p := range products {
		value := p.Price.Mul(decimal.NewFromInt(int64(p.QuantityInStock)))
		out.TotalProducts++
		out.TotalStock += p.QuantityInStock
		out.TotalValue = out.TotalValue.Add(value)

		category := p.Category
		if category == "" {
			category = uncategorized
		}
		i, ok := index[category]
		if !ok {
			i = len(out.ByCategory)
			index[category] = i
			out.ByCategory = append(out.ByCategory, CategoryTotal{Category: category, Value: decimal.Zero})
		}
		out.ByCategory[i].Products++
		out.ByCategory[i].Stock += p.QuantityInStock
		out.ByCategory[i].Value = out.ByCategory[i].Value.Add(value)

		if p.QuantityInStock <= threshold {
			out.LowStock = append(out.LowStock, p)
		}
		if p.Popular {
			out.Popular = append(out.Popular, p)
		}
	}

	sort.SliceStable(out.ByCategory, func(i, j int) bool {
		return out.ByCategory[i].Category < out.ByCategory[j].Category
	})
	sort.SliceStable(out.LowStock, func(i, j int) bool {
		if out.LowStock[i].QuantityInStock != out.LowStock[j].QuantityInStock {
			return out.LowStock[i].QuantityInStock < out.LowStock[j].QuantityInStock
		}
		return out.LowStock[i].Name < out.LowStock[j].Name
	})
	return out
}
