package recipes

import (
	"context"
	"fmt"
	"strings"

	"github.com/smartcart/smartcart-backend/internal/catalog"
	"github.com/smartcart/smartcart-backend/internal/dietary"
	"github.com/smartcart/smartcart-backend/pkg/enums"
)

// AdderFunc puts quantity units of a product into the shopper's cart.
type AdderFunc func(ctx context.Context, product catalog.Product, quantity int) error

// ProductLookup resolves an ingredient's product reference.
type ProductLookup interface {
	ProductByRef(ctx context.Context, ref string) (catalog.Product, error)
}

// Summary reports what AddCompatible did with each ingredient.
type Summary struct {
	Added       []string `json:"added"`
	Skipped     []string `json:"skipped"`
	Unavailable []string `json:"unavailable"`
	Message     string   `json:"message"`
}

// AddCompatible adds one unit of every recipe ingredient that does not
// conflict with prefs. Ingredients without a sellable product are reported
// as unavailable. An adder failure aborts the walk.
func AddCompatible(ctx context.Context, r Recipe, prefs []enums.DietaryTag, add AdderFunc, products ProductLookup) (Summary, error) {
	summary := Summary{Added: []string{}, Skipped: []string{}, Unavailable: []string{}}
	for _, ing := range r.Ingredients {
		if dietary.Conflicts(ing.matcherView(), prefs) {
			summary.Skipped = append(summary.Skipped, ing.Name)
			continue
		}
		if ing.ProductID == "" {
			summary.Unavailable = append(summary.Unavailable, ing.Name)
			continue
		}
		product, err := products.ProductByRef(ctx, ing.ProductID)
		if err != nil {
			summary.Unavailable = append(summary.Unavailable, ing.Name)
			continue
		}
		if err := add(ctx, product, 1); err != nil {
			return summary, fmt.Errorf("add %s: %w", ing.Name, err)
		}
		summary.Added = append(summary.Added, ing.Name)
	}
	summary.Message = summary.message()
	return summary, nil
}

func (s Summary) message() string {
	var msg string
	switch {
	case len(s.Skipped) == 0 && len(s.Unavailable) == 0:
		msg = fmt.Sprintf("All %d ingredients added to your cart", len(s.Added))
	case len(s.Skipped) == 0:
		msg = fmt.Sprintf("Added %d ingredients to your cart", len(s.Added))
	default:
		msg = fmt.Sprintf("Added %d ingredients. Skipped %d due to your dietary preferences: %s",
			len(s.Added), len(s.Skipped), strings.Join(s.Skipped, ", "))
	}
	if len(s.Unavailable) > 0 {
		msg += fmt.Sprintf(". Not sold in store: %s", strings.Join(s.Unavailable, ", "))
	}
	return msg
}
