package recipes

import (
	"context"
	"fmt"

	"github.com/smartcart/smartcart-backend/pkg/enums"
	pkgerrors "github.com/smartcart/smartcart-backend/pkg/errors"
)

// Detail is a recipe annotated for one shopper.
type Detail struct {
	Recipe
	Annotated []AnnotatedIngredient `json:"annotated_ingredients"`
}

// Service exposes the recipe catalog.
type Service interface {
	List(tags []enums.DietaryTag) []Recipe
	Get(id string, prefs []enums.DietaryTag) (Detail, error)
	AddToCart(ctx context.Context, id string, prefs []enums.DietaryTag, add AdderFunc) (Summary, error)
}

type service struct {
	recipes  []Recipe
	products ProductLookup
}

func NewService(products ProductLookup) (Service, error) {
	if products == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	return &service{recipes: Builtin(), products: products}, nil
}

func (s *service) List(tags []enums.DietaryTag) []Recipe {
	return Filter(s.recipes, tags)
}

func (s *service) Get(id string, prefs []enums.DietaryTag) (Detail, error) {
	r, ok := Find(s.recipes, id)
	if !ok {
		return Detail{}, pkgerrors.New(pkgerrors.CodeNotFound, "recipe not found")
	}
	return Detail{Recipe: r, Annotated: Annotate(r, prefs)}, nil
}

func (s *service) AddToCart(ctx context.Context, id string, prefs []enums.DietaryTag, add AdderFunc) (Summary, error) {
	r, ok := Find(s.recipes, id)
	if !ok {
		return Summary{}, pkgerrors.New(pkgerrors.CodeNotFound, "recipe not found")
	}
	if add == nil {
		return Summary{}, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable")
	}
	return AddCompatible(ctx, r, prefs, add, s.products)
}
