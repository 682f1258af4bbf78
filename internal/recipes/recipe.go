package recipes

import (
	"strings"

	"github.com/smartcart/smartcart-backend/internal/dietary"
	"github.com/smartcart/smartcart-backend/pkg/enums"
)

// Recipe is a static storefront recipe.
type Recipe struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	ImageURL     string             `json:"image_url"`
	PrepMinutes  int                `json:"prep_minutes"`
	DietaryTags  []enums.DietaryTag `json:"dietary_tags"`
	Ingredients  []Ingredient       `json:"ingredients"`
	Instructions []string           `json:"instructions"`
}

// Ingredient is one line of a recipe. ProductID references the catalog and
// is empty for ingredients the store does not sell.
type Ingredient struct {
	Name         string              `json:"name"`
	Quantity     string              `json:"quantity"`
	ProductID    string              `json:"product_id,omitempty"`
	DietaryFlags []enums.DietaryFlag `json:"dietary_flags,omitempty"`
}

func (i Ingredient) matcherView() dietary.Ingredient {
	return dietary.Ingredient{Name: i.Name, Flags: i.DietaryFlags}
}

// HasTag reports whether the recipe carries tag.
func (r Recipe) HasTag(tag enums.DietaryTag) bool {
	for _, t := range r.DietaryTags {
		if t == tag {
			return true
		}
	}
	return false
}

// Filter keeps the recipes whose tags include every tag in active. An empty
// active set matches everything.
func Filter(recipes []Recipe, active []enums.DietaryTag) []Recipe {
	out := make([]Recipe, 0, len(recipes))
outer:
	for _, r := range recipes {
		for _, tag := range active {
			if !r.HasTag(tag) {
				continue outer
			}
		}
		out = append(out, r)
	}
	return out
}

// Find returns the recipe with id from recipes.
func Find(recipes []Recipe, id string) (Recipe, bool) {
	id = strings.TrimSpace(id)
	for _, r := range recipes {
		if r.ID == id {
			return r, true
		}
	}
	return Recipe{}, false
}

// AnnotatedIngredient is an ingredient as seen by a shopper with preferences.
type AnnotatedIngredient struct {
	Ingredient
	Conflict         bool                `json:"conflict"`
	ConflictingFlags []enums.DietaryFlag `json:"conflicting_flags,omitempty"`
	Substitute       string              `json:"substitute,omitempty"`
}

// Annotate marks each ingredient of r that conflicts with prefs and attaches
// the first known substitute.
func Annotate(r Recipe, prefs []enums.DietaryTag) []AnnotatedIngredient {
	out := make([]AnnotatedIngredient, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		view := ing.matcherView()
		a := AnnotatedIngredient{Ingredient: ing}
		if flags := dietary.ConflictingFlags(view, prefs); len(flags) > 0 {
			a.Conflict = true
			a.ConflictingFlags = flags
			a.Substitute, _ = dietary.Substitution(view, prefs)
		}
		out = append(out, a)
	}
	return out
}
