package dietary

import "github.com/smartcart/smartcart-backend/pkg/enums"

// substitutions maps a preference to replacements keyed by exact ingredient name.
var substitutions = map[enums.DietaryTag]map[string]string{
	enums.DietaryVegan: {
		"Whole Milk":       "Oat Milk",
		"Butter":           "Extra Virgin Olive Oil",
		"Large Eggs":       "Firm Tofu",
		"Honey":            "Maple Syrup",
		"Parmesan Cheese":  "Nutritional Yeast",
		"Fresh Mozzarella": "Cashew Mozzarella",
		"Greek Yogurt":     "Coconut Yogurt",
		"Chicken Breast":   "Firm Tofu",
		"Ground Beef":      "Black Beans",
		"Salmon Fillet":    "Marinated Tofu",
	},
	enums.DietaryVegetarian: {
		"Chicken Breast": "Firm Tofu",
		"Ground Beef":    "Black Beans",
		"Salmon Fillet":  "Marinated Tofu",
	},
	enums.DietaryPescatarian: {
		"Chicken Breast": "Salmon Fillet",
		"Ground Beef":    "Salmon Fillet",
	},
	enums.DietaryGlutenFree: {
		"Spaghetti":       "Rice Noodles",
		"Sourdough Bread": "Gluten-Free Bread",
		"Soy Sauce":       "Tamari",
	},
	enums.DietaryDairyFree: {
		"Whole Milk":       "Oat Milk",
		"Butter":           "Extra Virgin Olive Oil",
		"Parmesan Cheese":  "Nutritional Yeast",
		"Fresh Mozzarella": "Cashew Mozzarella",
		"Greek Yogurt":     "Coconut Yogurt",
	},
	enums.DietaryNutFree: {
		"Pine Nuts": "Sunflower Seeds",
	},
	enums.DietaryEggFree: {
		"Large Eggs": "Flax Egg",
	},
}

// Substitution returns the first replacement for ing found while walking
// prefs in order.
func Substitution(ing Ingredient, prefs []enums.DietaryTag) (string, bool) {
	for _, pref := range prefs {
		if sub, ok := substitutions[pref][ing.Name]; ok {
			return sub, true
		}
	}
	return "", false
}
