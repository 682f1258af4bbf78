// Package dietary decides whether an ingredient is compatible with a
// shopper's dietary preferences and suggests replacements when it is not.
package dietary

import "github.com/smartcart/smartcart-backend/pkg/enums"

// Ingredient is the part of a recipe ingredient the matcher looks at.
type Ingredient struct {
	Name  string
	Flags []enums.DietaryFlag
}

var conflictTable = map[enums.DietaryTag][]enums.DietaryFlag{
	enums.DietaryVegetarian:  {enums.ContainsMeat, enums.ContainsFish},
	enums.DietaryVegan:       {enums.ContainsMeat, enums.ContainsFish, enums.ContainsDairy, enums.ContainsEgg, enums.ContainsHoney},
	enums.DietaryGlutenFree:  {enums.ContainsGluten},
	enums.DietaryDairyFree:   {enums.ContainsDairy},
	enums.DietaryNutFree:     {enums.ContainsNuts},
	enums.DietaryPescatarian: {enums.ContainsMeat},
	enums.DietaryEggFree:     {enums.ContainsEgg},
}

// Conflicts reports whether any of the ingredient's flags is restricted by
// one of prefs. Preferences without a conflict entry never conflict.
func Conflicts(ing Ingredient, prefs []enums.DietaryTag) bool {
	return len(ConflictingFlags(ing, prefs)) > 0
}

// ConflictingFlags returns the ingredient flags restricted by prefs, in the
// order they appear on the ingredient.
func ConflictingFlags(ing Ingredient, prefs []enums.DietaryTag) []enums.DietaryFlag {
	if len(ing.Flags) == 0 || len(prefs) == 0 {
		return nil
	}
	restricted := map[enums.DietaryFlag]bool{}
	for _, pref := range prefs {
		for _, flag := range conflictTable[pref] {
			restricted[flag] = true
		}
	}
	var out []enums.DietaryFlag
	for _, flag := range ing.Flags {
		if restricted[flag] {
			out = append(out, flag)
		}
	}
	return out
}
