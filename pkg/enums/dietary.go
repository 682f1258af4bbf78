package enums

import (
	"fmt"
	"strings"
)

// DietaryTag is a restriction a shopper follows or a recipe satisfies.
type DietaryTag string

const (
	DietaryVegetarian  DietaryTag = "vegetarian"
	DietaryVegan       DietaryTag = "vegan"
	DietaryGlutenFree  DietaryTag = "gluten-free"
	DietaryDairyFree   DietaryTag = "dairy-free"
	DietaryNutFree     DietaryTag = "nut-free"
	DietaryPescatarian DietaryTag = "pescatarian"
	DietaryEggFree     DietaryTag = "egg-free"
	DietaryKeto        DietaryTag = "keto"
	DietaryPaleo       DietaryTag = "paleo"
	DietaryLowCarb     DietaryTag = "low-carb"
)

// keto, paleo and low-carb are recipe labels with no conflict entry.
var validDietaryTags = []DietaryTag{
	DietaryVegetarian,
	DietaryVegan,
	DietaryGlutenFree,
	DietaryDairyFree,
	DietaryNutFree,
	DietaryPescatarian,
	DietaryEggFree,
	DietaryKeto,
	DietaryPaleo,
	DietaryLowCarb,
}

func (d DietaryTag) String() string {
	return string(d)
}

func (d DietaryTag) IsValid() bool {
	for _, candidate := range validDietaryTags {
		if candidate == d {
			return true
		}
	}
	return false
}

// DietaryTags lists every known tag in display order.
func DietaryTags() []DietaryTag {
	out := make([]DietaryTag, len(validDietaryTags))
	copy(out, validDietaryTags)
	return out
}

func ParseDietaryTag(value string) (DietaryTag, error) {
	tag := DietaryTag(strings.ToLower(strings.TrimSpace(value)))
	if tag.IsValid() {
		return tag, nil
	}
	return "", fmt.Errorf("invalid dietary tag %q", value)
}

// DietaryFlag marks an ingredient as containing a restricted component.
type DietaryFlag string

const (
	ContainsMeat   DietaryFlag = "contains-meat"
	ContainsFish   DietaryFlag = "contains-fish"
	ContainsDairy  DietaryFlag = "contains-dairy"
	ContainsEgg    DietaryFlag = "contains-egg"
	ContainsHoney  DietaryFlag = "contains-honey"
	ContainsGluten DietaryFlag = "contains-gluten"
	ContainsNuts   DietaryFlag = "contains-nuts"
)

func (f DietaryFlag) String() string {
	return string(f)
}
