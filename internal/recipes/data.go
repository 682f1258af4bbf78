package recipes

import "github.com/smartcart/smartcart-backend/pkg/enums"

var (
	meat   = []enums.DietaryFlag{enums.ContainsMeat}
	fish   = []enums.DietaryFlag{enums.ContainsFish}
	dairy  = []enums.DietaryFlag{enums.ContainsDairy}
	egg    = []enums.DietaryFlag{enums.ContainsEgg}
	gluten = []enums.DietaryFlag{enums.ContainsGluten}
	nuts   = []enums.DietaryFlag{enums.ContainsNuts}
	honey  = []enums.DietaryFlag{enums.ContainsHoney}
)

var builtin = []Recipe{
	{
		ID:          "r1",
		Name:        "Caprese Salad",
		Description: "Tomatoes, fresh mozzarella and basil with olive oil.",
		ImageURL:    "/images/recipes/caprese.jpg",
		PrepMinutes: 10,
		DietaryTags: []enums.DietaryTag{enums.DietaryVegetarian, enums.DietaryGlutenFree, enums.DietaryNutFree, enums.DietaryEggFree, enums.DietaryLowCarb, enums.DietaryKeto, enums.DietaryPescatarian},
		Ingredients: []Ingredient{
			{Name: "Cherry Tomatoes", Quantity: "1 pint", ProductID: "5"},
			{Name: "Fresh Mozzarella", Quantity: "8 oz", ProductID: "13", DietaryFlags: dairy},
			{Name: "Fresh Basil", Quantity: "1 bunch", ProductID: "8"},
			{Name: "Extra Virgin Olive Oil", Quantity: "2 tbsp", ProductID: "25"},
		},
		Instructions: []string{"Halve the tomatoes.", "Tear the mozzarella and basil.", "Dress with olive oil and salt."},
	},
	{
		ID:          "r2",
		Name:        "Pesto Spaghetti",
		Description: "Basil pesto with toasted pine nuts and parmesan.",
		ImageURL:    "/images/recipes/pesto.jpg",
		PrepMinutes: 25,
		DietaryTags: []enums.DietaryTag{enums.DietaryVegetarian, enums.DietaryEggFree, enums.DietaryPescatarian},
		Ingredients: []Ingredient{
			{Name: "Spaghetti", Quantity: "1 lb", ProductID: "22", DietaryFlags: gluten},
			{Name: "Fresh Basil", Quantity: "2 bunches", ProductID: "8"},
			{Name: "Pine Nuts", Quantity: "1/3 cup", ProductID: "26", DietaryFlags: nuts},
			{Name: "Parmesan Cheese", Quantity: "1/2 cup", ProductID: "12", DietaryFlags: dairy},
			{Name: "Garlic", Quantity: "2 cloves", ProductID: "7"},
			{Name: "Extra Virgin Olive Oil", Quantity: "1/2 cup", ProductID: "25"},
		},
		Instructions: []string{"Cook the spaghetti.", "Blend basil, pine nuts, parmesan, garlic and oil.", "Toss pasta with pesto."},
	},
	{
		ID:          "r3",
		Name:        "Lemon Garlic Salmon",
		Description: "Pan-seared salmon with lemon and garlic butter.",
		ImageURL:    "/images/recipes/salmon.jpg",
		PrepMinutes: 20,
		DietaryTags: []enums.DietaryTag{enums.DietaryPescatarian, enums.DietaryGlutenFree, enums.DietaryNutFree, enums.DietaryEggFree, enums.DietaryKeto, enums.DietaryLowCarb},
		Ingredients: []Ingredient{
			{Name: "Salmon Fillet", Quantity: "1 lb", ProductID: "18", DietaryFlags: fish},
			{Name: "Lemons", Quantity: "2", ProductID: "3"},
			{Name: "Garlic", Quantity: "3 cloves", ProductID: "7"},
			{Name: "Butter", Quantity: "2 tbsp", ProductID: "15", DietaryFlags: dairy},
		},
		Instructions: []string{"Season the salmon.", "Sear skin side down for 4 minutes.", "Finish with lemon garlic butter."},
	},
	{
		ID:          "r4",
		Name:        "Black Bean Tacos",
		Description: "Spiced black beans in corn tortillas with avocado.",
		ImageURL:    "/images/recipes/tacos.jpg",
		PrepMinutes: 15,
		DietaryTags: []enums.DietaryTag{enums.DietaryVegan, enums.DietaryVegetarian, enums.DietaryGlutenFree, enums.DietaryDairyFree, enums.DietaryNutFree, enums.DietaryEggFree, enums.DietaryPescatarian},
		Ingredients: []Ingredient{
			{Name: "Black Beans", Quantity: "2 cans", ProductID: "30"},
			{Name: "Corn Tortillas", Quantity: "8", ProductID: "33"},
			{Name: "Avocado", Quantity: "2", ProductID: "2"},
			{Name: "Yellow Onion", Quantity: "1", ProductID: "6"},
			{Name: "Cumin", Quantity: "1 tsp"},
		},
		Instructions: []string{"Saute onion and beans with cumin.", "Warm the tortillas.", "Fill with beans and sliced avocado."},
	},
	{
		ID:          "r5",
		Name:        "Chicken Stir Fry",
		Description: "Chicken and spinach over rice noodles with soy sauce.",
		ImageURL:    "/images/recipes/stir-fry.jpg",
		PrepMinutes: 30,
		DietaryTags: []enums.DietaryTag{enums.DietaryDairyFree, enums.DietaryNutFree, enums.DietaryEggFree},
		Ingredients: []Ingredient{
			{Name: "Chicken Breast", Quantity: "1 lb", ProductID: "16", DietaryFlags: meat},
			{Name: "Rice Noodles", Quantity: "8 oz", ProductID: "23"},
			{Name: "Baby Spinach", Quantity: "5 oz", ProductID: "4"},
			{Name: "Soy Sauce", Quantity: "3 tbsp", ProductID: "31", DietaryFlags: gluten},
			{Name: "Garlic", Quantity: "2 cloves", ProductID: "7"},
		},
		Instructions: []string{"Slice and brown the chicken.", "Soak the noodles.", "Wilt spinach with garlic and soy, then toss everything."},
	},
	{
		ID:          "r6",
		Name:        "Quinoa Power Bowl",
		Description: "Quinoa, spinach, avocado and sunflower seeds.",
		ImageURL:    "/images/recipes/quinoa-bowl.jpg",
		PrepMinutes: 20,
		DietaryTags: []enums.DietaryTag{enums.DietaryVegan, enums.DietaryVegetarian, enums.DietaryGlutenFree, enums.DietaryDairyFree, enums.DietaryNutFree, enums.DietaryEggFree, enums.DietaryPescatarian},
		Ingredients: []Ingredient{
			{Name: "Quinoa", Quantity: "1 cup", ProductID: "24"},
			{Name: "Baby Spinach", Quantity: "2 cups", ProductID: "4"},
			{Name: "Avocado", Quantity: "1", ProductID: "2"},
			{Name: "Sunflower Seeds", Quantity: "1/4 cup", ProductID: "27"},
			{Name: "Lemons", Quantity: "1", ProductID: "3"},
		},
		Instructions: []string{"Cook the quinoa.", "Top with spinach, avocado and seeds.", "Squeeze lemon over the bowl."},
	},
	{
		ID:          "r7",
		Name:        "Honey Yogurt Parfait",
		Description: "Greek yogurt layered with berries and honey.",
		ImageURL:    "/images/recipes/parfait.jpg",
		PrepMinutes: 5,
		DietaryTags: []enums.DietaryTag{enums.DietaryVegetarian, enums.DietaryGlutenFree, enums.DietaryNutFree, enums.DietaryEggFree, enums.DietaryPescatarian},
		Ingredients: []Ingredient{
			{Name: "Greek Yogurt", Quantity: "2 cups", ProductID: "14", DietaryFlags: dairy},
			{Name: "Frozen Berry Mix", Quantity: "1 cup", ProductID: "34"},
			{Name: "Honey", Quantity: "2 tbsp", ProductID: "28", DietaryFlags: honey},
		},
		Instructions: []string{"Thaw the berries.", "Layer yogurt and berries.", "Drizzle with honey."},
	},
	{
		ID:          "r8",
		Name:        "Spinach Omelette",
		Description: "Fluffy eggs folded over spinach and parmesan.",
		ImageURL:    "/images/recipes/omelette.jpg",
		PrepMinutes: 10,
		DietaryTags: []enums.DietaryTag{enums.DietaryVegetarian, enums.DietaryGlutenFree, enums.DietaryNutFree, enums.DietaryKeto, enums.DietaryLowCarb, enums.DietaryPaleo, enums.DietaryPescatarian},
		Ingredients: []Ingredient{
			{Name: "Large Eggs", Quantity: "3", ProductID: "11", DietaryFlags: egg},
			{Name: "Baby Spinach", Quantity: "1 cup", ProductID: "4"},
			{Name: "Parmesan Cheese", Quantity: "2 tbsp", ProductID: "12", DietaryFlags: dairy},
			{Name: "Butter", Quantity: "1 tbsp", ProductID: "15", DietaryFlags: dairy},
		},
		Instructions: []string{"Whisk the eggs.", "Wilt spinach in butter.", "Pour in eggs, add parmesan and fold."},
	},
	{
		ID:          "r9",
		Name:        "Garlic Sourdough Toast",
		Description: "Toasted sourdough rubbed with garlic and olive oil.",
		ImageURL:    "/images/recipes/garlic-toast.jpg",
		PrepMinutes: 8,
		DietaryTags: []enums.DietaryTag{enums.DietaryVegan, enums.DietaryVegetarian, enums.DietaryDairyFree, enums.DietaryNutFree, enums.DietaryEggFree, enums.DietaryPescatarian},
		Ingredients: []Ingredient{
			{Name: "Sourdough Bread", Quantity: "4 slices", ProductID: "20", DietaryFlags: gluten},
			{Name: "Garlic", Quantity: "2 cloves", ProductID: "7"},
			{Name: "Extra Virgin Olive Oil", Quantity: "2 tbsp", ProductID: "25"},
		},
		Instructions: []string{"Toast the bread.", "Rub with cut garlic.", "Drizzle with olive oil."},
	},
}

// Builtin returns a copy of the storefront recipes.
func Builtin() []Recipe {
	out := make([]Recipe, len(builtin))
	copy(out, builtin)
	return out
}
