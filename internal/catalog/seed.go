package catalog

import "github.com/shopspring/decimal"

// Category is one node of the two-level storefront taxonomy.
type Category struct {
	Name          string   `json:"name"`
	Subcategories []string `json:"subcategories"`
}

var taxonomy = []Category{
	{Name: "Produce", Subcategories: []string{"Fruits", "Vegetables", "Herbs"}},
	{Name: "Dairy & Eggs", Subcategories: []string{"Milk", "Cheese", "Eggs", "Yogurt", "Plant-Based"}},
	{Name: "Meat & Seafood", Subcategories: []string{"Poultry", "Beef", "Seafood"}},
	{Name: "Bakery", Subcategories: []string{"Bread", "Gluten-Free"}},
	{Name: "Pantry", Subcategories: []string{"Pasta & Grains", "Oils & Vinegars", "Nuts & Seeds", "Sweeteners", "Canned Goods", "Sauces"}},
	{Name: "Frozen", Subcategories: []string{"Meals", "Desserts"}},
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var seed = []Product{
	{ID: "1", BarcodeID: "0001", Name: "Bananas", Description: "Ripe yellow bananas, sold per bunch.", ImageURL: "/images/products/bananas.jpg", Category: "Produce", Subcategory: "Fruits", Aisle: "1", Price: price("1.29"), QuantityInStock: 120, Popular: true},
	{ID: "2", BarcodeID: "0002", Name: "Avocado", Description: "Hass avocado.", ImageURL: "/images/products/avocado.jpg", Category: "Produce", Subcategory: "Fruits", Aisle: "1", Price: price("1.99"), QuantityInStock: 60, Popular: true},
	{ID: "3", BarcodeID: "0003", Name: "Lemons", Description: "Fresh lemons.", ImageURL: "/images/products/lemons.jpg", Category: "Produce", Subcategory: "Fruits", Aisle: "1", Price: price("0.69"), QuantityInStock: 80},
	{ID: "4", BarcodeID: "0004", Name: "Baby Spinach", Description: "Pre-washed baby spinach, 5 oz.", ImageURL: "/images/products/spinach.jpg", Category: "Produce", Subcategory: "Vegetables", Aisle: "2", Price: price("3.49"), QuantityInStock: 40},
	{ID: "5", BarcodeID: "0005", Name: "Cherry Tomatoes", Description: "Sweet cherry tomatoes, 1 pint.", ImageURL: "/images/products/cherry-tomatoes.jpg", Category: "Produce", Subcategory: "Vegetables", Aisle: "2", Price: price("2.99"), QuantityInStock: 45},
	{ID: "6", BarcodeID: "0006", Name: "Yellow Onion", Description: "Yellow cooking onion.", ImageURL: "/images/products/onion.jpg", Category: "Produce", Subcategory: "Vegetables", Aisle: "2", Price: price("0.89"), QuantityInStock: 100},
	{ID: "7", BarcodeID: "0007", Name: "Garlic", Description: "Whole garlic bulb.", ImageURL: "/images/products/garlic.jpg", Category: "Produce", Subcategory: "Vegetables", Aisle: "2", Price: price("0.59"), QuantityInStock: 90},
	{ID: "8", BarcodeID: "0008", Name: "Fresh Basil", Description: "Bunch of sweet basil.", ImageURL: "/images/products/basil.jpg", Category: "Produce", Subcategory: "Herbs", Aisle: "2", Price: price("2.49"), QuantityInStock: 25},
	{ID: "9", BarcodeID: "0009", Name: "Whole Milk", Description: "Whole milk, 1 gallon.", ImageURL: "/images/products/milk.jpg", Category: "Dairy & Eggs", Subcategory: "Milk", Aisle: "5", Price: price("3.99"), QuantityInStock: 50, Popular: true},
	{ID: "10", BarcodeID: "0010", Name: "Oat Milk", Description: "Unsweetened oat milk, half gallon.", ImageURL: "/images/products/oat-milk.jpg", Category: "Dairy & Eggs", Subcategory: "Plant-Based", Aisle: "5", Price: price("4.49"), QuantityInStock: 30},
	{ID: "11", BarcodeID: "0011", Name: "Large Eggs", Description: "Grade A large eggs, dozen.", ImageURL: "/images/products/eggs.jpg", Category: "Dairy & Eggs", Subcategory: "Eggs", Aisle: "5", Price: price("3.29"), QuantityInStock: 70, Popular: true},
	{ID: "12", BarcodeID: "0012", Name: "Parmesan Cheese", Description: "Aged parmesan wedge, 8 oz.", ImageURL: "/images/products/parmesan.jpg", Category: "Dairy & Eggs", Subcategory: "Cheese", Aisle: "5", Price: price("6.99"), QuantityInStock: 20},
	{ID: "13", BarcodeID: "0013", Name: "Fresh Mozzarella", Description: "Fresh mozzarella ball, 8 oz.", ImageURL: "/images/products/mozzarella.jpg", Category: "Dairy & Eggs", Subcategory: "Cheese", Aisle: "5", Price: price("4.99"), QuantityInStock: 18},
	{ID: "14", BarcodeID: "0014", Name: "Greek Yogurt", Description: "Plain Greek yogurt, 32 oz.", ImageURL: "/images/products/greek-yogurt.jpg", Category: "Dairy & Eggs", Subcategory: "Yogurt", Aisle: "5", Price: price("5.49"), QuantityInStock: 22},
	{ID: "15", BarcodeID: "0015", Name: "Butter", Description: "Unsalted butter, 1 lb.", ImageURL: "/images/products/butter.jpg", Category: "Dairy & Eggs", Subcategory: "Milk", Aisle: "5", Price: price("4.79"), QuantityInStock: 35},
	{ID: "16", BarcodeID: "0016", Name: "Chicken Breast", Description: "Boneless skinless chicken breast, per lb.", ImageURL: "/images/products/chicken-breast.jpg", Category: "Meat & Seafood", Subcategory: "Poultry", Aisle: "7", Price: price("5.99"), QuantityInStock: 30, Popular: true},
	{ID: "17", BarcodeID: "0017", Name: "Ground Beef", Description: "85% lean ground beef, 1 lb.", ImageURL: "/images/products/ground-beef.jpg", Category: "Meat & Seafood", Subcategory: "Beef", Aisle: "7", Price: price("6.49"), QuantityInStock: 25},
	{ID: "18", BarcodeID: "0018", Name: "Salmon Fillet", Description: "Atlantic salmon fillet, per lb.", ImageURL: "/images/products/salmon.jpg", Category: "Meat & Seafood", Subcategory: "Seafood", Aisle: "7", Price: price("11.99"), QuantityInStock: 12},
	{ID: "19", BarcodeID: "0019", Name: "Firm Tofu", Description: "Organic firm tofu, 14 oz.", ImageURL: "/images/products/tofu.jpg", Category: "Dairy & Eggs", Subcategory: "Plant-Based", Aisle: "5", Price: price("2.79"), QuantityInStock: 28},
	{ID: "20", BarcodeID: "0020", Name: "Sourdough Bread", Description: "Crusty sourdough loaf.", ImageURL: "/images/products/sourdough.jpg", Category: "Bakery", Subcategory: "Bread", Aisle: "3", Price: price("4.99"), QuantityInStock: 15},
	{ID: "21", BarcodeID: "0021", Name: "Gluten-Free Bread", Description: "Gluten-free sandwich bread.", ImageURL: "/images/products/gf-bread.jpg", Category: "Bakery", Subcategory: "Gluten-Free", Aisle: "3", Price: price("6.49"), QuantityInStock: 10},
	{ID: "22", BarcodeID: "0022", Name: "Spaghetti", Description: "Durum wheat spaghetti, 1 lb.", ImageURL: "/images/products/spaghetti.jpg", Category: "Pantry", Subcategory: "Pasta & Grains", Aisle: "9", Price: price("1.79"), QuantityInStock: 75, Popular: true},
	{ID: "23", BarcodeID: "0023", Name: "Rice Noodles", Description: "Gluten-free rice noodles, 14 oz.", ImageURL: "/images/products/rice-noodles.jpg", Category: "Pantry", Subcategory: "Pasta & Grains", Aisle: "9", Price: price("2.99"), QuantityInStock: 40},
	{ID: "24", BarcodeID: "0024", Name: "Quinoa", Description: "White quinoa, 16 oz.", ImageURL: "/images/products/quinoa.jpg", Category: "Pantry", Subcategory: "Pasta & Grains", Aisle: "9", Price: price("4.29"), QuantityInStock: 33},
	{ID: "25", BarcodeID: "0025", Name: "Extra Virgin Olive Oil", Description: "Cold pressed olive oil, 500 ml.", ImageURL: "/images/products/olive-oil.jpg", Category: "Pantry", Subcategory: "Oils & Vinegars", Aisle: "10", Price: price("8.99"), QuantityInStock: 26},
	{ID: "26", BarcodeID: "0026", Name: "Pine Nuts", Description: "Raw pine nuts, 4 oz.", ImageURL: "/images/products/pine-nuts.jpg", Category: "Pantry", Subcategory: "Nuts & Seeds", Aisle: "10", Price: price("7.49"), QuantityInStock: 14},
	{ID: "27", BarcodeID: "0027", Name: "Sunflower Seeds", Description: "Roasted sunflower seeds, 8 oz.", ImageURL: "/images/products/sunflower-seeds.jpg", Category: "Pantry", Subcategory: "Nuts & Seeds", Aisle: "10", Price: price("2.49"), QuantityInStock: 30},
	{ID: "28", BarcodeID: "0028", Name: "Honey", Description: "Raw wildflower honey, 12 oz.", ImageURL: "/images/products/honey.jpg", Category: "Pantry", Subcategory: "Sweeteners", Aisle: "11", Price: price("6.29"), QuantityInStock: 20},
	{ID: "29", BarcodeID: "0029", Name: "Maple Syrup", Description: "Pure maple syrup, 8 oz.", ImageURL: "/images/products/maple-syrup.jpg", Category: "Pantry", Subcategory: "Sweeteners", Aisle: "11", Price: price("7.99"), QuantityInStock: 16},
	{ID: "30", BarcodeID: "0030", Name: "Black Beans", Description: "Canned black beans, 15 oz.", ImageURL: "/images/products/black-beans.jpg", Category: "Pantry", Subcategory: "Canned Goods", Aisle: "12", Price: price("1.09"), QuantityInStock: 85},
	{ID: "31", BarcodeID: "0031", Name: "Soy Sauce", Description: "Naturally brewed soy sauce, 10 oz.", ImageURL: "/images/products/soy-sauce.jpg", Category: "Pantry", Subcategory: "Sauces", Aisle: "12", Price: price("2.99"), QuantityInStock: 38},
	{ID: "32", BarcodeID: "0032", Name: "Tamari", Description: "Gluten-free tamari, 10 oz.", ImageURL: "/images/products/tamari.jpg", Category: "Pantry", Subcategory: "Sauces", Aisle: "12", Price: price("4.49"), QuantityInStock: 12},
	{ID: "33", BarcodeID: "0033", Name: "Corn Tortillas", Description: "Soft corn tortillas, 30 ct.", ImageURL: "/images/products/corn-tortillas.jpg", Category: "Bakery", Subcategory: "Gluten-Free", Aisle: "3", Price: price("3.29"), QuantityInStock: 24},
	{ID: "34", BarcodeID: "0034", Name: "Frozen Berry Mix", Description: "Mixed berries, 16 oz.", ImageURL: "/images/products/berries.jpg", Category: "Frozen", Subcategory: "Desserts", Aisle: "14", Price: price("4.99"), QuantityInStock: 0},
}

// Static returns a copy of the built-in catalog.
func Static() []Product {
	out := make([]Product, len(seed))
	copy(out, seed)
	return out
}

// Taxonomy returns a copy of the category tree.
func Taxonomy() []Category {
	out := make([]Category, len(taxonomy))
	for i, c := range taxonomy {
		out[i] = Category{Name: c.Name, Subcategories: append([]string(nil), c.Subcategories...)}
	}
	return out
}
