package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smartcart/smartcart-backend/api/controllers"
	"github.com/smartcart/smartcart-backend/api/middleware"
	"github.com/smartcart/smartcart-backend/internal/auth"
	"github.com/smartcart/smartcart-backend/internal/catalog"
	"github.com/smartcart/smartcart-backend/internal/inventory"
	"github.com/smartcart/smartcart-backend/internal/navigation"
	"github.com/smartcart/smartcart-backend/internal/recipes"
	"github.com/smartcart/smartcart-backend/internal/storefront"
	"github.com/smartcart/smartcart-backend/internal/users"
	"github.com/smartcart/smartcart-backend/pkg/config"
	"github.com/smartcart/smartcart-backend/pkg/enums"
	"github.com/smartcart/smartcart-backend/pkg/logger"
)

// Dependencies are the services the HTTP API serves. RateLimiter, Scans and
// Gatherer are optional.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	Ready       map[string]controllers.Pinger
	RateLimiter middleware.WindowLimiter
	Gatherer    prometheus.Gatherer

	Auth       auth.Service
	Storefront *storefront.Manager
	Catalog    catalog.Service
	Recipes    recipes.Service
	Users      users.Service
	Inventory  inventory.Editor
	Scans      controllers.ScanPublisher
}

func NewRouter(d Dependencies) http.Handler {
	cfg, logg := d.Config, d.Logger
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy("login", cfg.AuthRateLimit.LoginWindow, cfg.AuthRateLimit.LoginLimit)
	signupPolicy := middleware.NewAuthRateLimitPolicy("signup", cfg.AuthRateLimit.SignupWindow, cfg.AuthRateLimit.SignupLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.Ready))
	})

	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	storefrontSession := middleware.Storefront(d.Auth, d.Storefront, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(signupPolicy, d.RateLimiter, logg)).Post("/signup", controllers.AuthSignup(d.Auth, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, d.RateLimiter, logg)).Post("/login", controllers.AuthLogin(d.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(d.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(d.Auth, logg))
			r.With(storefrontSession).Get("/session", controllers.AuthSession(logg))
		})

		r.Get("/products", controllers.ListProducts(d.Catalog, logg))
		r.Get("/products/{id}", controllers.GetProduct(d.Catalog, logg))
		r.Get("/categories", controllers.ListCategories(d.Catalog, logg))

		r.Group(func(r chi.Router) {
			r.Use(storefrontSession)

			r.Get("/navigation", controllers.Navigation(logg))

			r.Route("/cart", func(r chi.Router) {
				r.Use(middleware.ShopperScreens(navigation.PathCart, logg))
				r.Get("/", controllers.GetCart(logg))
				r.Delete("/", controllers.ClearCart(logg))
				r.Post("/items", controllers.AddCartItem(d.Catalog, logg))
				r.Patch("/items/{productId}", controllers.UpdateCartItem(logg))
				r.Delete("/items/{productId}", controllers.RemoveCartItem(logg))
				r.Get("/stream", controllers.CartStream(cfg.App.CORSOrigins, logg))
			})

			r.Route("/recipes", func(r chi.Router) {
				r.Use(middleware.ShopperScreens(navigation.PathRecipes, logg))
				r.Get("/", controllers.ListRecipes(d.Recipes, logg))
				r.Get("/{id}", controllers.GetRecipe(d.Recipes, d.Users, logg))
				r.Post("/{id}/cart", controllers.AddRecipeToCart(d.Recipes, d.Users, logg))
			})

			r.Route("/me/preferences", func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.RoleShopper, logg))
				r.Get("/", controllers.GetPreferences(d.Users, logg))
				r.Put("/", controllers.UpdatePreferences(d.Users, logg))
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.RoleOwner, logg))
				r.Route("/inventory", func(r chi.Router) {
					r.Get("/", controllers.ListInventory(d.Inventory, logg))
					r.Post("/", controllers.CreateInventoryProduct(d.Inventory, logg))
					r.Post("/reset", controllers.ResetInventory(d.Inventory, logg))
					r.Patch("/{id}", controllers.UpdateInventoryProduct(d.Inventory, logg))
					r.Delete("/{id}", controllers.DeleteInventoryProduct(d.Inventory, logg))
				})
				r.Get("/analytics", controllers.InventoryAnalytics(d.Inventory, logg))
				r.Get("/users", controllers.ListShoppers(d.Users, logg))
				r.Post("/scans", controllers.PublishScan(d.Scans, logg))
			})
		})
	})

	return r
}
