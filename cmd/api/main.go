package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/smartcart/smartcart-backend/api/controllers"
	"github.com/smartcart/smartcart-backend/api/routes"
	"github.com/smartcart/smartcart-backend/internal/auth"
	"github.com/smartcart/smartcart-backend/internal/cart"
	"github.com/smartcart/smartcart-backend/internal/catalog"
	"github.com/smartcart/smartcart-backend/internal/feed"
	"github.com/smartcart/smartcart-backend/internal/inventory"
	"github.com/smartcart/smartcart-backend/internal/recipes"
	"github.com/smartcart/smartcart-backend/internal/roles"
	"github.com/smartcart/smartcart-backend/internal/scanner"
	"github.com/smartcart/smartcart-backend/internal/shoppinglist"
	"github.com/smartcart/smartcart-backend/internal/storefront"
	"github.com/smartcart/smartcart-backend/internal/users"
	"github.com/smartcart/smartcart-backend/pkg/auth/session"
	"github.com/smartcart/smartcart-backend/pkg/config"
	"github.com/smartcart/smartcart-backend/pkg/db"
	"github.com/smartcart/smartcart-backend/pkg/instance"
	"github.com/smartcart/smartcart-backend/pkg/logger"
	"github.com/smartcart/smartcart-backend/pkg/metrics"
	"github.com/smartcart/smartcart-backend/pkg/migrate"
	"github.com/smartcart/smartcart-backend/pkg/pubsub"
	"github.com/smartcart/smartcart-backend/pkg/redis"
)

const (
	shutdownTimeout = 15 * time.Second
	sweepInterval   = time.Minute
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	cartMetrics := metrics.NewCartMetrics(reg)
	roleMetrics := metrics.NewRoleMetrics(reg)

	products, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), logg)
	if err != nil {
		return err
	}
	if cfg.FeatureFlags.SeedCatalog {
		n, err := products.Seed(ctx)
		if err != nil {
			return err
		}
		logg.Info(logg.WithField(ctx, "products", n), "catalog seeded")
	}

	changes, err := feed.NewRedisFeed(redisClient, logg)
	if err != nil {
		return err
	}
	listService, err := shoppinglist.NewService(shoppinglist.NewRepository(dbClient.DB()), changes, logg)
	if err != nil {
		return err
	}
	remoteList := shoppinglist.NewBreaker(listService, shoppinglist.BreakerSettings{
		Name:         "shopping_list",
		MinRequests:  cfg.Cart.BreakerMinRequest,
		FailureRatio: cfg.Cart.BreakerRatio,
		OpenFor:      cfg.Cart.BreakerOpenFor,
	})

	localCarts, err := cart.NewRedisStore(redisClient, cfg.Cart.LocalTTL)
	if err != nil {
		return err
	}
	directory := roles.NewRepository(dbClient.DB())

	sessions, err := storefront.NewManager(storefront.Params{
		NewEngine: func(ctx context.Context, key string) (*cart.Engine, error) {
			return cart.NewEngine(ctx, cart.Config{
				SessionKey:    key,
				EchoWindow:    cfg.Cart.EchoWindow,
				RemoteTimeout: cfg.Cart.RemoteTimeout,
			}, cart.Deps{
				Store:    localCarts,
				Remote:   remoteList,
				Products: products,
				Feed:     changes,
				Metrics:  cartMetrics,
				Logger:   logg,
			})
		},
		NewResolver: func() (*roles.Resolver, error) {
			return roles.NewResolver(directory, logg, roleMetrics)
		},
		IdleTTL: cfg.Cart.SessionIdleTTL,
		Metrics: cartMetrics,
		Logger:  logg,
	})
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, sessions.Close()) }()
	go sessions.Run(ctx, sweepInterval)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}
	authService, err := auth.NewService(auth.ServiceParams{
		Accounts:       auth.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return err
	}
	authService.OnAuthChange(sessions.HandleAuthEvent)

	userService, err := users.NewService(users.NewRepository(dbClient.DB()))
	if err != nil {
		return err
	}
	recipeService, err := recipes.NewService(products)
	if err != nil {
		return err
	}
	workingCopies, err := inventory.NewRedisStore(redisClient)
	if err != nil {
		return err
	}
	editor, err := inventory.NewEditor(products, workingCopies, cfg.Dashboard.LowStockThreshold, logg)
	if err != nil {
		return err
	}

	ready := map[string]controllers.Pinger{"database": dbClient, "redis": redisClient}
	deps := routes.Dependencies{
		Config:      cfg,
		Logger:      logg,
		Ready:       ready,
		RateLimiter: redisClient,
		Gatherer:    reg,
		Auth:        authService,
		Storefront:  sessions,
		Catalog:     products,
		Recipes:     recipeService,
		Users:       userService,
		Inventory:   editor,
	}

	// Dashboard test scans need Pub/Sub; without a project the endpoint
	// answers DEPENDENCY_ERROR.
	if cfg.GCP.ProjectID != "" {
		psClient, psErr := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if psErr != nil {
			return psErr
		}
		defer func() { err = multierr.Append(err, psClient.Close()) }()

		publisher, psErr := scanner.NewPublisher(psClient.ScannerPublisher())
		if psErr != nil {
			return psErr
		}
		deps.Scans = publisher
		ready["pubsub"] = psClient
	}

	addr := ":" + cfg.App.Port
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logCtx := logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "addr": addr, "instance": instance.GetID("api")})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
