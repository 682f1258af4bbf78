package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/smartcart/smartcart-backend/internal/catalog"
	"github.com/smartcart/smartcart-backend/internal/feed"
	"github.com/smartcart/smartcart-backend/internal/scanner"
	"github.com/smartcart/smartcart-backend/internal/shoppinglist"
	"github.com/smartcart/smartcart-backend/internal/users"
	"github.com/smartcart/smartcart-backend/pkg/config"
	"github.com/smartcart/smartcart-backend/pkg/db"
	"github.com/smartcart/smartcart-backend/pkg/instance"
	"github.com/smartcart/smartcart-backend/pkg/logger"
	"github.com/smartcart/smartcart-backend/pkg/metrics"
	"github.com/smartcart/smartcart-backend/pkg/migrate"
	"github.com/smartcart/smartcart-backend/pkg/pubsub"
	"github.com/smartcart/smartcart-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub", err)
		}
	}()

	scanConsumer, err := buildConsumer(logg, dbClient, redisClient, pubsubClient)
	if err != nil {
		logg.Error(ctx, "failed to build scan consumer", err)
		os.Exit(1)
	}

	svc, err := NewService(ServiceParams{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		Redis:    redisClient,
		PubSub:   pubsubClient,
		Consumer: scanConsumer,
	})
	if err != nil {
		logg.Error(ctx, "failed to create worker service", err)
		os.Exit(1)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"subscription": cfg.PubSub.ScannerSubscription,
		"instance":     instance.GetID("worker"),
	}), "starting worker")
	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), "worker shutting down gracefully")
}

// buildConsumer wires scans into the shared shopping list. Inserts are
// published on the Redis change feed so API instances refresh their carts.
func buildConsumer(logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, ps *pubsub.Client) (*scanner.Consumer, error) {
	changes, err := feed.NewRedisFeed(redisClient, logg)
	if err != nil {
		return nil, err
	}
	list, err := shoppinglist.NewService(shoppinglist.NewRepository(dbClient.DB()), changes, logg)
	if err != nil {
		return nil, err
	}
	products, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), logg)
	if err != nil {
		return nil, err
	}
	scans, err := scanner.NewService(users.NewRepository(dbClient.DB()), products, list, logg)
	if err != nil {
		return nil, err
	}
	return scanner.NewConsumer(scans, ps.ScannerSubscription(), metrics.NewScannerMetrics(prometheus.DefaultRegisterer), logg)
}
