package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mitaxdev/litescripts/api/routes"
	"github.com/mitaxdev/litescripts/internal/cart"
	"github.com/mitaxdev/litescripts/internal/orders"
	"github.com/mitaxdev/litescripts/internal/products"
	"github.com/mitaxdev/litescripts/internal/users"
	tebexwebhook "github.com/mitaxdev/litescripts/internal/webhooks/tebex"
	"github.com/mitaxdev/litescripts/pkg/config"
	"github.com/mitaxdev/litescripts/pkg/db"
	"github.com/mitaxdev/litescripts/pkg/logger"
	"github.com/mitaxdev/litescripts/pkg/metrics"
	"github.com/mitaxdev/litescripts/pkg/migrate"
	"github.com/mitaxdev/litescripts/pkg/redis"
	"github.com/mitaxdev/litescripts/pkg/tebex"
)

const webhookIdempotencyTTL = 24 * time.Hour

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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	pipeline := metrics.NewPipelineMetrics(registry)

	tebexClient, err := tebex.NewClient(context.Background(), cfg.Tebex, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create tebex client", err)
		os.Exit(1)
	}

	catalog := products.NewCatalog(nil)
	usersRepo := users.NewRepository(dbClient.DB())
	cartRepo := cart.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())

	cartService, err := cart.NewService(cart.Params{
		Repo:        cartRepo,
		Tx:          dbClient,
		Catalog:     catalog,
		Gateway:     tebexClient,
		Pipeline:    pipeline,
		FrontendURL: cfg.Frontend.URL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(ordersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	webhookService, err := tebexwebhook.NewService(tebexwebhook.ServiceParams{
		OrdersRepo:        ordersRepo,
		Users:             usersRepo,
		TransactionRunner: dbClient,
		Logger:            logg,
		Pipeline:          pipeline,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := tebexwebhook.NewIdempotencyGuard(redisClient, webhookIdempotencyTTL, "tebex-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

	verifier := tebexwebhook.NewVerifier(cfg.Tebex.WebhookSecret, logg)
	if !verifier.Enabled() {
		logg.Warn(context.Background(), "tebex webhook secret not configured, signature verification disabled")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:       cfg,
			Logger:       logg,
			DB:           dbClient,
			Redis:        redisClient,
			Catalog:      catalog,
			Users:        usersRepo,
			CartService:  cartService,
			OrderService: ordersService,
			WebhookSvc:   webhookService,
			Verifier:     verifier,
			WebhookGuard: webhookGuard,
			Pipeline:     pipeline,
			Gatherer:     registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
