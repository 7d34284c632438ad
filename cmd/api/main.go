package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/binarymart/storefront-backend/api/routes"
	"github.com/binarymart/storefront-backend/internal/cart"
	"github.com/binarymart/storefront-backend/internal/catalog"
	"github.com/binarymart/storefront-backend/internal/checkout"
	"github.com/binarymart/storefront-backend/internal/confirmation"
	"github.com/binarymart/storefront-backend/internal/orders"
	"github.com/binarymart/storefront-backend/pkg/config"
	"github.com/binarymart/storefront-backend/pkg/db"
	"github.com/binarymart/storefront-backend/pkg/logger"
	"github.com/binarymart/storefront-backend/pkg/metrics"
	"github.com/binarymart/storefront-backend/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	var cache *redis.Client
	if cfg.Redis.URL != "" {
		cache, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis url not set, idempotency guard disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	var mailer confirmation.Mailer
	if cfg.SMTP.Enabled() {
		smtpMailer, err := confirmation.NewSMTPMailer(cfg.SMTP)
		if err != nil {
			logg.Error(context.Background(), "failed to configure smtp", err)
			os.Exit(1)
		}
		mailer = smtpMailer
	} else {
		logg.Warn(context.Background(), "smtp not configured, order confirmations disabled")
	}
	dispatcher := confirmation.NewDispatcher(mailer, logg)

	cartRepo := cart.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())

	cartService, err := cart.NewService(cartRepo, catalogRepo, dbClient, cfg.Checkout.MaxItemQty)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(cartRepo, catalogRepo, checkout.NewOrderRepository(dbClient.DB()), dbClient, checkout.Options{
		Logger:          logg,
		Metrics:         checkoutMetrics,
		Confirmations:   dispatcher,
		MaxItemQty:      cfg.Checkout.MaxItemQty,
		MaxOrderLines:   cfg.Checkout.MaxOrderLines,
		ConfirmationTTL: cfg.Checkout.ConfirmationTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orderRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	deps := routes.Deps{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		Metrics:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Cart:     cartService,
		Checkout: checkoutService,
		Orders:   orderService,
	}
	if cache != nil {
		deps.Cache = cache
		deps.IdemKeys = cache
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
		Addr:    addr,
		Handler: routes.NewRouter(deps),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
