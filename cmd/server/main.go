package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/identity"
	"storefront/internal/infrastructure/logger"
	"storefront/internal/infrastructure/mysql"
	"storefront/internal/order"
	"storefront/internal/payment/paystack"
	"storefront/internal/product"
	"storefront/internal/review"
	"storefront/internal/server"
	"storefront/internal/vendor"
)

func main() {
	_ = godotenv.Load()

	configPath := os.Getenv("STOREFRONT_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := mysql.NewConnection(ctx, cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	if cfg.Payment.SecretKey == "" {
		zapLogger.Warn("paystack secret key not set; payment verification will fail")
	}

	gateway := paystack.NewClient(paystack.Options{
		BaseURL:       cfg.Payment.BaseURL,
		SecretKey:     cfg.Payment.SecretKey,
		Timeout:       cfg.Payment.Timeout,
		RatePerSecond: cfg.Payment.RatePerSecond,
		Burst:         cfg.Payment.Burst,
	}, zapLogger)

	producerCtx, stopProducer := context.WithCancel(context.Background())
	producer := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Buffer, cfg.Kafka.ServiceName, zapLogger)
	producer.Start(producerCtx)

	catalog, err := product.NewModule(cfg.Catalog.Path, cfg.Payment.Currency, zapLogger)
	if err != nil {
		zapLogger.Fatal("loading catalog", zap.Error(err))
	}

	orders := order.NewModule(db, gateway, producer, cfg, zapLogger)
	tokens := identity.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	vendors := vendor.NewModule(db, cfg, zapLogger)
	reviews := review.NewModule(db, catalog.Service, zapLogger)
	router := server.NewRouter(catalog.Controller, orders, vendors, reviews, tokens, zapLogger)
	srv := server.New(cfg.Server, router, zapLogger)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("received shutdown signal")

	if err := srv.Shutdown(context.Background()); err != nil {
		zapLogger.Error("server shutdown failed", zap.Error(err))
	}

	stopProducer()
	producer.WaitClosed()

	zapLogger.Info("server stopped gracefully")
}
