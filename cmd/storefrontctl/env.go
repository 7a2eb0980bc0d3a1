package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront/internal/cart"
	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/infrastructure/logger"
	"storefront/internal/infrastructure/mysql"
	"storefront/internal/payment/paystack"
)

const guestCartOwner = "guest"

type globalFlags struct {
	configPath string
	userID     string
	email      string
	logLevel   string
}

// env is what every subcommand starts from.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	flags  *globalFlags
}

func newEnv(g *globalFlags) (*env, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	zapLogger, err := logger.NewConsole(g.logLevel)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	return &env{cfg: cfg, logger: zapLogger, flags: g}, nil
}

func (e *env) session() *domain.Session {
	if e.flags.userID == "" {
		return nil
	}
	return &domain.Session{UserID: e.flags.userID, Email: e.flags.email}
}

func (e *env) openDB(ctx context.Context) (*sql.DB, error) {
	return mysql.NewConnection(ctx, e.cfg.Database)
}

// openCart loads the caller's cart from Redis. Signed-in users own their cart
// by user id; everyone else shares the guest cart of this machine.
func (e *env) openCart(ctx context.Context) (*cart.Store, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:     e.cfg.Redis.Addr,
		Password: e.cfg.Redis.Password,
		DB:       e.cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connecting to redis: %w", err)
	}

	owner := guestCartOwner
	if e.flags.userID != "" {
		owner = e.flags.userID
	}

	store, err := cart.NewStore(ctx, cart.NewRedisPersister(client, owner, e.cfg.Redis.CartTTL), e.logger)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return store, func() { client.Close() }, nil
}

func (e *env) gateway() *paystack.Client {
	return paystack.NewClient(paystack.Options{
		BaseURL:       e.cfg.Payment.BaseURL,
		SecretKey:     e.cfg.Payment.SecretKey,
		Timeout:       e.cfg.Payment.Timeout,
		RatePerSecond: e.cfg.Payment.RatePerSecond,
		Burst:         e.cfg.Payment.Burst,
	}, e.logger)
}
