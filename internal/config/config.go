package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Auth     AuthConfig
	Payment  PaymentConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Order    OrderConfig
	Catalog  CatalogConfig
}

type ServerConfig struct {
	Port              int
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// PaymentConfig holds the gateway settings. SecretKey stays server-side; an
// empty value is accepted at boot and surfaces as a gateway misconfiguration.
type PaymentConfig struct {
	BaseURL         string
	SecretKey       string
	Currency        string
	Timeout         time.Duration
	RatePerSecond   float64
	Burst           int
	VerifyEndpoint  string
	CallbackBaseURL string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CartTTL  time.Duration
}

type KafkaConfig struct {
	Brokers     []string
	Topic       string
	Buffer      int
	ServiceName string
}

type OrderConfig struct {
	PendingTTL time.Duration
	TxTimeout  time.Duration
}

type CatalogConfig struct {
	Path string
}

// Load reads an optional YAML file at path and lets environment variables
// override every key. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_header_timeout", "5s")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "20s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 3306)
	v.SetDefault("db.user", "storefront")
	v.SetDefault("db.password", "secret")
	v.SetDefault("db.name", "storefront")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "5m")
	v.SetDefault("log.level", "info")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "1h")
	v.SetDefault("paystack.base_url", "https://api.paystack.co")
	v.SetDefault("paystack.secret_key", "")
	v.SetDefault("payment.currency", "XOF")
	v.SetDefault("payment.timeout", "10s")
	v.SetDefault("payment.rate_per_second", 10.0)
	v.SetDefault("payment.burst", 5)
	v.SetDefault("payment.verify_endpoint", "http://localhost:8080/verify-payment")
	v.SetDefault("payment.callback_base_url", "http://localhost:5173/order-confirmation")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cart_ttl", "720h")
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topic", "storefront.orders")
	v.SetDefault("kafka.buffer", 256)
	v.SetDefault("kafka.service_name", "storefront-api")
	v.SetDefault("order.pending_ttl", "48h")
	v.SetDefault("order.tx_timeout", "5s")
	v.SetDefault("catalog.path", "catalog.yaml")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	durations := map[string]time.Duration{}
	for _, key := range []string{
		"server.read_header_timeout", "server.read_timeout", "server.write_timeout",
		"server.idle_timeout", "server.shutdown_timeout",
		"db.conn_max_lifetime", "auth.token_ttl", "payment.timeout",
		"redis.cart_ttl", "order.pending_ttl", "order.tx_timeout",
	} {
		d, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", key, err)
		}
		durations[key] = d
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:              v.GetInt("server.port"),
			ReadHeaderTimeout: durations["server.read_header_timeout"],
			ReadTimeout:       durations["server.read_timeout"],
			WriteTimeout:      durations["server.write_timeout"],
			IdleTimeout:       durations["server.idle_timeout"],
			ShutdownTimeout:   durations["server.shutdown_timeout"],
		},
		Database: DatabaseConfig{
			Host:            v.GetString("db.host"),
			Port:            v.GetInt("db.port"),
			User:            v.GetString("db.user"),
			Password:        v.GetString("db.password"),
			Name:            v.GetString("db.name"),
			MaxOpenConns:    v.GetInt("db.max_open_conns"),
			MaxIdleConns:    v.GetInt("db.max_idle_conns"),
			ConnMaxLifetime: durations["db.conn_max_lifetime"],
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
			TokenTTL:  durations["auth.token_ttl"],
		},
		Payment: PaymentConfig{
			BaseURL:         v.GetString("paystack.base_url"),
			SecretKey:       v.GetString("paystack.secret_key"),
			Currency:        v.GetString("payment.currency"),
			Timeout:         durations["payment.timeout"],
			RatePerSecond:   v.GetFloat64("payment.rate_per_second"),
			Burst:           v.GetInt("payment.burst"),
			VerifyEndpoint:  v.GetString("payment.verify_endpoint"),
			CallbackBaseURL: v.GetString("payment.callback_base_url"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			CartTTL:  durations["redis.cart_ttl"],
		},
		Kafka: KafkaConfig{
			Brokers:     splitCSV(v.GetString("kafka.brokers")),
			Topic:       v.GetString("kafka.topic"),
			Buffer:      v.GetInt("kafka.buffer"),
			ServiceName: v.GetString("kafka.service_name"),
		},
		Order: OrderConfig{
			PendingTTL: durations["order.pending_ttl"],
			TxTimeout:  durations["order.tx_timeout"],
		},
		Catalog: CatalogConfig{
			Path: v.GetString("catalog.path"),
		},
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret (AUTH_JWT_SECRET) is required")
	}

	return cfg, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
