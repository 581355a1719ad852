package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap/zapcore"

	"gig-marketplace-service/internal/logger"
	"gig-marketplace-service/internal/observability"
	"gig-marketplace-service/internal/service"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"

	PaymentsFake   = "fake"
	PaymentsStripe = "stripe"
)

type Config struct {
	LogLevel zapcore.Level
	HTTPAddr string

	Store       string
	PostgresDSN string

	RedisAddr      string
	QueueKey       string
	ProcessingKey  string
	EventsChannel  string
	Workers        int
	SweepInterval  time.Duration
	SweepMinAge    time.Duration
	RequeueOnStart int64

	PaymentsProvider string
	StripeSecretKey  string
	Currency         string
	Fees             service.FeePolicy

	Tracing observability.TracingConfig
}

// Load reads .env (if present) and then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		LogLevel:         logger.ParseLevel(os.Getenv("LOG_LEVEL")),
		HTTPAddr:         envOr("HTTP_ADDR", ":8080"),
		Store:            strings.ToLower(envOr("STORE", StorePostgres)),
		PostgresDSN:      os.Getenv("POSTGRES_DSN"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		QueueKey:         envOr("REDIS_PAYOUT_QUEUE_KEY", "payouts:queue"),
		ProcessingKey:    envOr("REDIS_PROCESSING_KEY", "payouts:processing"),
		EventsChannel:    envOr("REDIS_EVENTS_CHANNEL", "marketplace:events"),
		Workers:          envIntOr("WORKERS", 4),
		SweepInterval:    envDurationOr("PAYOUT_SWEEP_INTERVAL", time.Minute),
		SweepMinAge:      envDurationOr("PAYOUT_SWEEP_MIN_AGE", 5*time.Minute),
		RequeueOnStart:   int64(envIntOr("REQUEUE_ON_START", 100)),
		PaymentsProvider: strings.ToLower(envOr("PAYMENTS_PROVIDER", PaymentsFake)),
		StripeSecretKey:  os.Getenv("STRIPE_SECRET_KEY"),
		Currency:         strings.ToLower(envOr("PAYMENT_CURRENCY", "usd")),
		Tracing: observability.TracingConfig{
			Exporter: envOr("OTEL_EXPORTER", "none"),
			Endpoint: os.Getenv("OTEL_ENDPOINT"),
			Insecure: envOr("OTEL_INSECURE", "true") == "true",
		},
	}

	fees := service.DefaultFeePolicy()
	var err error
	if fees.Flat, err = envDecimalOr("SERVICE_FEE_FLAT", fees.Flat); err != nil {
		return Config{}, err
	}
	if fees.Percent, err = envDecimalOr("SERVICE_FEE_PERCENT", fees.Percent); err != nil {
		return Config{}, err
	}
	if fees.Flat.IsNegative() || fees.Percent.IsNegative() {
		return Config{}, fmt.Errorf("service fee must not be negative")
	}
	cfg.Fees = fees

	switch cfg.Store {
	case StoreMemory:
	case StorePostgres:
		if cfg.PostgresDSN == "" {
			return Config{}, fmt.Errorf("POSTGRES_DSN is required for STORE=postgres")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORE %q", cfg.Store)
	}

	switch cfg.PaymentsProvider {
	case PaymentsFake:
	case PaymentsStripe:
		if cfg.StripeSecretKey == "" {
			return Config{}, fmt.Errorf("STRIPE_SECRET_KEY is required for PAYMENTS_PROVIDER=stripe")
		}
	default:
		return Config{}, fmt.Errorf("unknown PAYMENTS_PROVIDER %q", cfg.PaymentsProvider)
	}

	return cfg, nil
}

// RedactedDSN is PostgresDSN with the password masked, for logs.
func (c Config) RedactedDSN() string {
	return redactDSN(c.PostgresDSN)
}

func envOr(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func envDurationOr(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func envDecimalOr(key string, def decimal.Decimal) (decimal.Decimal, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

var dsnPassword = regexp.MustCompile(`://([^:/?#]+):([^@/]+)@`)

// redactDSN masks user:pass@ as user:****@ and leaves password-less DSNs alone.
func redactDSN(dsn string) string {
	return dsnPassword.ReplaceAllString(dsn, `://$1:****@`)
}
