package app

import (
	"os"
	"strconv"
	"time"
)

// StorageDriver выбирает реализацию хранилища.
type StorageDriver string

const (
	// StorageDriverMemory — in-memory хранилище для разработки и тестов.
	StorageDriverMemory StorageDriver = "memory"
	// StorageDriverPostgres — PostgreSQL, основное хранилище.
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	GRPCAddr    string
	MetricsAddr string

	StorageDriver       StorageDriver
	PostgresDSN         string
	PostgresAutoMigrate bool

	KafkaBrokers string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration
}

// DefaultConfig возвращает конфигурацию по умолчанию: in-memory хранилище,
// без Kafka.
func DefaultConfig() Config {
	return Config{
		GRPCAddr:            ":50051",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		OutboxPollInterval:  time.Second,
		OutboxBatchSize:     100,
		OutboxMaxAttempts:   3,
		OutboxRetryDelay:    50 * time.Millisecond,
	}
}

// ConfigFromEnv собирает конфигурацию из переменных окружения поверх
// значений по умолчанию. Непустой STOREFRONT_POSTGRES_DSN автоматически
// переключает хранилище на postgres.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if addr := os.Getenv("STOREFRONT_GRPC_ADDR"); addr != "" {
		cfg.GRPCAddr = addr
	}
	if addr := os.Getenv("STOREFRONT_METRICS_ADDR"); addr != "" {
		cfg.MetricsAddr = addr
	}
	if dsn := os.Getenv("STOREFRONT_POSTGRES_DSN"); dsn != "" {
		cfg.PostgresDSN = dsn
		cfg.StorageDriver = StorageDriverPostgres
	}
	if driver := os.Getenv("STOREFRONT_STORAGE_DRIVER"); driver != "" {
		cfg.StorageDriver = StorageDriver(driver)
	}
	if v := os.Getenv("STOREFRONT_POSTGRES_AUTO_MIGRATE"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			cfg.PostgresAutoMigrate = parsed
		}
	}
	cfg.KafkaBrokers = os.Getenv("STOREFRONT_KAFKA_BROKERS")

	if v := os.Getenv("STOREFRONT_OUTBOX_POLL_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			cfg.OutboxPollInterval = parsed
		}
	}
	if v := os.Getenv("STOREFRONT_OUTBOX_BATCH_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.OutboxBatchSize = parsed
		}
	}
	if v := os.Getenv("STOREFRONT_OUTBOX_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.OutboxMaxAttempts = parsed
		}
	}
	if v := os.Getenv("STOREFRONT_OUTBOX_RETRY_DELAY"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			cfg.OutboxRetryDelay = parsed
		}
	}

	return cfg
}
