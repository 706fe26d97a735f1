package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
	"github.com/vladislavdragonenkov/storefront/internal/storage/postgres"
)

// Dependencies содержит хранилище и репозитории приложения.
type Dependencies struct {
	Tx       domain.TxRunner
	Users    domain.UserRepository
	Products domain.ProductRepository
	Orders   domain.OrderRepository
	Outbox   domain.OutboxRepository
	Logger   *log.Entry

	pinger health.Pinger
	closer func() error
}

// NewDependencies инициализирует хранилище по конфигурации: postgres для
// боевого запуска, memory для разработки и тестов.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		return newPostgresDependencies(ctx, cfg, logger)
	case StorageDriverMemory, "":
		logger.Warn("using in-memory storage, data will not survive restarts")
		return newMemoryDependencies(logger), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func newPostgresDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("postgres storage requires STOREFRONT_POSTGRES_DSN")
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres storage: %w", err)
	}

	if cfg.PostgresAutoMigrate {
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("postgres schema is up to date")
	}

	logger.Info("postgres storage initialized")
	return &Dependencies{
		Tx:       store,
		Users:    postgres.NewUserRepository(store),
		Products: postgres.NewProductRepository(store),
		Orders:   postgres.NewOrderRepository(store),
		Outbox:   postgres.NewOutboxRepository(store),
		Logger:   logger,
		pinger:   store,
		closer:   store.Close,
	}, nil
}

func newMemoryDependencies(logger *log.Entry) *Dependencies {
	store := memory.NewStore()
	return &Dependencies{
		Tx:       store,
		Users:    memory.NewUserRepository(store),
		Products: memory.NewProductRepository(store),
		Orders:   memory.NewOrderRepository(store),
		Outbox:   memory.NewOutboxRepository(store),
		Logger:   logger,
	}
}

// Close освобождает ресурсы хранилища.
func (d *Dependencies) Close() error {
	if d == nil || d.closer == nil {
		return nil
	}
	return d.closer()
}
