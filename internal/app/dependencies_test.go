package app

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func TestNewDependencies_Memory(t *testing.T) {
	cfg := DefaultConfig()

	deps, err := NewDependencies(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("new dependencies: %v", err)
	}
	defer func() { _ = deps.Close() }()

	if deps.Tx == nil || deps.Users == nil || deps.Products == nil || deps.Orders == nil || deps.Outbox == nil {
		t.Fatal("expected all repositories to be initialized")
	}
	if deps.pinger != nil {
		t.Fatal("memory storage has no pinger")
	}

	// Хранилище рабочее: полный цикл создания пользователя проходит.
	err = deps.Tx.WithinTx(context.Background(), func(ctx context.Context, session domain.TxSession) error {
		_, err := session.InsertUser(ctx, "Alice", "alice@example.com")
		return err
	})
	if err != nil {
		t.Fatalf("insert through memory storage: %v", err)
	}

	users, err := deps.Users.List(context.Background())
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
}

func TestNewDependencies_UnknownDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorageDriver = "cassandra"

	if _, err := NewDependencies(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestNewDependencies_PostgresRequiresDSN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorageDriver = StorageDriverPostgres
	cfg.PostgresDSN = ""

	if _, err := NewDependencies(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error for missing DSN")
	}
}

func TestDependencies_CloseNil(t *testing.T) {
	var deps *Dependencies
	if err := deps.Close(); err != nil {
		t.Fatalf("nil close must be a no-op, got %v", err)
	}

	deps = &Dependencies{}
	if err := deps.Close(); err != nil {
		t.Fatalf("close without closer must be a no-op, got %v", err)
	}

	deps = &Dependencies{closer: func() error { return errors.New("boom") }}
	if err := deps.Close(); err == nil {
		t.Fatal("expected closer error to propagate")
	}
}
