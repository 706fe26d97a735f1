package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func TestUserRepository_PostgresCRUD(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewUserRepository(store)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	alice := seedUserForIntegrationTest(t, store, "Alice", "alice@example.com")
	seedUserForIntegrationTest(t, store, "Bob", "bob@example.com")

	got, err := repo.Get(ctx, alice.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got != alice {
		t.Fatalf("get mismatch: %+v vs %+v", got, alice)
	}

	if _, err := repo.Get(ctx, alice.ID+100000); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	users, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}

	newName := "Alice Updated"
	updated, err := repo.Update(ctx, alice.ID, domain.UserUpdate{Name: &newName})
	if err != nil {
		t.Fatalf("update user name: %v", err)
	}
	if updated.Name != newName || updated.Email != alice.Email {
		t.Fatalf("partial update went wrong: %+v", updated)
	}

	// Пустой патч не трогает запись.
	same, err := repo.Update(ctx, alice.ID, domain.UserUpdate{})
	if err != nil {
		t.Fatalf("empty update: %v", err)
	}
	if same != updated {
		t.Fatalf("empty update changed user: %+v", same)
	}

	takenEmail := "bob@example.com"
	if _, err := repo.Update(ctx, alice.ID, domain.UserUpdate{Email: &takenEmail}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken on duplicate email, got %v", err)
	}

	if _, err := repo.Update(ctx, alice.ID+100000, domain.UserUpdate{Name: &newName}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on update missing, got %v", err)
	}

	if err := repo.Delete(ctx, alice.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if err := repo.Delete(ctx, alice.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on repeated delete, got %v", err)
	}
}
