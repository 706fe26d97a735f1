package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func TestUserRepository_CRUD(t *testing.T) {
	store := NewStore()
	repo := NewUserRepository(store)

	alice := seedUser(t, store, "Alice", "alice@example.com")
	seedUser(t, store, "Bob", "bob@example.com")

	got, err := repo.Get(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got != alice {
		t.Fatalf("get mismatch: %+v vs %+v", got, alice)
	}

	users, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 2 || users[0].ID > users[1].ID {
		t.Fatalf("unexpected listing: %+v", users)
	}

	newName := "Alice Updated"
	updated, err := repo.Update(context.Background(), alice.ID, domain.UserUpdate{Name: &newName})
	if err != nil {
		t.Fatalf("update user: %v", err)
	}
	if updated.Name != newName || updated.Email != alice.Email {
		t.Fatalf("partial update went wrong: %+v", updated)
	}

	takenEmail := "bob@example.com"
	if _, err := repo.Update(context.Background(), alice.ID, domain.UserUpdate{Email: &takenEmail}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	if _, err := repo.Get(context.Background(), alice.ID+100); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	if err := repo.Delete(context.Background(), alice.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if err := repo.Delete(context.Background(), alice.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on repeated delete, got %v", err)
	}
}

func TestProductRepository_CRUDAndListByOrder(t *testing.T) {
	store := NewStore()
	repo := NewProductRepository(store)

	pen, err := repo.Create(context.Background(), "Pen", 150)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	notebook, err := repo.Create(context.Background(), "Notebook", 850)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	newPrice := int64(200)
	updated, err := repo.Update(context.Background(), pen.ID, domain.ProductUpdate{PriceMinor: &newPrice})
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if updated.PriceMinor != 200 || updated.Name != "Pen" {
		t.Fatalf("partial update went wrong: %+v", updated)
	}

	user := seedUser(t, store, "Alice", "alice@example.com")
	orderID := seedOrder(t, store, user.ID, []int64{notebook.ID, pen.ID}, 1050)

	products, err := repo.ListByOrder(context.Background(), orderID)
	if err != nil {
		t.Fatalf("list by order: %v", err)
	}
	if len(products) != 2 || products[0].ID > products[1].ID {
		t.Fatalf("unexpected order products: %+v", products)
	}

	if _, err := repo.ListByOrder(context.Background(), orderID+100); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}

	if err := repo.Delete(context.Background(), pen.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	if _, err := repo.Get(context.Background(), pen.ID); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
