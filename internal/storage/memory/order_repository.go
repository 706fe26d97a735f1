package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// orderRepositoryInMemory — in-memory реализация read-путей заказов.
// Мутации заказов идут только через транзакционную сессию Store.
type orderRepositoryInMemory struct {
	store *Store
}

// NewOrderRepository возвращает in-memory репозиторий заказов.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepositoryInMemory{store: store}
}

func (r *orderRepositoryInMemory) Get(_ context.Context, id int64) (domain.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec, ok := r.store.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return r.store.materializeOrderLocked(rec)
}

func (r *orderRepositoryInMemory) List(ctx context.Context) ([]domain.Order, error) {
	return r.listWhere(func(orderRecord) bool { return true })
}

func (r *orderRepositoryInMemory) ListByUser(_ context.Context, userID int64) ([]domain.Order, error) {
	return r.listWhere(func(rec orderRecord) bool { return rec.userID == userID })
}

func (r *orderRepositoryInMemory) listWhere(keep func(orderRecord) bool) ([]domain.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	result := make([]domain.Order, 0, len(r.store.orders))
	for _, rec := range r.store.orders {
		if !keep(rec) {
			continue
		}
		order, err := r.store.materializeOrderLocked(rec)
		if err != nil {
			return nil, err
		}
		result = append(result, order)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	return result, nil
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
