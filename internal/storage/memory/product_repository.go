package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// productRepositoryInMemory — простая in-memory реализация ProductRepository.
type productRepositoryInMemory struct {
	store *Store
}

// NewProductRepository возвращает in-memory репозиторий товаров.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepositoryInMemory{store: store}
}

func (r *productRepositoryInMemory) Create(_ context.Context, name string, priceMinor int64) (domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.productSeq++
	product := domain.Product{ID: r.store.productSeq, Name: name, PriceMinor: priceMinor}
	r.store.products[product.ID] = product
	return product, nil
}

func (r *productRepositoryInMemory) Get(_ context.Context, id int64) (domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	product, ok := r.store.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

func (r *productRepositoryInMemory) List(_ context.Context) ([]domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	result := make([]domain.Product, 0, len(r.store.products))
	for _, product := range r.store.products {
		result = append(result, product)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *productRepositoryInMemory) ListByOrder(_ context.Context, orderID int64) ([]domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec, ok := r.store.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}

	result := make([]domain.Product, 0, len(rec.productIDs))
	for _, productID := range rec.productIDs {
		if product, ok := r.store.products[productID]; ok {
			result = append(result, product)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *productRepositoryInMemory) Update(_ context.Context, id int64, patch domain.ProductUpdate) (domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	product, ok := r.store.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}

	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.PriceMinor != nil {
		product.PriceMinor = *patch.PriceMinor
	}

	r.store.products[id] = product
	return product, nil
}

func (r *productRepositoryInMemory) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.store.products, id)
	return nil
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
