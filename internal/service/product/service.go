package product

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Service реализует операции каталога товаров.
type Service struct {
	products domain.ProductRepository
	logger   *log.Entry
}

// NewService конструирует сервис каталога.
func NewService(products domain.ProductRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "product-service")
	}
	return &Service{
		products: products,
		logger:   logger,
	}
}

// Create добавляет товар в каталог.
func (s *Service) Create(ctx context.Context, name string, priceMinor int64) (domain.Product, error) {
	created, err := s.products.Create(ctx, name, priceMinor)
	if err != nil {
		return domain.Product{}, err
	}

	s.logger.WithFields(log.Fields{
		"product_id": created.ID,
		"price":      created.PriceMinor,
	}).Info("product created")
	return created, nil
}

// Get возвращает товар по ID.
func (s *Service) Get(ctx context.Context, id int64) (domain.Product, error) {
	return s.products.Get(ctx, id)
}

// List возвращает все товары каталога.
func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx)
}

// ListByOrder возвращает состав заказа. Несуществующий заказ отдаётся как
// ErrOrderNotFound, заказ без товаров как ErrProductsNotFound.
func (s *Service) ListByOrder(ctx context.Context, orderID int64) ([]domain.Product, error) {
	products, err := s.products.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, domain.ErrProductsNotFound
	}
	return products, nil
}

// Update применяет частичное обновление товара. Смена цены не трогает суммы
// уже созданных заказов.
func (s *Service) Update(ctx context.Context, id int64, patch domain.ProductUpdate) (domain.Product, error) {
	updated, err := s.products.Update(ctx, id, patch)
	if err != nil {
		return domain.Product{}, err
	}

	s.logger.WithField("product_id", updated.ID).Info("product updated")
	return updated, nil
}

// Delete удаляет товар из каталога.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.WithField("product_id", id).Info("product deleted")
	return nil
}
