package grpcsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	storefrontv1 "github.com/vladislavdragonenkov/storefront/api/storefront/v1"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/product"
)

// ProductService реализует gRPC API каталога товаров.
type ProductService struct {
	svc    *product.Service
	logger *log.Entry
}

// NewProductService конструирует контроллер каталога.
func NewProductService(svc *product.Service, logger *log.Entry) *ProductService {
	if logger == nil {
		logger = log.New().WithField("component", "grpc-product-service")
	}
	return &ProductService{
		svc:    svc,
		logger: logger,
	}
}

// CreateProduct добавляет товар в каталог.
func (s *ProductService) CreateProduct(ctx context.Context, req *storefrontv1.CreateProductRequest) (*storefrontv1.Product, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}
	if req.PriceMinor <= 0 {
		return nil, status.Error(codes.InvalidArgument, "price_minor must be > 0")
	}

	created, err := s.svc.Create(ctx, req.Name, req.PriceMinor)
	if err != nil {
		s.logger.WithError(err).Error("failed to create product")
		return nil, status.Error(codes.Internal, "failed to create product")
	}
	return toWireProduct(created), nil
}

// GetProduct возвращает товар по ID.
func (s *ProductService) GetProduct(ctx context.Context, req *storefrontv1.GetProductRequest) (*storefrontv1.Product, error) {
	if req == nil || req.Id <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	found, err := s.svc.Get(ctx, req.Id)
	if err != nil {
		return nil, s.mapProductError(err, "GetProduct", req.Id)
	}
	return toWireProduct(found), nil
}

// ListProducts возвращает весь каталог.
func (s *ProductService) ListProducts(ctx context.Context, _ *storefrontv1.ListProductsRequest) (*storefrontv1.ListProductsResponse, error) {
	products, err := s.svc.List(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to list products")
		return nil, status.Error(codes.Internal, "failed to list products")
	}
	return toWireProductList(products), nil
}

// ListProductsByOrderId возвращает состав заказа.
func (s *ProductService) ListProductsByOrderId(ctx context.Context, req *storefrontv1.GetProductsByOrderIdRequest) (*storefrontv1.ListProductsResponse, error) {
	if req == nil || req.Id <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	products, err := s.svc.ListByOrder(ctx, req.Id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			return nil, status.Errorf(codes.NotFound, "Order with id %d not found", req.Id)
		case errors.Is(err, domain.ErrProductsNotFound):
			return nil, status.Errorf(codes.NotFound, "Products for order with id %d not found", req.Id)
		}
		return nil, s.mapProductError(err, "ListProductsByOrderId", req.Id)
	}
	return toWireProductList(products), nil
}

// UpdateProduct применяет частичное обновление: нулевые поля не меняются.
func (s *ProductService) UpdateProduct(ctx context.Context, req *storefrontv1.UpdateProductRequest) (*storefrontv1.Product, error) {
	if req == nil || req.Id <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	if req.PriceMinor < 0 {
		return nil, status.Error(codes.InvalidArgument, "price_minor must be > 0")
	}

	var patch domain.ProductUpdate
	if req.Name != "" {
		patch.Name = &req.Name
	}
	if req.PriceMinor > 0 {
		patch.PriceMinor = &req.PriceMinor
	}

	updated, err := s.svc.Update(ctx, req.Id, patch)
	if err != nil {
		return nil, s.mapProductError(err, "UpdateProduct", req.Id)
	}
	return toWireProduct(updated), nil
}

// DeleteProduct удаляет товар из каталога.
func (s *ProductService) DeleteProduct(ctx context.Context, req *storefrontv1.DeleteProductRequest) (*storefrontv1.DeleteProductResponse, error) {
	if req == nil || req.Id <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	if err := s.svc.Delete(ctx, req.Id); err != nil {
		return nil, s.mapProductError(err, "DeleteProduct", req.Id)
	}

	return &storefrontv1.DeleteProductResponse{
		Deleted: true,
		Message: fmt.Sprintf("Product with id %d deleted successfully", req.Id),
	}, nil
}

func (s *ProductService) mapProductError(err error, operation string, id int64) error {
	s.logger.WithError(err).WithFields(log.Fields{
		"operation": operation,
		"id":        id,
	}).Warn("product operation failed")

	if errors.Is(err, domain.ErrProductNotFound) {
		return status.Error(codes.NotFound, "Product not found")
	}
	return status.Error(codes.Internal, "internal error")
}

func toWireProduct(product domain.Product) *storefrontv1.Product {
	return &storefrontv1.Product{
		Id:         product.ID,
		Name:       product.Name,
		PriceMinor: product.PriceMinor,
	}
}

func toWireProductList(products []domain.Product) *storefrontv1.ListProductsResponse {
	result := make([]*storefrontv1.Product, 0, len(products))
	for _, p := range products {
		result = append(result, toWireProduct(p))
	}
	return &storefrontv1.ListProductsResponse{Products: result}
}
