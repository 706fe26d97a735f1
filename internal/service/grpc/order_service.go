package grpcsvc

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	storefrontv1 "github.com/vladislavdragonenkov/storefront/api/storefront/v1"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/order"
)

// OrderService реализует gRPC API заказов поверх движка заказов. Контроллер
// отвечает только за валидацию запроса и перевод доменных ошибок в коды gRPC.
type OrderService struct {
	engine *order.Engine
	logger *log.Entry
}

// NewOrderService конструирует контроллер заказов.
func NewOrderService(engine *order.Engine, logger *log.Entry) *OrderService {
	if logger == nil {
		logger = log.New().WithField("component", "grpc-order-service")
	}
	return &OrderService{
		engine: engine,
		logger: logger,
	}
}

// CreateOrder создаёт заказ из набора товаров.
func (s *OrderService) CreateOrder(ctx context.Context, req *storefrontv1.CreateOrderRequest) (*storefrontv1.Order, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if req.UserId <= 0 {
		return nil, status.Error(codes.InvalidArgument, "user_id is required")
	}
	if len(req.ProductIds) == 0 {
		return nil, status.Error(codes.InvalidArgument, "order must contain at least one product")
	}

	created, err := s.engine.Create(ctx, req.UserId, req.ProductIds)
	if err != nil {
		return nil, s.mapOrderError(err, "CreateOrder", req.UserId)
	}
	return toWireOrder(created), nil
}

// GetOrder возвращает заказ со связями.
func (s *OrderService) GetOrder(ctx context.Context, req *storefrontv1.GetOrderRequest) (*storefrontv1.Order, error) {
	if req == nil || req.Id <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	found, err := s.engine.Get(ctx, req.Id)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, status.Errorf(codes.NotFound, "Order with id %d not found", req.Id)
		}
		return nil, s.mapOrderError(err, "GetOrder", req.Id)
	}
	return toWireOrder(found), nil
}

// ListOrders возвращает все заказы.
func (s *OrderService) ListOrders(ctx context.Context, _ *storefrontv1.ListOrdersRequest) (*storefrontv1.ListOrdersResponse, error) {
	orders, err := s.engine.List(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to list orders")
		return nil, status.Error(codes.Internal, "failed to list orders")
	}
	return toWireOrderList(orders), nil
}

// ListOrdersByUserId возвращает заказы пользователя. Пустой результат
// отдаётся как NotFound.
func (s *OrderService) ListOrdersByUserId(ctx context.Context, req *storefrontv1.GetOrdersByUserIdRequest) (*storefrontv1.ListOrdersResponse, error) {
	if req == nil || req.Id <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	orders, err := s.engine.ListByUser(ctx, req.Id)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, status.Errorf(codes.NotFound, "No orders found for user with id %d", req.Id)
		}
		return nil, s.mapOrderError(err, "ListOrdersByUserId", req.Id)
	}
	return toWireOrderList(orders), nil
}

// UpdateOrder применяет частичное обновление заказа.
func (s *OrderService) UpdateOrder(ctx context.Context, req *storefrontv1.UpdateOrderRequest) (*storefrontv1.Order, error) {
	if req == nil || req.Id <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	// Явный пустой список отличаем от отсутствующего поля: заказ без
	// товаров невалиден.
	if req.ProductIds != nil && len(req.ProductIds) == 0 {
		return nil, status.Error(codes.InvalidArgument, "product_ids must not be empty")
	}

	patch := domain.OrderUpdate{ProductIDs: req.ProductIds}
	if req.UserId > 0 {
		patch.UserID = &req.UserId
	}
	if req.Status != nil {
		st := domain.OrderStatus(*req.Status)
		if !st.Valid() {
			return nil, status.Errorf(codes.InvalidArgument, "unknown order status %d", *req.Status)
		}
		patch.Status = &st
	}

	updated, err := s.engine.Update(ctx, req.Id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, status.Errorf(codes.NotFound, "Order with id %d not found", req.Id)
		}
		return nil, s.mapOrderError(err, "UpdateOrder", req.Id)
	}
	return toWireOrder(updated), nil
}

// DeleteOrder удаляет заказ.
func (s *OrderService) DeleteOrder(ctx context.Context, req *storefrontv1.DeleteOrderRequest) (*storefrontv1.DeleteOrderResponse, error) {
	if req == nil || req.Id <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	if err := s.engine.Delete(ctx, req.Id); err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, status.Errorf(codes.NotFound, "Order with id %d not found", req.Id)
		}
		return nil, s.mapOrderError(err, "DeleteOrder", req.Id)
	}

	return &storefrontv1.DeleteOrderResponse{
		Deleted: true,
		Message: fmt.Sprintf("Order with id %d deleted successfully", req.Id),
	}, nil
}

func (s *OrderService) mapOrderError(err error, operation string, id int64) error {
	s.logger.WithError(err).WithFields(log.Fields{
		"operation": operation,
		"id":        id,
	}).Warn("order operation failed")

	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return status.Error(codes.NotFound, "User not found")
	case errors.Is(err, domain.ErrProductsNotFound):
		return status.Error(codes.NotFound, "One or more products not found")
	case errors.Is(err, domain.ErrOrderNotFound):
		return status.Error(codes.NotFound, "Order not found")
	case errors.Is(err, domain.ErrOrderLocked):
		return status.Error(codes.FailedPrecondition, "Order cannot be modified after being shipped")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func toWireOrder(order domain.Order) *storefrontv1.Order {
	products := make([]*storefrontv1.Product, 0, len(order.Products))
	for _, p := range order.Products {
		products = append(products, toWireProduct(p))
	}

	return &storefrontv1.Order{
		Id:         order.ID,
		User:       toWireUser(order.User),
		Products:   products,
		TotalMinor: order.TotalMinor,
		Status:     int32(order.Status),
	}
}

func toWireOrderList(orders []domain.Order) *storefrontv1.ListOrdersResponse {
	result := make([]*storefrontv1.Order, 0, len(orders))
	for _, o := range orders {
		result = append(result, toWireOrder(o))
	}
	return &storefrontv1.ListOrdersResponse{Orders: result}
}
