package integration

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	storefrontv1 "github.com/vladislavdragonenkov/storefront/api/storefront/v1"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	grpcsvc "github.com/vladislavdragonenkov/storefront/internal/service/grpc"
	"github.com/vladislavdragonenkov/storefront/internal/service/order"
	"github.com/vladislavdragonenkov/storefront/internal/service/product"
	"github.com/vladislavdragonenkov/storefront/internal/service/user"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

const bufSize = 1 << 20

// OrderLifecycleTestSuite проверяет полный жизненный цикл заказа через
// реальный gRPC-стек: сервер на bufconn, JSON-кодек, хранилище в памяти.
type OrderLifecycleTestSuite struct {
	suite.Suite

	store  *memory.Store
	outbox domain.OutboxRepository

	server   *grpc.Server
	conn     *grpc.ClientConn
	users    storefrontv1.UserServiceClient
	products storefrontv1.ProductServiceClient
	orders   storefrontv1.OrderServiceClient
}

func (s *OrderLifecycleTestSuite) SetupTest() {
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel)
	logger := baseLogger.WithField("component", "integration-test")

	s.store = memory.NewStore()
	userRepo := memory.NewUserRepository(s.store)
	productRepo := memory.NewProductRepository(s.store)
	orderRepo := memory.NewOrderRepository(s.store)
	s.outbox = memory.NewOutboxRepository(s.store)

	engine := order.NewEngine(s.store, orderRepo, metrics.NewOrderMetrics(), logger)
	userSvc := user.NewService(s.store, userRepo, logger)
	productSvc := product.NewService(productRepo, logger)

	s.server = grpc.NewServer()
	storefrontv1.RegisterOrderServiceServer(s.server, grpcsvc.NewOrderService(engine, logger))
	storefrontv1.RegisterUserServiceServer(s.server, grpcsvc.NewUserService(userSvc, logger))
	storefrontv1.RegisterProductServiceServer(s.server, grpcsvc.NewProductService(productSvc, logger))

	lis := bufconn.Listen(bufSize)
	go func() {
		_ = s.server.Serve(lis)
	}()

	conn, err := grpc.NewClient(
		"passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(storefrontv1.JSONCodecName)),
	)
	require.NoError(s.T(), err)

	s.conn = conn
	s.users = storefrontv1.NewUserServiceClient(conn)
	s.products = storefrontv1.NewProductServiceClient(conn)
	s.orders = storefrontv1.NewOrderServiceClient(conn)
}

func (s *OrderLifecycleTestSuite) TearDownTest() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
	if s.server != nil {
		s.server.Stop()
	}
}

func (s *OrderLifecycleTestSuite) seedUser(name, email string) *storefrontv1.User {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	u, err := s.users.CreateUser(ctx, &storefrontv1.CreateUserRequest{Name: name, Email: email})
	require.NoError(s.T(), err)
	return u
}

func (s *OrderLifecycleTestSuite) seedProduct(name string, priceMinor int64) *storefrontv1.Product {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p, err := s.products.CreateProduct(ctx, &storefrontv1.CreateProductRequest{Name: name, PriceMinor: priceMinor})
	require.NoError(s.T(), err)
	return p
}

func (s *OrderLifecycleTestSuite) pendingEvents() []domain.OutboxMessage {
	events, err := s.outbox.PullPending(context.Background(), 100)
	require.NoError(s.T(), err)
	return events
}

func (s *OrderLifecycleTestSuite) TestFullLifecycle() {
	ctx := context.Background()

	buyer := s.seedUser("Алина", "alina@example.com")
	pen := s.seedProduct("ручка", 150)
	notebook := s.seedProduct("блокнот", 850)

	created, err := s.orders.CreateOrder(ctx, &storefrontv1.CreateOrderRequest{
		UserId:     buyer.Id,
		ProductIds: []int64{pen.Id, notebook.Id, pen.Id},
	})
	s.Require().NoError(err)
	s.Equal(buyer.Id, created.UserId)
	s.Equal(int64(1000), created.TotalMinor)
	s.Len(created.ProductIds, 2)
	s.Equal(int32(domain.OrderStatusCreated), created.Status)

	paid := int32(domain.OrderStatusPaid)
	updated, err := s.orders.UpdateOrder(ctx, &storefrontv1.UpdateOrderRequest{
		Id:     created.Id,
		Status: &paid,
	})
	s.Require().NoError(err)
	s.Equal(paid, updated.Status)

	shipped := int32(domain.OrderStatusShipped)
	_, err = s.orders.UpdateOrder(ctx, &storefrontv1.UpdateOrderRequest{
		Id:     created.Id,
		Status: &shipped,
	})
	s.Require().NoError(err)

	// После отгрузки заказ заморожен.
	another := s.seedUser("Борис", "boris@example.com")
	_, err = s.orders.UpdateOrder(ctx, &storefrontv1.UpdateOrderRequest{
		Id:     created.Id,
		UserId: another.Id,
	})
	st, ok := status.FromError(err)
	s.Require().True(ok)
	s.Equal(codes.FailedPrecondition, st.Code())
	s.Equal("Order cannot be modified after being shipped", st.Message())

	events := s.pendingEvents()
	s.Require().Len(events, 3)
	s.Equal(kafka.EventTypeOrderCreated, events[0].EventType)

	var firstEvent kafka.OrderEvent
	s.Require().NoError(json.Unmarshal(events[0].Payload, &firstEvent))
	s.Equal(created.Id, firstEvent.OrderID)
	s.Equal(int64(1000), firstEvent.TotalMinor)
}

func (s *OrderLifecycleTestSuite) TestDeleteBeforeShipmentEmitsEvent() {
	ctx := context.Background()

	buyer := s.seedUser("Вера", "vera@example.com")
	mug := s.seedProduct("кружка", 500)

	created, err := s.orders.CreateOrder(ctx, &storefrontv1.CreateOrderRequest{
		UserId:     buyer.Id,
		ProductIds: []int64{mug.Id},
	})
	s.Require().NoError(err)

	deleted, err := s.orders.DeleteOrder(ctx, &storefrontv1.DeleteOrderRequest{Id: created.Id})
	s.Require().NoError(err)
	s.True(deleted.Deleted)

	_, err = s.orders.GetOrder(ctx, &storefrontv1.GetOrderRequest{Id: created.Id})
	st, ok := status.FromError(err)
	s.Require().True(ok)
	s.Equal(codes.NotFound, st.Code())

	events := s.pendingEvents()
	s.Require().Len(events, 2)
	s.Equal(kafka.EventTypeOrderDeleted, events[1].EventType)
}

func (s *OrderLifecycleTestSuite) TestEmailUniquenessAcrossLifecycle() {
	ctx := context.Background()

	first := s.seedUser("Галина", "galina@example.com")

	_, err := s.users.CreateUser(ctx, &storefrontv1.CreateUserRequest{
		Name:  "Галина 2",
		Email: "galina@example.com",
	})
	st, ok := status.FromError(err)
	s.Require().True(ok)
	s.Equal(codes.AlreadyExists, st.Code())

	_, err = s.users.DeleteUser(ctx, &storefrontv1.DeleteUserRequest{Id: first.Id})
	s.Require().NoError(err)

	// Освободившийся email снова доступен.
	_, err = s.users.CreateUser(ctx, &storefrontv1.CreateUserRequest{
		Name:  "Галина 2",
		Email: "galina@example.com",
	})
	s.Require().NoError(err)
}

func (s *OrderLifecycleTestSuite) TestOrdersByUser() {
	ctx := context.Background()

	buyer := s.seedUser("Дарья", "daria@example.com")
	book := s.seedProduct("книга", 1200)

	for i := 0; i < 2; i++ {
		_, err := s.orders.CreateOrder(ctx, &storefrontv1.CreateOrderRequest{
			UserId:     buyer.Id,
			ProductIds: []int64{book.Id},
		})
		s.Require().NoError(err)
	}

	list, err := s.orders.ListOrdersByUserId(ctx, &storefrontv1.GetOrdersByUserIdRequest{Id: buyer.Id})
	s.Require().NoError(err)
	s.Len(list.Orders, 2)

	idle := s.seedUser("Егор", "egor@example.com")
	_, err = s.orders.ListOrdersByUserId(ctx, &storefrontv1.GetOrdersByUserIdRequest{Id: idle.Id})
	st, ok := status.FromError(err)
	s.Require().True(ok)
	s.Equal(codes.NotFound, st.Code())
}

func TestOrderLifecycleTestSuite(t *testing.T) {
	suite.Run(t, new(OrderLifecycleTestSuite))
}
