package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

const orderSelectColumns = `
	o.id, o.total_minor, o.status, o.created_at, o.updated_at,
	u.id, u.name, u.email
`

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию read-путей заказов.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

func (r *orderRepository) Get(ctx context.Context, id int64) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return fetchOrder(ctx, r.db, id)
}

func (r *orderRepository) List(ctx context.Context) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return fetchOrders(ctx, r.db, `
		SELECT `+orderSelectColumns+`
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC, o.id DESC
	`)
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return fetchOrders(ctx, r.db, `
		SELECT `+orderSelectColumns+`
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.id DESC
	`, userID)
}

// fetchOrder загружает заказ со связями; работает и на *sql.DB, и на *sql.Tx.
func fetchOrder(ctx context.Context, q querier, id int64) (domain.Order, error) {
	var order domain.Order
	err := q.QueryRowContext(ctx, `
		SELECT `+orderSelectColumns+`
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.id = $1
	`, id).Scan(
		&order.ID, &order.TotalMinor, &order.Status, &order.CreatedAt, &order.UpdatedAt,
		&order.User.ID, &order.User.Name, &order.User.Email,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	products, err := loadOrderProducts(ctx, q, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Products = products

	return order, nil
}

func fetchOrders(ctx context.Context, q querier, query string, args ...any) ([]domain.Order, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID, &order.TotalMinor, &order.Status, &order.CreatedAt, &order.UpdatedAt,
			&order.User.ID, &order.User.Name, &order.User.Email,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	for i := range orders {
		products, err := loadOrderProducts(ctx, q, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Products = products
	}

	return orders, nil
}

func loadOrderProducts(ctx context.Context, q querier, orderID int64) ([]domain.Product, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT p.id, p.name, p.price_minor
		FROM order_products op
		JOIN products p ON p.id = op.product_id
		WHERE op.order_id = $1
		ORDER BY p.id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(&product.ID, &product.Name, &product.PriceMinor); err != nil {
			return nil, fmt.Errorf("scan order product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order products: %w", err)
	}

	return products, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.OrderRepository = (*orderRepository)(nil)
