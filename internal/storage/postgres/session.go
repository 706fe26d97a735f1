package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// querier покрывает общие методы *sql.DB и *sql.Tx, чтобы хелперы чтения
// работали и в транзакции, и вне её.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// txSession реализует domain.TxSession поверх открытой транзакции.
type txSession struct {
	tx *sql.Tx
}

func (s *txSession) UserExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.tx.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)
	`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

func (s *txSession) UserByEmailForUpdate(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := s.tx.QueryRowContext(ctx, `
		SELECT id, name, email
		FROM users
		WHERE email = $1
		FOR UPDATE
	`, email).Scan(&user.ID, &user.Name, &user.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("locking read user by email: %w", err)
	}
	return &user, nil
}

func (s *txSession) InsertUser(ctx context.Context, name, email string) (domain.User, error) {
	user := domain.User{Name: name, Email: email}
	err := s.tx.QueryRowContext(ctx, `
		INSERT INTO users (name, email)
		VALUES ($1, $2)
		RETURNING id
	`, name, email).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (s *txSession) ProductAggregate(ctx context.Context, ids []int64) (domain.ProductAggregate, error) {
	var agg domain.ProductAggregate
	err := s.tx.QueryRowContext(ctx, `
		SELECT COUNT(id), COALESCE(SUM(price_minor), 0)
		FROM products
		WHERE id = ANY($1)
	`, ids).Scan(&agg.Count, &agg.TotalMinor)
	if err != nil {
		return domain.ProductAggregate{}, fmt.Errorf("aggregate products: %w", err)
	}
	return agg, nil
}

func (s *txSession) OrderByID(ctx context.Context, id int64) (domain.Order, error) {
	return fetchOrder(ctx, s.tx, id)
}

func (s *txSession) InsertOrder(ctx context.Context, userID int64, productIDs []int64, totalMinor int64, status domain.OrderStatus) (int64, error) {
	now := time.Now().UTC()

	var orderID int64
	err := s.tx.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, total_minor, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id
	`, userID, totalMinor, int32(status), now).Scan(&orderID)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}

	for _, productID := range productIDs {
		if _, err := s.tx.ExecContext(ctx, `
			INSERT INTO order_products (order_id, product_id)
			VALUES ($1, $2)
		`, orderID, productID); err != nil {
			return 0, fmt.Errorf("insert order product: %w", err)
		}
	}

	return orderID, nil
}

func (s *txSession) UpdateOrder(ctx context.Context, order domain.Order) error {
	res, err := s.tx.ExecContext(ctx, `
		UPDATE orders
		SET user_id = $1,
		    total_minor = $2,
		    status = $3,
		    updated_at = $4
		WHERE id = $5
	`, order.User.ID, order.TotalMinor, int32(order.Status), time.Now().UTC(), order.ID)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (s *txSession) ReplaceOrderProducts(ctx context.Context, orderID int64, productIDs []int64) error {
	if _, err := s.tx.ExecContext(ctx, `
		DELETE FROM order_products WHERE order_id = $1
	`, orderID); err != nil {
		return fmt.Errorf("clear order products: %w", err)
	}

	for _, productID := range productIDs {
		if _, err := s.tx.ExecContext(ctx, `
			INSERT INTO order_products (order_id, product_id)
			VALUES ($1, $2)
		`, orderID, productID); err != nil {
			return fmt.Errorf("insert order product: %w", err)
		}
	}
	return nil
}

func (s *txSession) DeleteOrder(ctx context.Context, id int64) (bool, error) {
	res, err := s.tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func (s *txSession) EnqueueOutbox(ctx context.Context, msg domain.OutboxMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	_, err := s.tx.ExecContext(ctx, `
		INSERT INTO outbox_messages (
			id, aggregate_type, aggregate_id, event_type, payload,
			status, attempt_count, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,'pending',0,$6,$6)
	`, msg.ID, msg.AggregateType, msg.AggregateID, msg.EventType, msg.Payload, now)
	if err != nil {
		return fmt.Errorf("enqueue outbox message: %w", err)
	}
	return nil
}

var _ domain.TxSession = (*txSession)(nil)
