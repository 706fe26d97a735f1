package order

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

const outboxAggregateOrder = "order"

// Engine управляет жизненным циклом заказа. Каждая мутация выполняется в
// одной транзакции: проверки агрегата, запись заказа и событие outbox либо
// фиксируются вместе, либо не происходят вовсе.
type Engine struct {
	tx      domain.TxRunner
	orders  domain.OrderRepository
	metrics *metrics.OrderMetrics
	logger  *log.Entry
}

// NewEngine конструирует движок заказов. Метрики опциональны.
func NewEngine(tx domain.TxRunner, orders domain.OrderRepository, m *metrics.OrderMetrics, logger *log.Entry) *Engine {
	if logger == nil {
		logger = log.New().WithField("component", "order-engine")
	}
	return &Engine{
		tx:      tx,
		orders:  orders,
		metrics: m,
		logger:  logger,
	}
}

// Create создаёт заказ для пользователя из набора товаров. Сумма заказа
// считается из текущих цен, а не передаётся клиентом. Повторы id товаров
// схлопываются до уникального набора.
func (e *Engine) Create(ctx context.Context, userID int64, productIDs []int64) (domain.Order, error) {
	started := time.Now()

	distinct := dedupeIDs(productIDs)
	if len(distinct) == 0 {
		e.recordFailure("create")
		return domain.Order{}, domain.ErrProductsNotFound
	}

	var created domain.Order
	err := e.tx.WithinTx(ctx, func(ctx context.Context, session domain.TxSession) error {
		exists, err := session.UserExists(ctx, userID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrUserNotFound
		}

		agg, err := session.ProductAggregate(ctx, distinct)
		if err != nil {
			return err
		}
		if agg.Count != len(distinct) {
			return domain.ErrProductsNotFound
		}

		orderID, err := session.InsertOrder(ctx, userID, distinct, agg.TotalMinor, domain.OrderStatusCreated)
		if err != nil {
			return err
		}

		if err := e.enqueueOrderEvent(ctx, session, kafka.EventTypeOrderCreated, orderID, userID, domain.OrderStatusCreated, agg.TotalMinor); err != nil {
			return err
		}

		created, err = session.OrderByID(ctx, orderID)
		return err
	})
	if err != nil {
		e.recordFailure("create")
		return domain.Order{}, err
	}

	e.logger.WithFields(log.Fields{
		"order_id": created.ID,
		"user_id":  userID,
		"total":    created.TotalMinor,
	}).Info("order created")

	if e.metrics != nil {
		e.metrics.RecordOrderCreated()
		e.metrics.RecordOperationDuration("create", time.Since(started))
	}
	return created, nil
}

// Update изменяет заказ: набор товаров, владельца и статус, в любом
// сочетании. Заказ в статусе SHIPPED и дальше неизменяем, проверка идёт до
// любых записей. Смена набора товаров пересчитывает сумму.
func (e *Engine) Update(ctx context.Context, id int64, patch domain.OrderUpdate) (domain.Order, error) {
	started := time.Now()

	var updated domain.Order
	err := e.tx.WithinTx(ctx, func(ctx context.Context, session domain.TxSession) error {
		order, err := session.OrderByID(ctx, id)
		if err != nil {
			return err
		}
		if order.Status.Locked() {
			return domain.ErrOrderLocked
		}

		if patch.ProductIDs != nil {
			distinct := dedupeIDs(patch.ProductIDs)
			if len(distinct) == 0 {
				return domain.ErrProductsNotFound
			}

			agg, err := session.ProductAggregate(ctx, distinct)
			if err != nil {
				return err
			}
			if agg.Count != len(distinct) {
				return domain.ErrProductsNotFound
			}

			if err := session.ReplaceOrderProducts(ctx, order.ID, distinct); err != nil {
				return err
			}
			order.TotalMinor = agg.TotalMinor
		}

		if patch.UserID != nil {
			exists, err := session.UserExists(ctx, *patch.UserID)
			if err != nil {
				return err
			}
			if !exists {
				return domain.ErrUserNotFound
			}
			order.User.ID = *patch.UserID
		}

		if patch.Status != nil {
			if !patch.Status.Valid() {
				return fmt.Errorf("unknown order status %d", int32(*patch.Status))
			}
			order.Status = *patch.Status
		}

		if err := session.UpdateOrder(ctx, order); err != nil {
			return err
		}

		if err := e.enqueueOrderEvent(ctx, session, kafka.EventTypeOrderUpdated, order.ID, order.User.ID, order.Status, order.TotalMinor); err != nil {
			return err
		}

		updated, err = session.OrderByID(ctx, order.ID)
		return err
	})
	if err != nil {
		e.recordFailure("update")
		return domain.Order{}, err
	}

	e.logger.WithFields(log.Fields{
		"order_id": updated.ID,
		"status":   updated.Status.String(),
	}).Info("order updated")

	if e.metrics != nil {
		e.metrics.RecordOrderUpdated()
		e.metrics.RecordOperationDuration("update", time.Since(started))
	}
	return updated, nil
}

// Delete удаляет заказ вместе со связями. Удаление допускается в любом
// статусе.
func (e *Engine) Delete(ctx context.Context, id int64) error {
	started := time.Now()

	err := e.tx.WithinTx(ctx, func(ctx context.Context, session domain.TxSession) error {
		order, err := session.OrderByID(ctx, id)
		if err != nil {
			return err
		}

		deleted, err := session.DeleteOrder(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.ErrOrderNotFound
		}

		return e.enqueueOrderEvent(ctx, session, kafka.EventTypeOrderDeleted, order.ID, order.User.ID, order.Status, order.TotalMinor)
	})
	if err != nil {
		e.recordFailure("delete")
		return err
	}

	e.logger.WithField("order_id", id).Info("order deleted")

	if e.metrics != nil {
		e.metrics.RecordOrderDeleted()
		e.metrics.RecordOperationDuration("delete", time.Since(started))
	}
	return nil
}

// Get возвращает заказ со связанным пользователем и товарами.
func (e *Engine) Get(ctx context.Context, id int64) (domain.Order, error) {
	return e.orders.Get(ctx, id)
}

// List возвращает все заказы, новые первыми.
func (e *Engine) List(ctx context.Context) ([]domain.Order, error) {
	return e.orders.List(ctx)
}

// ListByUser возвращает заказы пользователя. Пустая выборка считается
// отсутствием заказов и отдаётся как ErrOrderNotFound.
func (e *Engine) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	orders, err := e.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, domain.ErrOrderNotFound
	}
	return orders, nil
}

func (e *Engine) enqueueOrderEvent(ctx context.Context, session domain.TxSession, eventType kafka.EventType, orderID, userID int64, status domain.OrderStatus, totalMinor int64) error {
	event := kafka.NewOrderEvent(eventType, orderID, userID, status.String(), totalMinor)
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	if err := session.EnqueueOutbox(ctx, domain.OutboxMessage{
		AggregateType: outboxAggregateOrder,
		AggregateID:   strconv.FormatInt(orderID, 10),
		EventType:     string(eventType),
		Payload:       payload,
	}); err != nil {
		return err
	}

	if e.metrics != nil {
		e.metrics.RecordOutboxEvent()
	}
	return nil
}

func (e *Engine) recordFailure(operation string) {
	if e.metrics != nil {
		e.metrics.RecordOperationFailed(operation)
	}
}

// dedupeIDs убирает повторы, сохраняя порядок первого вхождения.
func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
