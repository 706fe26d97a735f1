package kafka

import (
	"strconv"
	"time"
)

// EventType определяет тип события
type EventType string

const (
	EventTypeOrderCreated EventType = "order.created"
	EventTypeOrderUpdated EventType = "order.updated"
	EventTypeOrderDeleted EventType = "order.deleted"
)

// Topics для Kafka
const (
	TopicOrderEvents     = "storefront.order.events"
	TopicDeadLetterQueue = "storefront.dlq" // Dead Letter Queue для failed messages
)

// Kafka headers для retry логики
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
)

// OrderEvent представляет событие заказа
type OrderEvent struct {
	EventType  EventType `json:"event_type"`
	OrderID    int64     `json:"order_id"`
	UserID     int64     `json:"user_id"`
	Status     string    `json:"status"`
	TotalMinor int64     `json:"total_minor"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewOrderEvent создает новое событие заказа
func NewOrderEvent(eventType EventType, orderID, userID int64, status string, totalMinor int64) *OrderEvent {
	return &OrderEvent{
		EventType:  eventType,
		OrderID:    orderID,
		UserID:     userID,
		Status:     status,
		TotalMinor: totalMinor,
		Timestamp:  time.Now(),
	}
}

// Key возвращает ключ партиционирования: события одного заказа попадают
// в одну партицию и сохраняют порядок.
func (e *OrderEvent) Key() string {
	return strconv.FormatInt(e.OrderID, 10)
}
