package domain

import "time"

// OrderStatus описывает жизненный цикл заказа. Числовой порядок значим:
// проверка неизменяемости сравнивает статусы по ординалу (>= SHIPPED).
type OrderStatus int32

const (
	// OrderStatusCreated — заказ создан, оплата ещё не поступила.
	OrderStatusCreated OrderStatus = iota
	// OrderStatusPaid — оплата подтверждена.
	OrderStatusPaid
	// OrderStatusShipped — заказ передан в доставку; с этого момента он неизменяем.
	OrderStatusShipped
	// OrderStatusDelivered — заказ доставлен получателю.
	OrderStatusDelivered
	// OrderStatusCancelled — заказ отменён.
	OrderStatusCancelled
	// OrderStatusRefunded — средства возвращены клиенту.
	OrderStatusRefunded
	// OrderStatusLost — заказ утерян при доставке.
	OrderStatusLost
)

// String возвращает текстовое имя статуса для логов и сообщений.
func (s OrderStatus) String() string {
	switch s {
	case OrderStatusCreated:
		return "CREATED"
	case OrderStatusPaid:
		return "PAID"
	case OrderStatusShipped:
		return "SHIPPED"
	case OrderStatusDelivered:
		return "DELIVERED"
	case OrderStatusCancelled:
		return "CANCELLED"
	case OrderStatusRefunded:
		return "REFUNDED"
	case OrderStatusLost:
		return "LOST"
	default:
		return "UNKNOWN"
	}
}

// Valid сообщает, входит ли значение в объявленный диапазон статусов.
func (s OrderStatus) Valid() bool {
	return s >= OrderStatusCreated && s <= OrderStatusLost
}

// Locked сообщает, что заказ больше нельзя изменять. Гейт покрывает SHIPPED,
// DELIVERED и все терминальные статусы с ординалом выше SHIPPED.
func (s OrderStatus) Locked() bool {
	return s >= OrderStatusShipped
}

// Order агрегирует заказ вместе с загруженными связями: владельцем и товарами.
// TotalMinor — производное поле; оно пересчитывается на сервере из актуальных
// цен товаров и никогда не принимается от клиента.
type Order struct {
	ID         int64
	User       User
	Products   []Product
	TotalMinor int64
	Status     OrderStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ProductIDs возвращает идентификаторы товаров заказа в порядке загрузки.
func (o *Order) ProductIDs() []int64 {
	ids := make([]int64, 0, len(o.Products))
	for _, p := range o.Products {
		ids = append(ids, p.ID)
	}
	return ids
}

// OrderUpdate описывает частичное обновление заказа. nil-поля не меняются.
// ProductIDs == nil означает «ассоциации не трогать»; непустой срез полностью
// замещает текущий набор товаров.
type OrderUpdate struct {
	UserID     *int64
	ProductIDs []int64
	Status     *OrderStatus
}
