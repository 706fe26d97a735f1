package domain

import (
	"context"
	"time"
)

// ProductAggregate — результат агрегатного запроса по набору товаров:
// сколько идентификаторов действительно существует и их суммарная цена.
type ProductAggregate struct {
	Count      int
	TotalMinor int64
}

// TxSession — операции, доступные внутри открытой транзакции хранилища.
// Сессия передаётся явно в каждый шаг; её время жизни ограничено WithinTx,
// глобальных дескрипторов БД бизнес-логика не видит.
type TxSession interface {
	// UserExists проверяет существование пользователя точечным чтением.
	UserExists(ctx context.Context, id int64) (bool, error)
	// UserByEmailForUpdate выполняет блокирующее чтение по email: найденная
	// строка захватывается эксклюзивной блокировкой до конца транзакции.
	// Возвращает nil, если строки нет.
	UserByEmailForUpdate(ctx context.Context, email string) (*User, error)
	// InsertUser вставляет пользователя и возвращает его с присвоенным ID.
	InsertUser(ctx context.Context, name, email string) (User, error)
	// ProductAggregate считает count и сумму цен по набору идентификаторов
	// одним агрегатным запросом. Пустой результат — {0, 0}, не ошибка.
	ProductAggregate(ctx context.Context, ids []int64) (ProductAggregate, error)
	// OrderByID загружает заказ со связями или ErrOrderNotFound.
	OrderByID(ctx context.Context, id int64) (Order, error)
	// InsertOrder вставляет заказ и его ассоциации, возвращает новый ID.
	InsertOrder(ctx context.Context, userID int64, productIDs []int64, totalMinor int64, status OrderStatus) (int64, error)
	// UpdateOrder перезаписывает изменяемые поля заказа по ID.
	UpdateOrder(ctx context.Context, order Order) error
	// ReplaceOrderProducts полностью замещает набор товаров заказа.
	ReplaceOrderProducts(ctx context.Context, orderID int64, productIDs []int64) error
	// DeleteOrder удаляет заказ; сообщает, была ли затронута строка.
	DeleteOrder(ctx context.Context, id int64) (bool, error)
	// EnqueueOutbox сохраняет событие в outbox в рамках той же транзакции.
	EnqueueOutbox(ctx context.Context, msg OutboxMessage) error
}

// TxRunner открывает транзакционную сессию: fn выполняется внутри одной
// транзакции и фиксируется целиком либо откатывается целиком.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, s TxSession) error) error
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository обслуживает polling-воркер: события попадают в outbox
// только через TxSession.EnqueueOutbox внутри бизнес-транзакции.
type OutboxRepository interface {
	PullPending(ctx context.Context, limit int) ([]OutboxMessage, error)
	Stats(ctx context.Context) (OutboxStats, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
