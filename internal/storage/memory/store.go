package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// orderRecord хранит заказ в нормализованном виде: ссылки на пользователя и
// товары раскрываются при чтении, как это делает SQL-реализация через JOIN.
type orderRecord struct {
	id         int64
	userID     int64
	productIDs []int64
	totalMinor int64
	status     domain.OrderStatus
	createdAt  time.Time
	updatedAt  time.Time
}

// outboxRecord хранит сообщение и служебные поля для in-memory реализации.
type outboxRecord struct {
	msg        domain.OutboxMessage
	status     string
	seq        int64
	attemptCnt int
	createdAt  time.Time
	updatedAt  time.Time
}

// Store — in-memory хранилище для локальной разработки и тестов. Один мьютекс
// на всё состояние: транзакции выполняются строго последовательно, что
// эквивалентно максимально жёсткому уровню изоляции.
type Store struct {
	mu sync.Mutex

	users    map[int64]domain.User
	products map[int64]domain.Product
	orders   map[int64]orderRecord
	outbox   map[string]*outboxRecord

	userSeq    int64
	productSeq int64
	orderSeq   int64
	outboxSeq  int64
}

// NewStore создаёт пустое in-memory хранилище.
func NewStore() *Store {
	return &Store{
		users:    make(map[int64]domain.User),
		products: make(map[int64]domain.Product),
		orders:   make(map[int64]orderRecord),
		outbox:   make(map[string]*outboxRecord),
	}
}

// WithinTx выполняет fn под общим мьютексом. Перед запуском снимается слепок
// состояния; ошибка из fn восстанавливает его, имитируя откат транзакции.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, session domain.TxSession) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := s.snapshotLocked()
	if err := fn(ctx, &txSession{store: s}); err != nil {
		s.restoreLocked(snapshot)
		return err
	}
	return nil
}

type storeSnapshot struct {
	users    map[int64]domain.User
	products map[int64]domain.Product
	orders   map[int64]orderRecord
	outbox   map[string]*outboxRecord

	userSeq    int64
	productSeq int64
	orderSeq   int64
	outboxSeq  int64
}

func (s *Store) snapshotLocked() storeSnapshot {
	snap := storeSnapshot{
		users:      make(map[int64]domain.User, len(s.users)),
		products:   make(map[int64]domain.Product, len(s.products)),
		orders:     make(map[int64]orderRecord, len(s.orders)),
		outbox:     make(map[string]*outboxRecord, len(s.outbox)),
		userSeq:    s.userSeq,
		productSeq: s.productSeq,
		orderSeq:   s.orderSeq,
		outboxSeq:  s.outboxSeq,
	}
	for id, user := range s.users {
		snap.users[id] = user
	}
	for id, product := range s.products {
		snap.products[id] = product
	}
	for id, order := range s.orders {
		order.productIDs = append([]int64(nil), order.productIDs...)
		snap.orders[id] = order
	}
	for id, rec := range s.outbox {
		clone := *rec
		snap.outbox[id] = &clone
	}
	return snap
}

func (s *Store) restoreLocked(snap storeSnapshot) {
	s.users = snap.users
	s.products = snap.products
	s.orders = snap.orders
	s.outbox = snap.outbox
	s.userSeq = snap.userSeq
	s.productSeq = snap.productSeq
	s.orderSeq = snap.orderSeq
	s.outboxSeq = snap.outboxSeq
}

// materializeOrderLocked собирает заказ со связями по образцу SQL-чтения.
func (s *Store) materializeOrderLocked(rec orderRecord) (domain.Order, error) {
	user, ok := s.users[rec.userID]
	if !ok {
		return domain.Order{}, domain.ErrUserNotFound
	}

	products := make([]domain.Product, 0, len(rec.productIDs))
	for _, productID := range rec.productIDs {
		if product, ok := s.products[productID]; ok {
			products = append(products, product)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })

	return domain.Order{
		ID:         rec.id,
		User:       user,
		Products:   products,
		TotalMinor: rec.totalMinor,
		Status:     rec.status,
		CreatedAt:  rec.createdAt,
		UpdatedAt:  rec.updatedAt,
	}, nil
}

var _ domain.TxRunner = (*Store)(nil)
