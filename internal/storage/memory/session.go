package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// txSession реализует domain.TxSession поверх Store. Мьютекс уже удерживается
// WithinTx, поэтому методы работают с состоянием напрямую.
type txSession struct {
	store *Store
}

func (s *txSession) UserExists(_ context.Context, id int64) (bool, error) {
	_, ok := s.store.users[id]
	return ok, nil
}

func (s *txSession) UserByEmailForUpdate(_ context.Context, email string) (*domain.User, error) {
	for _, user := range s.store.users {
		if user.Email == email {
			found := user
			return &found, nil
		}
	}
	return nil, nil
}

func (s *txSession) InsertUser(_ context.Context, name, email string) (domain.User, error) {
	for _, user := range s.store.users {
		if user.Email == email {
			return domain.User{}, domain.ErrEmailTaken
		}
	}

	s.store.userSeq++
	user := domain.User{ID: s.store.userSeq, Name: name, Email: email}
	s.store.users[user.ID] = user
	return user, nil
}

func (s *txSession) ProductAggregate(_ context.Context, ids []int64) (domain.ProductAggregate, error) {
	var agg domain.ProductAggregate
	for _, id := range ids {
		product, ok := s.store.products[id]
		if !ok {
			continue
		}
		agg.Count++
		agg.TotalMinor += product.PriceMinor
	}
	return agg, nil
}

func (s *txSession) OrderByID(_ context.Context, id int64) (domain.Order, error) {
	rec, ok := s.store.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return s.store.materializeOrderLocked(rec)
}

func (s *txSession) InsertOrder(_ context.Context, userID int64, productIDs []int64, totalMinor int64, status domain.OrderStatus) (int64, error) {
	now := time.Now().UTC()

	s.store.orderSeq++
	rec := orderRecord{
		id:         s.store.orderSeq,
		userID:     userID,
		productIDs: append([]int64(nil), productIDs...),
		totalMinor: totalMinor,
		status:     status,
		createdAt:  now,
		updatedAt:  now,
	}
	s.store.orders[rec.id] = rec
	return rec.id, nil
}

func (s *txSession) UpdateOrder(_ context.Context, order domain.Order) error {
	rec, ok := s.store.orders[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}

	rec.userID = order.User.ID
	rec.totalMinor = order.TotalMinor
	rec.status = order.Status
	rec.updatedAt = time.Now().UTC()
	s.store.orders[order.ID] = rec
	return nil
}

func (s *txSession) ReplaceOrderProducts(_ context.Context, orderID int64, productIDs []int64) error {
	rec, ok := s.store.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}

	rec.productIDs = append([]int64(nil), productIDs...)
	s.store.orders[orderID] = rec
	return nil
}

func (s *txSession) DeleteOrder(_ context.Context, id int64) (bool, error) {
	if _, ok := s.store.orders[id]; !ok {
		return false, nil
	}
	delete(s.store.orders, id)
	return true, nil
}

func (s *txSession) EnqueueOutbox(_ context.Context, msg domain.OutboxMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	s.store.outboxSeq++
	s.store.outbox[msg.ID] = &outboxRecord{
		msg:       msg,
		status:    "pending",
		seq:       s.store.outboxSeq,
		createdAt: now,
		updatedAt: now,
	}
	return nil
}

var _ domain.TxSession = (*txSession)(nil)
