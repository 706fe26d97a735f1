package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// userRepositoryInMemory — простая in-memory реализация UserRepository.
type userRepositoryInMemory struct {
	store *Store
}

// NewUserRepository возвращает in-memory репозиторий пользователей.
// Создание пользователя идёт только через транзакционную сессию Store.
func NewUserRepository(store *Store) domain.UserRepository {
	return &userRepositoryInMemory{store: store}
}

func (r *userRepositoryInMemory) Get(_ context.Context, id int64) (domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *userRepositoryInMemory) List(_ context.Context) ([]domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	result := make([]domain.User, 0, len(r.store.users))
	for _, user := range r.store.users {
		result = append(result, user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *userRepositoryInMemory) Update(_ context.Context, id int64, patch domain.UserUpdate) (domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}

	if patch.Email != nil && *patch.Email != user.Email {
		for _, other := range r.store.users {
			if other.ID != id && other.Email == *patch.Email {
				return domain.User{}, domain.ErrEmailTaken
			}
		}
		user.Email = *patch.Email
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}

	r.store.users[id] = user
	return user, nil
}

func (r *userRepositoryInMemory) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.store.users, id)
	return nil
}

var _ domain.UserRepository = (*userRepositoryInMemory)(nil)
