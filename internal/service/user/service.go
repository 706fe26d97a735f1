package user

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Service реализует операции над пользователями. Создание выполняется в
// транзакции с блокирующей проверкой email: два конкурентных запроса с одним
// адресом сериализуются, и второй получает ErrEmailTaken.
type Service struct {
	tx     domain.TxRunner
	users  domain.UserRepository
	logger *log.Entry
}

// NewService конструирует сервис пользователей.
func NewService(tx domain.TxRunner, users domain.UserRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "user-service")
	}
	return &Service{
		tx:     tx,
		users:  users,
		logger: logger,
	}
}

// Create регистрирует пользователя. Email должен быть уникален: проверка
// через SELECT ... FOR UPDATE удерживает блокировку до конца транзакции,
// уникальный индекс добивает гонки, которые блокировка не покрыла.
func (s *Service) Create(ctx context.Context, name, email string) (domain.User, error) {
	var created domain.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context, session domain.TxSession) error {
		existing, err := session.UserByEmailForUpdate(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrEmailTaken
		}

		created, err = session.InsertUser(ctx, name, email)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}

	s.logger.WithFields(log.Fields{
		"user_id": created.ID,
		"email":   created.Email,
	}).Info("user created")
	return created, nil
}

// Get возвращает пользователя по ID.
func (s *Service) Get(ctx context.Context, id int64) (domain.User, error) {
	return s.users.Get(ctx, id)
}

// List возвращает всех пользователей.
func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// Update применяет частичное обновление. Смена email на занятый адрес
// завершается ErrEmailTaken.
func (s *Service) Update(ctx context.Context, id int64, patch domain.UserUpdate) (domain.User, error) {
	updated, err := s.users.Update(ctx, id, patch)
	if err != nil {
		return domain.User{}, err
	}

	s.logger.WithField("user_id", updated.ID).Info("user updated")
	return updated, nil
}

// Delete удаляет пользователя.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.WithField("user_id", id).Info("user deleted")
	return nil
}
