package domain

import "errors"

var (
	// ErrUserNotFound возвращается, если пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrProductNotFound возвращается, если товар не найден.
	ErrProductNotFound = errors.New("product not found")
	// ErrProductsNotFound возвращается, если хотя бы один товар из набора
	// не существует: частичное совпадение трактуется как полный отказ.
	ErrProductsNotFound = errors.New("one or more products not found")
	// ErrOrderNotFound возвращается, если заказ не найден.
	ErrOrderNotFound = errors.New("order not found")
	// ErrEmailTaken возвращается при попытке занять уже использованный email.
	ErrEmailTaken = errors.New("user email already exists")
	// ErrOrderLocked возвращается при попытке изменить заказ после отгрузки.
	ErrOrderLocked = errors.New("order cannot be modified after being shipped")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsNotFound проверяет, относится ли ошибка к классу «сущность не найдена».
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrProductsNotFound) ||
		errors.Is(err, ErrOrderNotFound)
}
