package domain

import "context"

// UserRepository описывает нетранзакционные операции над пользователями.
// Создание пользователя идёт через TxRunner: ему нужна блокирующая проверка
// уникальности email внутри транзакции.
type UserRepository interface {
	// Get возвращает пользователя или ErrUserNotFound.
	Get(ctx context.Context, id int64) (User, error)
	// List возвращает всех пользователей в порядке возрастания ID.
	List(ctx context.Context) ([]User, error)
	// Update применяет частичное обновление и возвращает свежее состояние.
	Update(ctx context.Context, id int64, patch UserUpdate) (User, error)
	// Delete удаляет пользователя или возвращает ErrUserNotFound.
	Delete(ctx context.Context, id int64) error
}

// ProductRepository описывает операции над каталогом товаров.
type ProductRepository interface {
	// Create добавляет товар и возвращает его с присвоенным ID.
	Create(ctx context.Context, name string, priceMinor int64) (Product, error)
	// Get возвращает товар или ErrProductNotFound.
	Get(ctx context.Context, id int64) (Product, error)
	// List возвращает все товары в порядке возрастания ID.
	List(ctx context.Context) ([]Product, error)
	// ListByOrder возвращает товары заказа; ErrOrderNotFound, если заказа нет.
	ListByOrder(ctx context.Context, orderID int64) ([]Product, error)
	// Update применяет частичное обновление и возвращает свежее состояние.
	Update(ctx context.Context, id int64, patch ProductUpdate) (Product, error)
	// Delete удаляет товар или возвращает ErrProductNotFound.
	Delete(ctx context.Context, id int64) error
}

// OrderRepository описывает read-пути заказов: точечное чтение и листинги
// с жадной загрузкой связей. Мутации заказов идут только через TxRunner.
type OrderRepository interface {
	// Get возвращает заказ со связями или ErrOrderNotFound.
	Get(ctx context.Context, id int64) (Order, error)
	// List возвращает все заказы, новые первыми.
	List(ctx context.Context) ([]Order, error)
	// ListByUser возвращает заказы пользователя, новые первыми. Пустой
	// результат — валидный ответ; политику NOT_FOUND решает сервисный слой.
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
}
