package domain

// User — покупатель. Email глобально уникален; уникальность защищается
// блокирующей проверкой в транзакции создания и unique-индексом в БД.
type User struct {
	ID    int64
	Name  string
	Email string
}

// UserUpdate описывает частичное обновление пользователя. nil-поля не меняются.
type UserUpdate struct {
	Name  *string
	Email *string
}
