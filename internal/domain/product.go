package domain

// Product — товар каталога. Цена хранится в минимальных денежных единицах.
// Товар не знает о заказах, в которых участвует.
type Product struct {
	ID         int64
	Name       string
	PriceMinor int64
}

// ProductUpdate описывает частичное обновление товара. nil-поля не меняются.
type ProductUpdate struct {
	Name       *string
	PriceMinor *int64
}
