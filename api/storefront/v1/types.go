package storefrontv1

// User — wire-представление пользователя.
type User struct {
	Id    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Product — wire-представление товара. Цена в минимальных денежных единицах.
type Product struct {
	Id         int64  `json:"id"`
	Name       string `json:"name"`
	PriceMinor int64  `json:"price_minor"`
}

// Order — wire-представление заказа со связями.
type Order struct {
	Id         int64      `json:"id"`
	User       *User      `json:"user,omitempty"`
	Products   []*Product `json:"products,omitempty"`
	TotalMinor int64      `json:"total_minor"`
	Status     int32      `json:"status"`
}

type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type GetUserRequest struct {
	Id int64 `json:"id"`
}

type ListUsersRequest struct{}

type ListUsersResponse struct {
	Users []*User `json:"users"`
}

// UpdateUserRequest — частичное обновление: пустые строки означают
// «поле не менять».
type UpdateUserRequest struct {
	Id    int64  `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type DeleteUserRequest struct {
	Id int64 `json:"id"`
}

type DeleteUserResponse struct {
	Deleted bool   `json:"deleted"`
	Message string `json:"message"`
}

type CreateProductRequest struct {
	Name       string `json:"name"`
	PriceMinor int64  `json:"price_minor"`
}

type GetProductRequest struct {
	Id int64 `json:"id"`
}

type ListProductsRequest struct{}

type ListProductsResponse struct {
	Products []*Product `json:"products"`
}

// GetProductsByOrderIdRequest запрашивает товары конкретного заказа.
type GetProductsByOrderIdRequest struct {
	Id int64 `json:"id"`
}

// UpdateProductRequest — частичное обновление: нулевые значения означают
// «поле не менять» (цена всегда положительна).
type UpdateProductRequest struct {
	Id         int64  `json:"id"`
	Name       string `json:"name,omitempty"`
	PriceMinor int64  `json:"price_minor,omitempty"`
}

type DeleteProductRequest struct {
	Id int64 `json:"id"`
}

type DeleteProductResponse struct {
	Deleted bool   `json:"deleted"`
	Message string `json:"message"`
}

type CreateOrderRequest struct {
	UserId     int64   `json:"user_id"`
	ProductIds []int64 `json:"product_ids"`
}

type GetOrderRequest struct {
	Id int64 `json:"id"`
}

type ListOrdersRequest struct{}

// GetOrdersByUserIdRequest запрашивает заказы конкретного пользователя.
type GetOrdersByUserIdRequest struct {
	Id int64 `json:"id"`
}

type ListOrdersResponse struct {
	Orders []*Order `json:"orders"`
}

// UpdateOrderRequest — частичное обновление заказа. UserId == 0 и
// ProductIds == nil означают «не менять»; Status передаётся указателем,
// потому что нулевой ординал (CREATED) — валидное целевое значение.
type UpdateOrderRequest struct {
	Id         int64   `json:"id"`
	UserId     int64   `json:"user_id,omitempty"`
	ProductIds []int64 `json:"product_ids,omitempty"`
	Status     *int32  `json:"status,omitempty"`
}

type DeleteOrderRequest struct {
	Id int64 `json:"id"`
}

type DeleteOrderResponse struct {
	Deleted bool   `json:"deleted"`
	Message string `json:"message"`
}
