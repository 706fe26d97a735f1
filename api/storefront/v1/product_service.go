package storefrontv1

import (
	"context"

	"google.golang.org/grpc"
)

const (
	ProductService_CreateProduct_FullMethodName         = "/storefront.v1.ProductService/CreateProduct"
	ProductService_GetProduct_FullMethodName            = "/storefront.v1.ProductService/GetProduct"
	ProductService_ListProducts_FullMethodName          = "/storefront.v1.ProductService/ListProducts"
	ProductService_ListProductsByOrderId_FullMethodName = "/storefront.v1.ProductService/ListProductsByOrderId"
	ProductService_UpdateProduct_FullMethodName         = "/storefront.v1.ProductService/UpdateProduct"
	ProductService_DeleteProduct_FullMethodName         = "/storefront.v1.ProductService/DeleteProduct"
)

// ProductServiceClient — клиентский интерфейс API товаров.
type ProductServiceClient interface {
	CreateProduct(ctx context.Context, in *CreateProductRequest, opts ...grpc.CallOption) (*Product, error)
	GetProduct(ctx context.Context, in *GetProductRequest, opts ...grpc.CallOption) (*Product, error)
	ListProducts(ctx context.Context, in *ListProductsRequest, opts ...grpc.CallOption) (*ListProductsResponse, error)
	ListProductsByOrderId(ctx context.Context, in *GetProductsByOrderIdRequest, opts ...grpc.CallOption) (*ListProductsResponse, error)
	UpdateProduct(ctx context.Context, in *UpdateProductRequest, opts ...grpc.CallOption) (*Product, error)
	DeleteProduct(ctx context.Context, in *DeleteProductRequest, opts ...grpc.CallOption) (*DeleteProductResponse, error)
}

type productServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewProductServiceClient создаёт клиента поверх установленного соединения.
func NewProductServiceClient(cc grpc.ClientConnInterface) ProductServiceClient {
	return &productServiceClient{cc}
}

func (c *productServiceClient) CreateProduct(ctx context.Context, in *CreateProductRequest, opts ...grpc.CallOption) (*Product, error) {
	out := new(Product)
	if err := c.cc.Invoke(ctx, ProductService_CreateProduct_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *productServiceClient) GetProduct(ctx context.Context, in *GetProductRequest, opts ...grpc.CallOption) (*Product, error) {
	out := new(Product)
	if err := c.cc.Invoke(ctx, ProductService_GetProduct_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *productServiceClient) ListProducts(ctx context.Context, in *ListProductsRequest, opts ...grpc.CallOption) (*ListProductsResponse, error) {
	out := new(ListProductsResponse)
	if err := c.cc.Invoke(ctx, ProductService_ListProducts_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *productServiceClient) ListProductsByOrderId(ctx context.Context, in *GetProductsByOrderIdRequest, opts ...grpc.CallOption) (*ListProductsResponse, error) {
	out := new(ListProductsResponse)
	if err := c.cc.Invoke(ctx, ProductService_ListProductsByOrderId_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *productServiceClient) UpdateProduct(ctx context.Context, in *UpdateProductRequest, opts ...grpc.CallOption) (*Product, error) {
	out := new(Product)
	if err := c.cc.Invoke(ctx, ProductService_UpdateProduct_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *productServiceClient) DeleteProduct(ctx context.Context, in *DeleteProductRequest, opts ...grpc.CallOption) (*DeleteProductResponse, error) {
	out := new(DeleteProductResponse)
	if err := c.cc.Invoke(ctx, ProductService_DeleteProduct_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ProductServiceServer — серверный интерфейс API товаров.
type ProductServiceServer interface {
	CreateProduct(context.Context, *CreateProductRequest) (*Product, error)
	GetProduct(context.Context, *GetProductRequest) (*Product, error)
	ListProducts(context.Context, *ListProductsRequest) (*ListProductsResponse, error)
	ListProductsByOrderId(context.Context, *GetProductsByOrderIdRequest) (*ListProductsResponse, error)
	UpdateProduct(context.Context, *UpdateProductRequest) (*Product, error)
	DeleteProduct(context.Context, *DeleteProductRequest) (*DeleteProductResponse, error)
}

// RegisterProductServiceServer регистрирует реализацию на gRPC-сервере.
func RegisterProductServiceServer(s grpc.ServiceRegistrar, srv ProductServiceServer) {
	s.RegisterService(&ProductService_ServiceDesc, srv)
}

func _ProductService_CreateProduct_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CreateProductRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProductServiceServer).CreateProduct(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ProductService_CreateProduct_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ProductServiceServer).CreateProduct(ctx, req.(*CreateProductRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ProductService_GetProduct_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetProductRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProductServiceServer).GetProduct(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ProductService_GetProduct_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ProductServiceServer).GetProduct(ctx, req.(*GetProductRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ProductService_ListProducts_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListProductsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProductServiceServer).ListProducts(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ProductService_ListProducts_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ProductServiceServer).ListProducts(ctx, req.(*ListProductsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ProductService_ListProductsByOrderId_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetProductsByOrderIdRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProductServiceServer).ListProductsByOrderId(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ProductService_ListProductsByOrderId_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ProductServiceServer).ListProductsByOrderId(ctx, req.(*GetProductsByOrderIdRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ProductService_UpdateProduct_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(UpdateProductRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProductServiceServer).UpdateProduct(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ProductService_UpdateProduct_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ProductServiceServer).UpdateProduct(ctx, req.(*UpdateProductRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ProductService_DeleteProduct_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DeleteProductRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProductServiceServer).DeleteProduct(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ProductService_DeleteProduct_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ProductServiceServer).DeleteProduct(ctx, req.(*DeleteProductRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ProductService_ServiceDesc — дескриптор сервиса для grpc.RegisterService.
var ProductService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "storefront.v1.ProductService",
	HandlerType: (*ProductServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateProduct", Handler: _ProductService_CreateProduct_Handler},
		{MethodName: "GetProduct", Handler: _ProductService_GetProduct_Handler},
		{MethodName: "ListProducts", Handler: _ProductService_ListProducts_Handler},
		{MethodName: "ListProductsByOrderId", Handler: _ProductService_ListProductsByOrderId_Handler},
		{MethodName: "UpdateProduct", Handler: _ProductService_UpdateProduct_Handler},
		{MethodName: "DeleteProduct", Handler: _ProductService_DeleteProduct_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "api/storefront/v1/product_service.go",
}
