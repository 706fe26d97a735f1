package grpcsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	storefrontv1 "github.com/vladislavdragonenkov/storefront/api/storefront/v1"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/user"
)

// UserService реализует gRPC API пользователей.
type UserService struct {
	svc    *user.Service
	logger *log.Entry
}

// NewUserService конструирует контроллер пользователей.
func NewUserService(svc *user.Service, logger *log.Entry) *UserService {
	if logger == nil {
		logger = log.New().WithField("component", "grpc-user-service")
	}
	return &UserService{
		svc:    svc,
		logger: logger,
	}
}

// CreateUser регистрирует пользователя с уникальным email.
func (s *UserService) CreateUser(ctx context.Context, req *storefrontv1.CreateUserRequest) (*storefrontv1.User, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, status.Error(codes.InvalidArgument, "email is required")
	}

	created, err := s.svc.Create(ctx, req.Name, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, status.Errorf(codes.AlreadyExists, "User with email %s already exists", req.Email)
		}
		s.logger.WithError(err).Error("failed to create user")
		return nil, status.Error(codes.Internal, "failed to create user")
	}
	return toWireUser(created), nil
}

// GetUser возвращает пользователя по ID.
func (s *UserService) GetUser(ctx context.Context, req *storefrontv1.GetUserRequest) (*storefrontv1.User, error) {
	if req == nil || req.Id <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	found, err := s.svc.Get(ctx, req.Id)
	if err != nil {
		return nil, s.mapUserError(err, "GetUser", req.Id)
	}
	return toWireUser(found), nil
}

// ListUsers возвращает всех пользователей.
func (s *UserService) ListUsers(ctx context.Context, _ *storefrontv1.ListUsersRequest) (*storefrontv1.ListUsersResponse, error) {
	users, err := s.svc.List(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to list users")
		return nil, status.Error(codes.Internal, "failed to list users")
	}

	result := make([]*storefrontv1.User, 0, len(users))
	for _, u := range users {
		result = append(result, toWireUser(u))
	}
	return &storefrontv1.ListUsersResponse{Users: result}, nil
}

// UpdateUser применяет частичное обновление: пустые поля не меняются.
func (s *UserService) UpdateUser(ctx context.Context, req *storefrontv1.UpdateUserRequest) (*storefrontv1.User, error) {
	if req == nil || req.Id <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	var patch domain.UserUpdate
	if req.Name != "" {
		patch.Name = &req.Name
	}
	if req.Email != "" {
		patch.Email = &req.Email
	}

	updated, err := s.svc.Update(ctx, req.Id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, status.Errorf(codes.AlreadyExists, "User with email %s already exists", req.Email)
		}
		return nil, s.mapUserError(err, "UpdateUser", req.Id)
	}
	return toWireUser(updated), nil
}

// DeleteUser удаляет пользователя.
func (s *UserService) DeleteUser(ctx context.Context, req *storefrontv1.DeleteUserRequest) (*storefrontv1.DeleteUserResponse, error) {
	if req == nil || req.Id <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	if err := s.svc.Delete(ctx, req.Id); err != nil {
		return nil, s.mapUserError(err, "DeleteUser", req.Id)
	}

	return &storefrontv1.DeleteUserResponse{
		Deleted: true,
		Message: fmt.Sprintf("User with id %d deleted successfully", req.Id),
	}, nil
}

func (s *UserService) mapUserError(err error, operation string, id int64) error {
	s.logger.WithError(err).WithFields(log.Fields{
		"operation": operation,
		"id":        id,
	}).Warn("user operation failed")

	if errors.Is(err, domain.ErrUserNotFound) {
		return status.Error(codes.NotFound, "User not found")
	}
	return status.Error(codes.Internal, "internal error")
}

func toWireUser(user domain.User) *storefrontv1.User {
	return &storefrontv1.User{
		Id:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}
