package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"schoollibrary/internal/middleware/auth"
	"schoollibrary/internal/microservices/http-api/models"
	"schoollibrary/internal/microservices/http-api/repository"
)

type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	Role     models.Role
	Phone    *string
}

type UserService interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, in CreateUserInput) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

type userService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, logger *slog.Logger) UserService {
	return &userService{users: users, logger: logger}
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *userService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	} else if !repository.IsNotFound(err) {
		return nil, err
	}

	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    email,
		Name:     in.Name,
		Role:     in.Role,
		Phone:    in.Phone,
		Password: hashed,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "user_created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *userService) Delete(ctx context.Context, id string) error {
	err := s.users.Delete(ctx, id)
	switch {
	case err == nil:
		s.logger.InfoContext(ctx, "user_deleted", "user_id", id)
		return nil
	case repository.IsNotFound(err):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrOpenLoans):
		return ErrOutstandingLoans
	default:
		return err
	}
}
