package handler

import (
	"context"

	"schoollibrary/internal/middleware/auth"
	"schoollibrary/internal/microservices/http-api/models"
	"schoollibrary/internal/microservices/http-api/repository"
	"schoollibrary/internal/microservices/http-api/service"

	"github.com/stretchr/testify/mock"
)

// MockBookService mocks the BookService interface
type MockBookService struct {
	mock.Mock
}

func (m *MockBookService) List(ctx context.Context) ([]models.Book, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockBookService) Get(ctx context.Context, id string) (*models.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookService) Create(ctx context.Context, in service.CreateBookInput) (*models.Book, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookService) Update(ctx context.Context, id string, changes repository.BookChanges) (*models.Book, error) {
	args := m.Called(ctx, id, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBorrowService mocks the BorrowService interface
type MockBorrowService struct {
	mock.Mock
}

func (m *MockBorrowService) Borrow(ctx context.Context, req service.BorrowRequest) (*models.BorrowTransaction, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BorrowTransaction), args.Error(1)
}

func (m *MockBorrowService) MarkReturned(ctx context.Context, transactionID string) (*models.BorrowTransaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BorrowTransaction), args.Error(1)
}

func (m *MockBorrowService) List(ctx context.Context) ([]models.BorrowTransaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BorrowTransaction), args.Error(1)
}

func (m *MockBorrowService) ListByBook(ctx context.Context, bookID string) ([]models.BorrowTransaction, error) {
	args := m.Called(ctx, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BorrowTransaction), args.Error(1)
}

// MockUserService mocks the UserService interface
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) List(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Create(ctx context.Context, in service.CreateUserInput) (*models.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) SignIn(ctx context.Context, email, password string) (*service.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockAuthService) ValidateSession(ctx context.Context, token string) (*auth.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Identity), args.Error(1)
}

func (m *MockAuthService) SignOut(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// MockStatsService mocks the StatsService interface
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) Get(ctx context.Context) (*repository.LibraryStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.LibraryStats), args.Error(1)
}
