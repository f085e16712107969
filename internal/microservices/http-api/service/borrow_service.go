package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"schoollibrary/internal/middleware/auth"
	"schoollibrary/internal/microservices/http-api/models"
	"schoollibrary/internal/microservices/http-api/repository"
)

// BorrowRequest asks for one copy of BookID on behalf of UserID.
type BorrowRequest struct {
	UserID  string
	BookID  string
	DueDate time.Time
	// Actor is the signed-in caller, nil on the public API.
	Actor *auth.Identity
}

// BorrowNotifier is told about a committed borrow. Implementations must not block the caller.
type BorrowNotifier interface {
	BorrowConfirmed(ctx context.Context, user models.User, book models.Book, txn models.BorrowTransaction)
}

type BorrowService interface {
	Borrow(ctx context.Context, req BorrowRequest) (*models.BorrowTransaction, error)
	MarkReturned(ctx context.Context, transactionID string) (*models.BorrowTransaction, error)
	List(ctx context.Context) ([]models.BorrowTransaction, error)
	ListByBook(ctx context.Context, bookID string) ([]models.BorrowTransaction, error)
}

type borrowService struct {
	users    repository.UserRepository
	books    repository.BookRepository
	txns     repository.TransactionRepository
	notifier BorrowNotifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewBorrowService(
	users repository.UserRepository,
	books repository.BookRepository,
	txns repository.TransactionRepository,
	notifier BorrowNotifier,
	logger *slog.Logger,
) BorrowService {
	return &borrowService{
		users:    users,
		books:    books,
		txns:     txns,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Borrow checks the user and book, then takes a copy and records the loan in
// one database transaction. The borrow confirmation is queued only after commit.
func (s *borrowService) Borrow(ctx context.Context, req BorrowRequest) (*models.BorrowTransaction, error) {
	if req.DueDate.IsZero() {
		return nil, ErrMissingDueDate
	}

	user, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	book, err := s.books.FindByID(ctx, req.BookID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	if book.Available <= 0 {
		return nil, ErrBookUnavailable
	}

	txn := &models.BorrowTransaction{
		UserID:     user.ID,
		BookID:     book.ID,
		BorrowedAt: s.now(),
		DueDate:    req.DueDate.UTC(),
		Status:     models.StatusBorrowed,
	}

	if err := s.txns.Borrow(ctx, txn); err != nil {
		if errors.Is(err, repository.ErrNoCopyAvailable) {
			return nil, ErrBookUnavailable
		}
		return nil, fmt.Errorf("borrow book %s: %w", book.ID, err)
	}

	attrs := []any{
		"transaction_id", txn.ID,
		"user_id", user.ID,
		"book_id", book.ID,
		"due_date", txn.DueDate,
	}
	if req.Actor != nil {
		attrs = append(attrs, "actor", req.Actor.UserID)
	}
	s.logger.InfoContext(ctx, "book_borrowed", attrs...)

	book.Available--
	s.notifier.BorrowConfirmed(ctx, *user, *book, *txn)

	return txn, nil
}

// MarkReturned closes a loan. Returning twice is not an error; the stored transaction comes back unchanged.
func (s *borrowService) MarkReturned(ctx context.Context, transactionID string) (*models.BorrowTransaction, error) {
	txn, changed, err := s.txns.Return(ctx, transactionID, s.now())
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("return transaction %s: %w", transactionID, err)
	}

	if changed {
		s.logger.InfoContext(ctx, "book_returned",
			"transaction_id", txn.ID,
			"book_id", txn.BookID,
			"late", txn.ReturnedAt.After(txn.DueDate),
		)
	}
	return txn, nil
}

func (s *borrowService) List(ctx context.Context) ([]models.BorrowTransaction, error) {
	return s.txns.List(ctx)
}

func (s *borrowService) ListByBook(ctx context.Context, bookID string) ([]models.BorrowTransaction, error) {
	return s.txns.ListByBook(ctx, bookID)
}

// NopNotifier drops borrow notifications.
type NopNotifier struct{}

func (NopNotifier) BorrowConfirmed(context.Context, models.User, models.Book, models.BorrowTransaction) {
}
