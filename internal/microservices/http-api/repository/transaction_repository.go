package repository

import (
	"context"
	"fmt"
	"time"

	"schoollibrary/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// TransactionRepository persists borrow transactions. Borrow and Return keep the
// book's available count and the transaction row in one database transaction.
type TransactionRepository interface {
	List(ctx context.Context) ([]models.BorrowTransaction, error)
	ListByBook(ctx context.Context, bookID string) ([]models.BorrowTransaction, error)
	FindByID(ctx context.Context, id string) (*models.BorrowTransaction, error)
	Borrow(ctx context.Context, txn *models.BorrowTransaction) error
	Return(ctx context.Context, id string, at time.Time) (*models.BorrowTransaction, bool, error)
	ListOverdue(ctx context.Context, now time.Time) ([]models.BorrowTransaction, error)
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) List(ctx context.Context) ([]models.BorrowTransaction, error) {
	var list []models.BorrowTransaction
	if err := r.db.WithContext(ctx).Order("borrowed_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return list, nil
}

func (r *transactionRepository) ListByBook(ctx context.Context, bookID string) ([]models.BorrowTransaction, error) {
	var list []models.BorrowTransaction
	if err := r.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("borrowed_at DESC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list book transactions: %w", err)
	}
	return list, nil
}

func (r *transactionRepository) FindByID(ctx context.Context, id string) (*models.BorrowTransaction, error) {
	var txn models.BorrowTransaction
	if err := r.db.WithContext(ctx).First(&txn, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

// Borrow takes one copy of txn.BookID and inserts txn. The decrement is
// conditional on available > 0, so concurrent borrows of the last copy cannot
// both succeed; the loser gets ErrNoCopyAvailable and nothing is written.
func (r *transactionRepository) Borrow(ctx context.Context, txn *models.BorrowTransaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Book{}).
			Where("id = ? AND available > 0", txn.BookID).
			UpdateColumn("available", gorm.Expr("available - 1"))
		if result.Error != nil {
			return fmt.Errorf("take copy: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNoCopyAvailable
		}

		if err := tx.Omit("User", "Book").Create(txn).Error; err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		return nil
	})
}

// Return closes the loan and gives the copy back. It reports changed=false
// without touching the book when the loan was already returned.
func (r *transactionRepository) Return(ctx context.Context, id string, at time.Time) (*models.BorrowTransaction, bool, error) {
	var txn models.BorrowTransaction
	changed := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.BorrowTransaction{}).
			Where("id = ? AND returned_at IS NULL", id).
			Updates(map[string]any{
				"returned_at": at,
				"status":      models.StatusReturned,
			})
		if result.Error != nil {
			return fmt.Errorf("close transaction: %w", result.Error)
		}

		if err := tx.First(&txn, "id = ?", id).Error; err != nil {
			return err
		}

		if result.RowsAffected == 0 {
			return nil
		}
		changed = true

		restore := tx.Model(&models.Book{}).
			Where("id = ? AND available < quantity", txn.BookID).
			UpdateColumn("available", gorm.Expr("available + 1"))
		if restore.Error != nil {
			return fmt.Errorf("restore copy: %w", restore.Error)
		}
		if restore.RowsAffected == 0 {
			return fmt.Errorf("restore copy of book %s: no copy on loan", txn.BookID)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &txn, changed, nil
}

// ListOverdue returns open loans past due, with borrower and book loaded.
func (r *transactionRepository) ListOverdue(ctx context.Context, now time.Time) ([]models.BorrowTransaction, error) {
	var list []models.BorrowTransaction
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Book").
		Where("returned_at IS NULL AND due_date < ?", now).
		Order("due_date ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list overdue transactions: %w", err)
	}
	return list, nil
}
