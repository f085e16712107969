package repository

import (
	"context"
	"errors"
	"fmt"

	"schoollibrary/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// BookChanges is a partial update. Nil fields are left untouched.
type BookChanges struct {
	ISBN     *string
	Title    *string
	Author   *string
	Category *string
	Quantity *int
}

func (c BookChanges) Empty() bool {
	return c.ISBN == nil && c.Title == nil && c.Author == nil && c.Category == nil && c.Quantity == nil
}

type BookRepository interface {
	List(ctx context.Context) ([]models.Book, error)
	FindByID(ctx context.Context, id string) (*models.Book, error)
	FindByISBN(ctx context.Context, isbn string) (*models.Book, error)
	Create(ctx context.Context, book *models.Book) error
	Update(ctx context.Context, id string, changes BookChanges) (*models.Book, error)
	Delete(ctx context.Context, id string) error
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) List(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	if err := r.db.WithContext(ctx).Order("title ASC").Find(&books).Error; err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

func (r *bookRepository) FindByID(ctx context.Context, id string) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).Where("isbn = ?", isbn).First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		return fmt.Errorf("create book: %w", translateWriteError(err))
	}
	return nil
}

// Update applies changes in one statement. A quantity change moves available by
// the same delta and is refused when copies on loan would exceed the new quantity.
func (r *bookRepository) Update(ctx context.Context, id string, changes BookChanges) (*models.Book, error) {
	if changes.Empty() {
		return r.FindByID(ctx, id)
	}

	updates := map[string]any{}
	if changes.ISBN != nil {
		updates["isbn"] = *changes.ISBN
	}
	if changes.Title != nil {
		updates["title"] = *changes.Title
	}
	if changes.Author != nil {
		updates["author"] = *changes.Author
	}
	if changes.Category != nil {
		updates["category"] = *changes.Category
	}

	query := r.db.WithContext(ctx).Model(&models.Book{}).Where("id = ?", id)
	if changes.Quantity != nil {
		q := *changes.Quantity
		updates["quantity"] = q
		updates["available"] = gorm.Expr("available + (? - quantity)", q)
		query = query.Where("available + (? - quantity) >= 0", q)
	}

	result := query.Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("update book: %w", translateWriteError(result.Error))
	}

	if result.RowsAffected == 0 {
		// either the book is gone or the quantity guard failed
		if _, err := r.FindByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrOpenLoans
	}

	return r.FindByID(ctx, id)
}

// Delete removes a book with no copies on loan, together with its loan history.
func (r *bookRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// available = quantity holds exactly when no loan is open
		result := tx.Where("id = ? AND available = quantity", id).Delete(&models.Book{})
		if result.Error != nil {
			return fmt.Errorf("delete book: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Book{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return fmt.Errorf("delete book: %w", err)
			}
			if count == 0 {
				return ErrNotFound
			}
			return ErrOpenLoans
		}

		if err := tx.Where("book_id = ?", id).Delete(&models.BorrowTransaction{}).Error; err != nil {
			return fmt.Errorf("delete book history: %w", err)
		}
		return nil
	})
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
