package service

import (
	"context"
	"errors"
	"log/slog"

	"schoollibrary/internal/microservices/http-api/models"
	"schoollibrary/internal/microservices/http-api/repository"
)

type CreateBookInput struct {
	ISBN     string
	Title    string
	Author   string
	Category string
	Quantity int
}

type BookService interface {
	List(ctx context.Context) ([]models.Book, error)
	Get(ctx context.Context, id string) (*models.Book, error)
	Create(ctx context.Context, in CreateBookInput) (*models.Book, error)
	Update(ctx context.Context, id string, changes repository.BookChanges) (*models.Book, error)
	Delete(ctx context.Context, id string) error
}

type bookService struct {
	books  repository.BookRepository
	logger *slog.Logger
}

func NewBookService(books repository.BookRepository, logger *slog.Logger) BookService {
	return &bookService{books: books, logger: logger}
}

func (s *bookService) List(ctx context.Context) ([]models.Book, error) {
	return s.books.List(ctx)
}

func (s *bookService) Get(ctx context.Context, id string) (*models.Book, error) {
	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

// Create adds a title with every copy on the shelf.
func (s *bookService) Create(ctx context.Context, in CreateBookInput) (*models.Book, error) {
	if _, err := s.books.FindByISBN(ctx, in.ISBN); err == nil {
		return nil, ErrDuplicateISBN
	} else if !repository.IsNotFound(err) {
		return nil, err
	}

	book := &models.Book{
		ISBN:      in.ISBN,
		Title:     in.Title,
		Author:    in.Author,
		Category:  in.Category,
		Quantity:  in.Quantity,
		Available: in.Quantity,
	}

	if err := s.books.Create(ctx, book); err != nil {
		// lost a race with another create of the same isbn
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateISBN
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "book_created", "book_id", book.ID, "isbn", book.ISBN, "quantity", book.Quantity)
	return book, nil
}

func (s *bookService) Update(ctx context.Context, id string, changes repository.BookChanges) (*models.Book, error) {
	if changes.Empty() {
		return nil, ErrEmptyUpdate
	}

	book, err := s.books.Update(ctx, id, changes)
	switch {
	case err == nil:
		return book, nil
	case repository.IsNotFound(err):
		return nil, ErrBookNotFound
	case errors.Is(err, repository.ErrOpenLoans):
		return nil, ErrQuantityBelowLoans
	case errors.Is(err, repository.ErrDuplicateKey):
		return nil, ErrDuplicateISBN
	default:
		return nil, err
	}
}

func (s *bookService) Delete(ctx context.Context, id string) error {
	err := s.books.Delete(ctx, id)
	switch {
	case err == nil:
		s.logger.InfoContext(ctx, "book_deleted", "book_id", id)
		return nil
	case repository.IsNotFound(err):
		return ErrBookNotFound
	case errors.Is(err, repository.ErrOpenLoans):
		return ErrOutstandingLoans
	default:
		return err
	}
}
