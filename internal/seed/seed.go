// Package seed loads the sample school library used for local development and demos.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"schoollibrary/internal/microservices/http-api/dto"
	"schoollibrary/internal/microservices/http-api/models"
	"schoollibrary/internal/microservices/http-api/service"
)

const (
	DefaultPassword = "password123"
	sampleLoanDays  = 14
)

var Users = []service.CreateUserInput{
	{Email: "admin@school.com", Name: "Admin User", Role: models.RoleAdmin, Phone: phone("+1234567890")},
	{Email: "librarian@school.com", Name: "Librarian User", Role: models.RoleLibrarian, Phone: phone("+1234567891")},
	{Email: "principal@school.com", Name: "Principal User", Role: models.RolePrincipal, Phone: phone("+1234567892")},
	{Email: "student1@school.com", Name: "Student One", Role: models.RoleStudent, Phone: phone("+1234567893")},
	{Email: "student2@school.com", Name: "Student Two", Role: models.RoleStudent, Phone: phone("+1234567894")},
}

var Books = []service.CreateBookInput{
	{ISBN: "978-0-13-110362-7", Title: "The C Programming Language", Author: "Brian W. Kernighan, Dennis M. Ritchie", Category: "Programming", Quantity: 5},
	{ISBN: "978-0-13-235088-4", Title: "Clean Code", Author: "Robert C. Martin", Category: "Programming", Quantity: 3},
	{ISBN: "978-0-201-63361-0", Title: "Design Patterns", Author: "Gang of Four", Category: "Software Design", Quantity: 4},
	{ISBN: "978-0-07-019307-5", Title: "The Pragmatic Programmer", Author: "David Thomas, Andrew Hunt", Category: "Programming", Quantity: 2},
	{ISBN: "978-0-596-00712-6", Title: "Learning SQL", Author: "Alan Beaulieu", Category: "Databases", Quantity: 3},
	{ISBN: "978-1-491-95182-8", Title: "To Kill a Mockingbird", Author: "Harper Lee", Category: "Fiction", Quantity: 6},
	{ISBN: "978-0-7432-7356-5", Title: "1984", Author: "George Orwell", Category: "Fiction", Quantity: 5},
	{ISBN: "978-0-14-028329-7", Title: "Pride and Prejudice", Author: "Jane Austen", Category: "Fiction", Quantity: 4},
}

func phone(s string) *string { return &s }

type Services struct {
	Users   service.UserService
	Books   service.BookService
	Borrows service.BorrowService
}

// Report counts what a run actually inserted.
type Report struct {
	UsersCreated int
	BooksCreated int
	SampleLoan   bool
}

// Run inserts the sample users and books, skipping rows that already exist, and
// lends the first book to the first student unless that loan is already recorded.
func Run(ctx context.Context, svc Services, logger *slog.Logger) (*Report, error) {
	report := &Report{}

	var borrower *models.User
	for _, in := range Users {
		in.Password = DefaultPassword
		user, err := svc.Users.Create(ctx, in)
		switch {
		case err == nil:
			report.UsersCreated++
		case errors.Is(err, service.ErrEmailInUse):
			logger.DebugContext(ctx, "seed_user_exists", "email", in.Email)
		default:
			return report, fmt.Errorf("seed user %s: %w", in.Email, err)
		}
		if borrower == nil && in.Role == models.RoleStudent && user != nil {
			borrower = user
		}
	}

	var first *models.Book
	for i, in := range Books {
		in.ISBN = dto.NormalizeISBN(in.ISBN)
		book, err := svc.Books.Create(ctx, in)
		switch {
		case err == nil:
			report.BooksCreated++
		case errors.Is(err, service.ErrDuplicateISBN):
			logger.DebugContext(ctx, "seed_book_exists", "isbn", in.ISBN)
		default:
			return report, fmt.Errorf("seed book %s: %w", in.ISBN, err)
		}
		if i == 0 {
			first = book
		}
	}

	// the sample loan is made only on a fresh database
	if borrower == nil || first == nil {
		logger.InfoContext(ctx, "seed_completed", "users_created", report.UsersCreated, "books_created", report.BooksCreated)
		return report, nil
	}

	_, err := svc.Borrows.Borrow(ctx, service.BorrowRequest{
		UserID:  borrower.ID,
		BookID:  first.ID,
		DueDate: time.Now().UTC().AddDate(0, 0, sampleLoanDays),
	})
	if err != nil {
		return report, fmt.Errorf("seed sample loan: %w", err)
	}
	report.SampleLoan = true

	logger.InfoContext(ctx, "seed_completed",
		"users_created", report.UsersCreated,
		"books_created", report.BooksCreated,
		"sample_loan", report.SampleLoan,
	)
	return report, nil
}
