package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"schoollibrary/internal/middleware/auth"
	"schoollibrary/internal/microservices/http-api/models"
	"schoollibrary/internal/microservices/http-api/repository"
	"schoollibrary/internal/testutil/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newMockedBorrowService() (*borrowService, *MockUserRepository, *MockBookRepository, *MockTransactionRepository, *MockBorrowNotifier) {
	users := new(MockUserRepository)
	books := new(MockBookRepository)
	txns := new(MockTransactionRepository)
	notifier := new(MockBorrowNotifier)
	svc := NewBorrowService(users, books, txns, notifier, discardLogger()).(*borrowService)
	svc.now = func() time.Time { return fixedNow }
	return svc, users, books, txns, notifier
}

func TestBorrow_Success(t *testing.T) {
	svc, users, books, txns, notifier := newMockedBorrowService()
	ctx := context.Background()
	due := fixedNow.Add(14 * 24 * time.Hour)

	user := &models.User{ID: "u1", Name: "Ada", Email: "ada@school.test", Role: models.RoleStudent}
	book := &models.Book{ID: "b1", Title: "Dune", Quantity: 3, Available: 3}

	users.On("FindByID", ctx, "u1").Return(user, nil)
	books.On("FindByID", ctx, "b1").Return(book, nil)

	var order []string
	txns.On("Borrow", ctx, mock.MatchedBy(func(txn *models.BorrowTransaction) bool {
		return txn.UserID == "u1" && txn.BookID == "b1" &&
			txn.Status == models.StatusBorrowed &&
			txn.BorrowedAt.Equal(fixedNow) && txn.DueDate.Equal(due) &&
			txn.ReturnedAt == nil
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.BorrowTransaction).ID = "t1"
		order = append(order, "commit")
	}).Return(nil)
	notifier.On("BorrowConfirmed", ctx, *user, mock.AnythingOfType("models.Book"), mock.AnythingOfType("models.BorrowTransaction")).
		Run(func(args mock.Arguments) {
			order = append(order, "notify")
			assert.Equal(t, "t1", args.Get(3).(models.BorrowTransaction).ID)
		}).Return()

	txn, err := svc.Borrow(ctx, BorrowRequest{
		UserID:  "u1",
		BookID:  "b1",
		DueDate: due,
		Actor:   &auth.Identity{UserID: "librarian-1", Role: models.RoleLibrarian},
	})

	require.NoError(t, err)
	assert.Equal(t, "t1", txn.ID)
	assert.Equal(t, models.StatusBorrowed, txn.Status)
	assert.Equal(t, []string{"commit", "notify"}, order)
	txns.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestBorrow_UserNotFound(t *testing.T) {
	svc, users, books, txns, notifier := newMockedBorrowService()
	ctx := context.Background()

	users.On("FindByID", ctx, "ghost").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Borrow(ctx, BorrowRequest{UserID: "ghost", BookID: "b1", DueDate: fixedNow})

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
	books.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	txns.AssertNotCalled(t, "Borrow", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "BorrowConfirmed", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBorrow_BookNotFound(t *testing.T) {
	svc, users, books, txns, _ := newMockedBorrowService()
	ctx := context.Background()

	users.On("FindByID", ctx, "u1").Return(&models.User{ID: "u1"}, nil)
	books.On("FindByID", ctx, "nope").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Borrow(ctx, BorrowRequest{UserID: "u1", BookID: "nope", DueDate: fixedNow})

	assert.ErrorIs(t, err, ErrBookNotFound)
	txns.AssertNotCalled(t, "Borrow", mock.Anything, mock.Anything)
}

func TestBorrow_NoCopiesLeft(t *testing.T) {
	svc, users, books, txns, notifier := newMockedBorrowService()
	ctx := context.Background()

	users.On("FindByID", ctx, "u1").Return(&models.User{ID: "u1"}, nil)
	books.On("FindByID", ctx, "b1").Return(&models.Book{ID: "b1", Quantity: 2, Available: 0}, nil)

	_, err := svc.Borrow(ctx, BorrowRequest{UserID: "u1", BookID: "b1", DueDate: fixedNow})

	assert.ErrorIs(t, err, ErrBookUnavailable)
	assert.ErrorIs(t, err, ErrInvalidState)
	txns.AssertNotCalled(t, "Borrow", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "BorrowConfirmed", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBorrow_LostRaceForLastCopy(t *testing.T) {
	svc, users, books, txns, notifier := newMockedBorrowService()
	ctx := context.Background()

	users.On("FindByID", ctx, "u1").Return(&models.User{ID: "u1"}, nil)
	books.On("FindByID", ctx, "b1").Return(&models.Book{ID: "b1", Quantity: 1, Available: 1}, nil)
	txns.On("Borrow", ctx, mock.Anything).Return(repository.ErrNoCopyAvailable)

	_, err := svc.Borrow(ctx, BorrowRequest{UserID: "u1", BookID: "b1", DueDate: fixedNow})

	assert.ErrorIs(t, err, ErrBookUnavailable)
	notifier.AssertNotCalled(t, "BorrowConfirmed", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBorrow_StorageFailureIsNotMasked(t *testing.T) {
	svc, users, books, txns, _ := newMockedBorrowService()
	ctx := context.Background()
	boom := errors.New("connection reset")

	users.On("FindByID", ctx, "u1").Return(&models.User{ID: "u1"}, nil)
	books.On("FindByID", ctx, "b1").Return(&models.Book{ID: "b1", Quantity: 1, Available: 1}, nil)
	txns.On("Borrow", ctx, mock.Anything).Return(boom)

	_, err := svc.Borrow(ctx, BorrowRequest{UserID: "u1", BookID: "b1", DueDate: fixedNow})

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidState)
}

func TestBorrow_RequiresDueDate(t *testing.T) {
	svc, users, _, _, _ := newMockedBorrowService()

	_, err := svc.Borrow(context.Background(), BorrowRequest{UserID: "u1", BookID: "b1"})

	assert.ErrorIs(t, err, ErrMissingDueDate)
	users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestMarkReturned_UnknownTransaction(t *testing.T) {
	svc, _, _, txns, _ := newMockedBorrowService()
	ctx := context.Background()

	txns.On("Return", ctx, "missing", fixedNow).Return(nil, false, gorm.ErrRecordNotFound)

	_, err := svc.MarkReturned(ctx, "missing")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestMarkReturned_AlreadyReturned(t *testing.T) {
	svc, _, _, txns, _ := newMockedBorrowService()
	ctx := context.Background()
	returned := fixedNow.Add(-time.Hour)
	stored := &models.BorrowTransaction{ID: "t1", ReturnedAt: &returned, Status: models.StatusReturned}

	txns.On("Return", ctx, "t1", fixedNow).Return(stored, false, nil)

	txn, err := svc.MarkReturned(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, returned, *txn.ReturnedAt)
}

// Against a real database

type borrowFixture struct {
	db  *gorm.DB
	svc *borrowService
}

func newBorrowFixture(t *testing.T) *borrowFixture {
	db := testdb.New(t)
	svc := NewBorrowService(
		repository.NewUserRepository(db),
		repository.NewBookRepository(db),
		repository.NewTransactionRepository(db),
		NopNotifier{},
		discardLogger(),
	).(*borrowService)
	return &borrowFixture{db: db, svc: svc}
}

func (f *borrowFixture) available(t *testing.T, bookID string) int {
	var book models.Book
	require.NoError(t, f.db.First(&book, "id = ?", bookID).Error)
	return book.Available
}

func (f *borrowFixture) openLoans(t *testing.T, bookID string) int64 {
	var n int64
	require.NoError(t, f.db.Model(&models.BorrowTransaction{}).
		Where("book_id = ? AND returned_at IS NULL", bookID).Count(&n).Error)
	return n
}

func TestBorrow_ConcurrentLastCopy(t *testing.T) {
	f := newBorrowFixture(t)
	book := testdb.SeedBook(t, f.db, "9780441013593", 1)

	const borrowers = 8
	userIDs := make([]string, borrowers)
	for i := range userIDs {
		userIDs[i] = testdb.SeedUser(t, f.db, "student"+string(rune('a'+i))+"@school.test", models.RoleStudent).ID
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		refused   int
		other     []error
	)
	due := time.Now().UTC().Add(14 * 24 * time.Hour)

	for _, uid := range userIDs {
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()
			_, err := f.svc.Borrow(context.Background(), BorrowRequest{UserID: uid, BookID: book.ID, DueDate: due})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrBookUnavailable):
				refused++
			default:
				other = append(other, err)
			}
		}(uid)
	}
	wg.Wait()

	assert.Empty(t, other)
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, borrowers-1, refused)
	assert.Equal(t, 0, f.available(t, book.ID))
	assert.EqualValues(t, 1, f.openLoans(t, book.ID))
}

func TestBorrowAndReturn_KeepsAvailabilityInvariant(t *testing.T) {
	f := newBorrowFixture(t)
	ctx := context.Background()
	book := testdb.SeedBook(t, f.db, "9780140449136", 3)
	user := testdb.SeedUser(t, f.db, "reader@school.test", models.RoleStudent)

	// already past due when borrowed
	overdueDue := time.Now().UTC().Add(-48 * time.Hour)
	first, err := f.svc.Borrow(ctx, BorrowRequest{UserID: user.ID, BookID: book.ID, DueDate: overdueDue})
	require.NoError(t, err)
	_, err = f.svc.Borrow(ctx, BorrowRequest{UserID: user.ID, BookID: book.ID, DueDate: time.Now().UTC().Add(time.Hour)})
	require.NoError(t, err)

	assert.Equal(t, 3-int(f.openLoans(t, book.ID)), f.available(t, book.ID))
	assert.Equal(t, models.StatusOverdue, first.EffectiveStatus(time.Now().UTC()))

	returned, err := f.svc.MarkReturned(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReturned, returned.EffectiveStatus(time.Now().UTC()))
	assert.Equal(t, 2, f.available(t, book.ID))

	again, err := f.svc.MarkReturned(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReturned, again.Status)
	assert.Equal(t, 2, f.available(t, book.ID))
	assert.Equal(t, 3-int(f.openLoans(t, book.ID)), f.available(t, book.ID))

	history, err := f.svc.ListByBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
