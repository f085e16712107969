package service

import (
	"errors"
)

// Error classes. Handlers map these to status codes with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnauthorized = errors.New("unauthorized")
)

var (
	ErrUserNotFound        = classified(ErrNotFound, "user not found")
	ErrBookNotFound        = classified(ErrNotFound, "book not found")
	ErrTransactionNotFound = classified(ErrNotFound, "transaction not found")

	ErrDuplicateISBN = classified(ErrConflict, "a book with this isbn already exists")
	ErrEmailInUse    = classified(ErrConflict, "email already in use")

	ErrBookUnavailable    = classified(ErrInvalidState, "book not available")
	ErrOutstandingLoans   = classified(ErrInvalidState, "has books that are not returned yet")
	ErrQuantityBelowLoans = classified(ErrInvalidState, "quantity lower than copies on loan")
	ErrMissingDueDate     = classified(ErrInvalidState, "due date is required")
	ErrEmptyUpdate        = classified(ErrInvalidState, "nothing to update")
	ErrInvalidRole        = classified(ErrInvalidState, "role must be one of STUDENT, LIBRARIAN, PRINCIPAL, ADMIN")

	ErrInvalidCredentials = classified(ErrUnauthorized, "invalid credentials")
	ErrInvalidSession     = classified(ErrUnauthorized, "invalid session")
)

// classError is a client-facing message that belongs to one error class.
type classError struct {
	msg   string
	class error
}

func classified(class error, msg string) error {
	return &classError{msg: msg, class: class}
}

func (e *classError) Error() string { return e.msg }

func (e *classError) Unwrap() error { return e.class }
