package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = gorm.ErrRecordNotFound
	// ErrDuplicateKey is returned when a unique index rejects a write.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrNoCopyAvailable is returned when a conditional decrement finds available = 0.
	ErrNoCopyAvailable = errors.New("no copy available")
	// ErrOpenLoans is returned when a delete or quantity change would orphan open loans.
	ErrOpenLoans = errors.New("open loans reference this record")
)

const pgUniqueViolation = "23505"

// translateWriteError maps driver level unique violations to ErrDuplicateKey.
func translateWriteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateKey
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicateKey
	}
	// sqlite without error translation
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicateKey
	}
	return err
}
