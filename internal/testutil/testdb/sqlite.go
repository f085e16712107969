// Package testdb opens throwaway SQLite databases with the production schema.
package testdb

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"schoollibrary/internal/microservices/http-api/models"
)

// New returns a migrated database stored in t.TempDir().
//
// The pool holds a single connection: SQLite allows one writer, and queuing on
// the pool keeps concurrent tests free of "database is locked" errors while the
// conditional updates still decide who wins.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "library.db")
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", path)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// SeedBook inserts a book with every copy on the shelf.
func SeedBook(t *testing.T, db *gorm.DB, isbn string, quantity int) *models.Book {
	t.Helper()
	book := &models.Book{
		ISBN:      isbn,
		Title:     "Book " + isbn,
		Author:    "Author",
		Category:  "Fiction",
		Quantity:  quantity,
		Available: quantity,
	}
	require.NoError(t, db.Create(book).Error)
	return book
}

// SeedUser inserts a user with a placeholder password hash.
func SeedUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Email:    email,
		Name:     "User " + email,
		Role:     role,
		Password: "$2a$10$placeholderplaceholderplaceholderplaceholderplace",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
