package repository

import (
	"context"
	"fmt"
	"time"

	"schoollibrary/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type LibraryStats struct {
	TotalBooks     int64
	AvailableBooks int64
	TotalUsers     int64
	BorrowedBooks  int64 // open loans not yet due
	OverdueBooks   int64 // open loans past due
}

type StatsRepository interface {
	Collect(ctx context.Context, now time.Time) (*LibraryStats, error)
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

// Collect counts with the same rule as BorrowTransaction.EffectiveStatus.
func (r *statsRepository) Collect(ctx context.Context, now time.Time) (*LibraryStats, error) {
	db := r.db.WithContext(ctx)
	stats := &LibraryStats{}

	if err := db.Model(&models.Book{}).Count(&stats.TotalBooks).Error; err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}
	if err := db.Model(&models.Book{}).
		Select("COALESCE(SUM(available), 0)").
		Scan(&stats.AvailableBooks).Error; err != nil {
		return nil, fmt.Errorf("sum available: %w", err)
	}
	if err := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if err := db.Model(&models.BorrowTransaction{}).
		Where("returned_at IS NULL AND due_date >= ?", now).
		Count(&stats.BorrowedBooks).Error; err != nil {
		return nil, fmt.Errorf("count borrowed: %w", err)
	}
	if err := db.Model(&models.BorrowTransaction{}).
		Where("returned_at IS NULL AND due_date < ?", now).
		Count(&stats.OverdueBooks).Error; err != nil {
		return nil, fmt.Errorf("count overdue: %w", err)
	}

	return stats, nil
}
