package repository

import (
	"context"

	"schoollibrary/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, entry *models.NotificationLog) error
	ListByUser(ctx context.Context, userID string) ([]models.NotificationLog, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, entry *models.NotificationLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string) ([]models.NotificationLog, error) {
	var logs []models.NotificationLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}
