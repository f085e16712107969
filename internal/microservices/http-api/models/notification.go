package models

import "time"

type NotificationKind string

const (
	KindBorrowConfirmation NotificationKind = "BORROW_CONFIRMATION"
	KindOverdueAlert       NotificationKind = "OVERDUE_ALERT"
)

// NotificationLog keeps the outcome of one delivery attempt on one channel.
type NotificationLog struct {
	ID            int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        string           `gorm:"type:uuid;not null;index" json:"userId"`
	TransactionID *string          `gorm:"type:uuid;index" json:"transactionId,omitempty"`
	Kind          NotificationKind `gorm:"type:varchar(32);not null" json:"kind"`
	Channel       string           `gorm:"type:varchar(8);not null" json:"channel"` // email, sms
	Recipient     string           `json:"recipient"`
	Status        string           `gorm:"type:varchar(8);not null" json:"status"` // sent, failed
	Error         string           `json:"error,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
}

func (NotificationLog) TableName() string {
	return "notification_logs"
}

// All returns every model managed by AutoMigrate, parents first.
func All() []any {
	return []any{
		&User{},
		&Book{},
		&BorrowTransaction{},
		&NotificationLog{},
	}
}
