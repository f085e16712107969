package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BorrowStatus string

const (
	StatusBorrowed BorrowStatus = "BORROWED"
	StatusReturned BorrowStatus = "RETURNED"
	StatusOverdue  BorrowStatus = "OVERDUE" // derived, never stored
)

// BorrowTransaction records one user holding one copy of a book.
// Status is stored as BORROWED or RETURNED; OVERDUE comes from EffectiveStatus.
type BorrowTransaction struct {
	ID         string       `gorm:"primaryKey;type:uuid" json:"id"`
	UserID     string       `gorm:"type:uuid;not null;index" json:"userId"`
	BookID     string       `gorm:"type:uuid;not null;index" json:"bookId"`
	BorrowedAt time.Time    `gorm:"not null;index" json:"borrowedAt"`
	DueDate    time.Time    `gorm:"not null;index" json:"dueDate"`
	ReturnedAt *time.Time   `gorm:"index" json:"returnedAt"`
	Status     BorrowStatus `gorm:"type:varchar(16);not null;default:'BORROWED'" json:"status"`

	// Associations
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Book *Book `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
}

func (t *BorrowTransaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return
}

func (BorrowTransaction) TableName() string {
	return "borrow_transactions"
}

// EffectiveStatus is the single status rule: RETURNED once returnedAt is set,
// OVERDUE while open past the due date, BORROWED otherwise.
func (t *BorrowTransaction) EffectiveStatus(now time.Time) BorrowStatus {
	if t.ReturnedAt != nil {
		return StatusReturned
	}
	if now.After(t.DueDate) {
		return StatusOverdue
	}
	return StatusBorrowed
}

// DaysOverdue is the number of started days past due, 0 if not overdue.
func (t *BorrowTransaction) DaysOverdue(now time.Time) int {
	if t.EffectiveStatus(now) != StatusOverdue {
		return 0
	}
	late := now.Sub(t.DueDate)
	days := int(late / (24 * time.Hour))
	if late%(24*time.Hour) > 0 {
		days++
	}
	return days
}
