package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Book is a catalog title. Available counts the copies not on loan: 0 <= Available <= Quantity.
type Book struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	ISBN      string    `gorm:"uniqueIndex;not null" json:"isbn"`
	Title     string    `gorm:"not null" json:"title"`
	Author    string    `gorm:"not null" json:"author"`
	Category  string    `gorm:"not null;index" json:"category"`
	Quantity  int       `gorm:"not null;check:chk_books_quantity,quantity >= 0" json:"quantity"`
	Available int       `gorm:"not null;check:chk_books_available,available >= 0 AND available <= quantity" json:"available"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (book *Book) BeforeCreate(tx *gorm.DB) (err error) {
	if book.ID == "" {
		book.ID = uuid.New().String()
	}
	return
}

func (Book) TableName() string {
	return "books"
}
