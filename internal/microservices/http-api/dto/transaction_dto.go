package dto

import (
	"time"

	"schoollibrary/internal/microservices/http-api/models"
)

// CreateTransactionRequest: payload to borrow a book. dueDate is RFC 3339.
type CreateTransactionRequest struct {
	UserID  string    `json:"userId" binding:"required"`
	BookID  string    `json:"bookId" binding:"required"`
	DueDate time.Time `json:"dueDate" binding:"required"`
}

// TransactionResponse carries the status as of the response time, so an open
// loan past its due date reads OVERDUE.
type TransactionResponse struct {
	ID         string              `json:"id"`
	UserID     string              `json:"userId"`
	BookID     string              `json:"bookId"`
	BorrowedAt time.Time           `json:"borrowedAt"`
	DueDate    time.Time           `json:"dueDate"`
	ReturnedAt *time.Time          `json:"returnedAt"`
	Status     models.BorrowStatus `json:"status"`
}

func NewTransactionResponse(txn *models.BorrowTransaction, now time.Time) TransactionResponse {
	return TransactionResponse{
		ID:         txn.ID,
		UserID:     txn.UserID,
		BookID:     txn.BookID,
		BorrowedAt: txn.BorrowedAt,
		DueDate:    txn.DueDate,
		ReturnedAt: txn.ReturnedAt,
		Status:     txn.EffectiveStatus(now),
	}
}

func NewTransactionList(txns []models.BorrowTransaction, now time.Time) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txns))
	for i := range txns {
		out = append(out, NewTransactionResponse(&txns[i], now))
	}
	return out
}
