package dto

import (
	"strings"

	"schoollibrary/internal/microservices/http-api/models"
	"schoollibrary/internal/microservices/http-api/repository"
)

// CreateBookRequest: payload to add a title to the catalog
type CreateBookRequest struct {
	ISBN     string `json:"isbn" binding:"required,library_isbn"`
	Title    string `json:"title" binding:"required"`
	Author   string `json:"author" binding:"required"`
	Category string `json:"category" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

// UpdateBookRequest: partial update; available is derived and cannot be set
type UpdateBookRequest struct {
	ISBN     *string `json:"isbn" binding:"omitempty,library_isbn"`
	Title    *string `json:"title" binding:"omitempty,min=1"`
	Author   *string `json:"author" binding:"omitempty,min=1"`
	Category *string `json:"category" binding:"omitempty,min=1"`
	Quantity *int    `json:"quantity" binding:"omitempty,min=0"`
}

func (r UpdateBookRequest) Changes() repository.BookChanges {
	changes := repository.BookChanges{
		Title:    trimmed(r.Title),
		Author:   trimmed(r.Author),
		Category: trimmed(r.Category),
		Quantity: r.Quantity,
	}
	if r.ISBN != nil {
		isbn := NormalizeISBN(*r.ISBN)
		changes.ISBN = &isbn
	}
	return changes
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// BookDetailResponse: a book with its loan history
type BookDetailResponse struct {
	Book         models.Book           `json:"book"`
	Transactions []TransactionResponse `json:"transactions"`
}
