package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"schoollibrary/internal/microservices/http-api/dto"
	"schoollibrary/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type BookHandler struct {
	books   service.BookService
	borrows service.BorrowService
	logger  *slog.Logger
}

func NewBookHandler(books service.BookService, borrows service.BorrowService, logger *slog.Logger) *BookHandler {
	return &BookHandler{books: books, borrows: borrows, logger: logger}
}

func (h *BookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.GET("/:id/transactions", h.Transactions)
}

// List the catalog ordered by title
func (h *BookHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	books, err := h.books.List(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

func (h *BookHandler) Create(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	book, err := h.books.Create(ctx, service.CreateBookInput{
		ISBN:     dto.NormalizeISBN(req.ISBN),
		Title:    strings.TrimSpace(req.Title),
		Author:   strings.TrimSpace(req.Author),
		Category: strings.TrimSpace(req.Category),
		Quantity: req.Quantity,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

func (h *BookHandler) Get(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	book, err := h.books.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// Update applies a partial change; unknown fields such as available are ignored
func (h *BookHandler) Update(c *gin.Context) {
	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	book, err := h.books.Update(ctx, c.Param("id"), req.Changes())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *BookHandler) Delete(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.books.Delete(ctx, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Book deleted successfully"})
}

// Transactions lists the loan history of one book, newest first
func (h *BookHandler) Transactions(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	txns, err := h.borrows.ListByBook(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTransactionList(txns, utcNow()))
}
