package handler

import (
	"log/slog"
	"net/http"

	"schoollibrary/internal/microservices/http-api/dto"
	"schoollibrary/internal/microservices/http-api/middleware"
	"schoollibrary/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type TransactionHandler struct {
	borrows service.BorrowService
	logger  *slog.Logger
}

func NewTransactionHandler(borrows service.BorrowService, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{borrows: borrows, logger: logger}
}

func (h *TransactionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Borrow)
	rg.POST("/:id/return", h.Return)
}

func (h *TransactionHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	txns, err := h.borrows.List(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTransactionList(txns, utcNow()))
}

// Borrow lends one copy of a book
func (h *TransactionHandler) Borrow(c *gin.Context) {
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	txn, err := h.borrows.Borrow(ctx, service.BorrowRequest{
		UserID:  req.UserID,
		BookID:  req.BookID,
		DueDate: req.DueDate,
		Actor:   middleware.CurrentIdentity(c),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTransactionResponse(txn, utcNow()))
}

func (h *TransactionHandler) Return(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	txn, err := h.borrows.MarkReturned(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTransactionResponse(txn, utcNow()))
}
