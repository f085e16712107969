package handler

import (
	"log/slog"
	"net/http"

	"schoollibrary/internal/middleware/auth"
	"schoollibrary/internal/microservices/http-api/dto"
	"schoollibrary/internal/microservices/http-api/middleware"
	"schoollibrary/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the staff views. Every route sits behind the dashboard guard.
type DashboardHandler struct {
	books   service.BookService
	borrows service.BorrowService
	users   service.UserService
	stats   service.StatsService
	logger  *slog.Logger
}

func NewDashboardHandler(
	books service.BookService,
	borrows service.BorrowService,
	users service.UserService,
	stats service.StatsService,
	logger *slog.Logger,
) *DashboardHandler {
	return &DashboardHandler{books: books, borrows: borrows, users: users, stats: stats, logger: logger}
}

func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.Use(middleware.RequireResource(auth.ResourceDashboard))
	rg.GET("", h.Home)
	rg.GET("/books", h.Books)
	rg.GET("/books/:id", h.BookDetail)
	rg.GET("/users", h.Users)
}

func (h *DashboardHandler) Home(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := h.stats.Get(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.DashboardResponse{
		User:  middleware.CurrentIdentity(c),
		Stats: dto.NewStatsResponse(stats),
	})
}

func (h *DashboardHandler) Books(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	books, err := h.books.List(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

// BookDetail shows a book together with its loan history
func (h *DashboardHandler) BookDetail(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	id := c.Param("id")
	book, err := h.books.Get(ctx, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	txns, err := h.borrows.ListByBook(ctx, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.BookDetailResponse{
		Book:         *book,
		Transactions: dto.NewTransactionList(txns, utcNow()),
	})
}

func (h *DashboardHandler) Users(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := h.users.List(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
