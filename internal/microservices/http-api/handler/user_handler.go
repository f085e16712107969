package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"schoollibrary/internal/microservices/http-api/dto"
	"schoollibrary/internal/microservices/http-api/models"
	"schoollibrary/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users  service.UserService
	logger *slog.Logger
}

func NewUserHandler(users service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.DELETE("/:id", h.Delete)
}

func (h *UserHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := h.users.List(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	// validated by the binding already
	role, _ := models.ParseRole(req.Role)

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.users.Create(ctx, service.CreateUserInput{
		Email:    req.Email,
		Name:     strings.TrimSpace(req.Name),
		Password: req.Password,
		Role:     role,
		Phone:    req.Phone,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.users.Delete(ctx, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "User deleted successfully"})
}
