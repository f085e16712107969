package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"schoollibrary/internal/microservices/http-api/dto"
	"schoollibrary/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

const requestTimeout = 5 * time.Second

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// statusFor maps a service error class to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": msg}. Unclassified errors are logged and hidden from the client.
func respondError(c *gin.Context, log *slog.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.ErrorContext(c.Request.Context(), "request_failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		msg = "internal server error"
	}
	c.JSON(status, dto.ErrorResponse{Error: msg})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: dto.ValidationMessage(err)})
}

func utcNow() time.Time { return time.Now().UTC() }
