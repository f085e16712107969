package handler

import (
	"context"
	"log/slog"
	"net/http"

	"schoollibrary/internal/microservices/http-api/dto"
	"schoollibrary/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	stats  service.StatsService
	logger *slog.Logger
}

func NewStatsHandler(stats service.StatsService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, logger: logger}
}

func (h *StatsHandler) Get(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := h.stats.Get(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewStatsResponse(stats))
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	db     Pinger
	logger *slog.Logger
}

func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.ErrorContext(ctx, "health_check_failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "connected"})
}
