package handler

import (
	"log/slog"

	"schoollibrary/internal/microservices/http-api/middleware"
	"schoollibrary/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// Services are the dependencies of the HTTP API.
type Services struct {
	Auth    service.AuthService
	Books   service.BookService
	Borrows service.BorrowService
	Users   service.UserService
	Stats   service.StatsService
	DB      Pinger
}

type RouterOptions struct {
	SecureCookies bool
	SignInLimiter *middleware.IPRateLimiter
}

// NewRouter builds the gin engine with every route of the library API.
func NewRouter(svc Services, opts RouterOptions, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Session(svc.Auth, logger))

	r.GET("/health", NewHealthHandler(svc.DB, logger).Check)

	var signInGuard []gin.HandlerFunc
	if opts.SignInLimiter != nil {
		signInGuard = append(signInGuard, middleware.RateLimit(opts.SignInLimiter))
	}
	NewAuthHandler(svc.Auth, opts.SecureCookies, logger).RegisterRoutes(r.Group("/auth"), signInGuard...)

	NewBookHandler(svc.Books, svc.Borrows, logger).RegisterRoutes(r.Group("/books"))
	NewTransactionHandler(svc.Borrows, logger).RegisterRoutes(r.Group("/transactions"))
	NewUserHandler(svc.Users, logger).RegisterRoutes(r.Group("/users"))
	r.GET("/stats", NewStatsHandler(svc.Stats, logger).Get)

	NewDashboardHandler(svc.Books, svc.Borrows, svc.Users, svc.Stats, logger).RegisterRoutes(r.Group("/dashboard"))

	return r
}
