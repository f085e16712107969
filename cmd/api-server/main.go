package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"schoollibrary/database"
	"schoollibrary/internal/config"
	"schoollibrary/internal/logger"
	"schoollibrary/internal/microservices/http-api/dto"
	"schoollibrary/internal/microservices/http-api/handler"
	"schoollibrary/internal/microservices/http-api/middleware"
	"schoollibrary/internal/microservices/http-api/repository"
	"schoollibrary/internal/microservices/http-api/service"
	"schoollibrary/internal/notify"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(appLogger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	dto.RegisterValidators()

	db, err := database.OpenGorm(cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db, appLogger); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}

	rdb, err := repository.NewRedisClient(context.Background(), cfg.RedisAddr(), cfg.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	policy, err := notify.ParsePolicy(cfg.NotifyChannel)
	if err != nil {
		log.Fatalf("Invalid notification channel: %v", err)
	}
	notifier := notify.NewNotifier(policy, appLogger,
		notify.NewEmailSender(cfg.ResendAPIKey, cfg.EmailFrom),
		notify.NewSMSSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber),
	)

	pool := notify.NewWorkerPool(cfg.NotifyWorkers, appLogger)
	pool.Start()

	users := repository.NewUserRepository(db)
	books := repository.NewBookRepository(db)
	txns := repository.NewTransactionRepository(db)
	notifications := service.NewNotificationService(notifier, pool, repository.NewNotificationRepository(db), txns, appLogger)

	router := handler.NewRouter(handler.Services{
		Auth:    service.NewAuthService(users, repository.NewSessionRepository(rdb), cfg.SessionSecret, cfg.SessionTTL, appLogger),
		Books:   service.NewBookService(books, appLogger),
		Borrows: service.NewBorrowService(users, books, txns, notifications, appLogger),
		Users:   service.NewUserService(users, appLogger),
		Stats:   service.NewStatsService(repository.NewStatsRepository(db)),
		DB:      handler.PingFunc(func(ctx context.Context) error { return database.Ping(ctx, db) }),
	}, handler.RouterOptions{
		SecureCookies: cfg.IsProduction(),
		SignInLimiter: middleware.NewIPRateLimiter(cfg.SignInRateLimit, cfg.SignInRateBurst),
	}, appLogger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		appLogger.Info("starting_http_server", "addr", srv.Addr, "env", cfg.GoEnv, "notify_channel", cfg.NotifyChannel)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		appLogger.Info("received_shutdown_signal", "signal", sig.String())
	case err := <-errChan:
		appLogger.Error("server_error", "error", err)
		pool.Shutdown()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("server_shutdown_failed", "error", err)
	}

	// let queued notifications finish before the database goes away
	pool.Wait()
	appLogger.Info("server_stopped_gracefully")
}
