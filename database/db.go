package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"schoollibrary/internal/config"
	"schoollibrary/internal/microservices/http-api/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenGorm connects to PostgreSQL (pgx underneath) and verifies the connection.
func OpenGorm(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.IsDevelopment() && cfg.LogLevel == "debug" {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		// close the handle if ping fails to avoid resource leak
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("Connected to the database successfully")
	return db, nil
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB, logger *slog.Logger) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	logger.Info("Database migrations applied successfully")
	return nil
}

// Ping is used by the health check.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
