package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"schoollibrary/database"
	"schoollibrary/internal/config"
	"schoollibrary/internal/logger"
	"schoollibrary/internal/microservices/http-api/repository"
	"schoollibrary/internal/microservices/http-api/service"
	"schoollibrary/internal/notify"
	"schoollibrary/internal/seed"
)

const adminTimeout = 5 * time.Minute

// adminEnv is what the database commands share.
type adminEnv struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *gorm.DB
}

func openAdminEnv() (*adminEnv, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.OpenGorm(cfg, log)
	if err != nil {
		return nil, err
	}
	return &adminEnv{cfg: cfg, logger: log, db: db}, nil
}

func (e *adminEnv) close() {
	if err := database.Close(e.db); err != nil {
		e.logger.Warn("database_close_failed", "error", err)
	}
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openAdminEnv()
		if err != nil {
			return err
		}
		defer env.close()

		if err := database.Migrate(env.db, env.logger); err != nil {
			return err
		}
		fmt.Println("✓ Schema is up to date")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample users, books and one loan",
	Long: `Load the sample users, books and one loan.

Rows that already exist are left alone, so running seed twice is safe.
Every sample account uses the password "` + seed.DefaultPassword + `".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openAdminEnv()
		if err != nil {
			return err
		}
		defer env.close()

		if err := database.Migrate(env.db, env.logger); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), adminTimeout)
		defer cancel()

		users := repository.NewUserRepository(env.db)
		books := repository.NewBookRepository(env.db)
		txns := repository.NewTransactionRepository(env.db)
		report, err := seed.Run(ctx, seed.Services{
			Users:   service.NewUserService(users, env.logger),
			Books:   service.NewBookService(books, env.logger),
			Borrows: service.NewBorrowService(users, books, txns, service.NopNotifier{}, env.logger),
		}, env.logger)
		if err != nil {
			return err
		}

		fmt.Printf("✓ Users created: %d\n", report.UsersCreated)
		fmt.Printf("✓ Books created: %d\n", report.BooksCreated)
		if report.SampleLoan {
			fmt.Println("✓ Sample loan created")
		}
		return nil
	},
}

var notifyOverdueCmd = &cobra.Command{
	Use:   "notify-overdue",
	Short: "Send an overdue alert for every open loan past its due date",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openAdminEnv()
		if err != nil {
			return err
		}
		defer env.close()

		policy, err := notify.ParsePolicy(env.cfg.NotifyChannel)
		if err != nil {
			return err
		}
		notifier := notify.NewNotifier(policy, env.logger,
			notify.NewEmailSender(env.cfg.ResendAPIKey, env.cfg.EmailFrom),
			notify.NewSMSSender(env.cfg.TwilioAccountSID, env.cfg.TwilioAuthToken, env.cfg.TwilioPhoneNumber),
		)

		pool := notify.NewWorkerPool(1, env.logger)
		pool.Start()
		defer pool.Wait()

		ctx, cancel := context.WithTimeout(cmd.Context(), adminTimeout)
		defer cancel()

		notifications := service.NewNotificationService(
			notifier,
			pool,
			repository.NewNotificationRepository(env.db),
			repository.NewTransactionRepository(env.db),
			env.logger,
		)
		sweep, err := notifications.SendOverdueAlerts(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Overdue loans: %d, sent: %d, failed: %d\n", sweep.Overdue, sweep.Sent, sweep.Failed)
		return nil
	},
}
