package service

import (
	"context"
	"log/slog"
	"time"

	"schoollibrary/internal/microservices/http-api/models"
	"schoollibrary/internal/microservices/http-api/repository"
	"schoollibrary/internal/notify"
)

const notifyTaskTimeout = 30 * time.Second

// OverdueSweep summarizes one overdue alert run.
type OverdueSweep struct {
	Overdue int
	Sent    int
	Failed  int
}

type NotificationService interface {
	BorrowNotifier
	SendOverdueAlerts(ctx context.Context) (*OverdueSweep, error)
}

// Dispatcher queues work off the request path.
type Dispatcher interface {
	Submit(ctx context.Context, task notify.Task) error
}

type notificationService struct {
	notifier   *notify.Notifier
	dispatcher Dispatcher
	logs       repository.NotificationRepository
	txns       repository.TransactionRepository
	logger     *slog.Logger
	now        func() time.Time
}

func NewNotificationService(
	notifier *notify.Notifier,
	dispatcher Dispatcher,
	logs repository.NotificationRepository,
	txns repository.TransactionRepository,
	logger *slog.Logger,
) NotificationService {
	return &notificationService{
		notifier:   notifier,
		dispatcher: dispatcher,
		logs:       logs,
		txns:       txns,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func contactOf(user models.User) notify.Contact {
	return notify.Contact{Name: user.Name, Email: user.Email, Phone: user.Phone}
}

// BorrowConfirmed queues the confirmation and returns at once.
func (s *notificationService) BorrowConfirmed(ctx context.Context, user models.User, book models.Book, txn models.BorrowTransaction) {
	note := notify.BorrowConfirmation(user.Name, book.Title, txn.DueDate)
	to := contactOf(user)
	txnID := txn.ID

	task := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, notifyTaskTimeout)
		defer cancel()

		results := s.notifier.Notify(ctx, to, note)
		s.record(ctx, user.ID, &txnID, models.KindBorrowConfirmation, results)
		return nil
	}

	if err := s.dispatcher.Submit(ctx, task); err != nil {
		s.logger.WarnContext(ctx, "notification_not_queued", "transaction_id", txnID, "error", err)
	}
}

// SendOverdueAlerts notifies every borrower of an open past-due loan and waits for delivery.
func (s *notificationService) SendOverdueAlerts(ctx context.Context) (*OverdueSweep, error) {
	now := s.now()
	overdue, err := s.txns.ListOverdue(ctx, now)
	if err != nil {
		return nil, err
	}

	sweep := &OverdueSweep{Overdue: len(overdue)}
	for _, txn := range overdue {
		if txn.User == nil || txn.Book == nil {
			continue
		}
		note := notify.OverdueAlert(txn.User.Name, txn.Book.Title, txn.DaysOverdue(now))
		results := s.notifier.Notify(ctx, contactOf(*txn.User), note)

		txnID := txn.ID
		s.record(ctx, txn.UserID, &txnID, models.KindOverdueAlert, results)
		for _, r := range results {
			if r.Err != nil {
				sweep.Failed++
			} else {
				sweep.Sent++
			}
		}
	}

	s.logger.InfoContext(ctx, "overdue_sweep_finished",
		"overdue", sweep.Overdue,
		"sent", sweep.Sent,
		"failed", sweep.Failed,
	)
	return sweep, nil
}

func (s *notificationService) record(ctx context.Context, userID string, txnID *string, kind models.NotificationKind, results []notify.Result) {
	for _, r := range results {
		entry := &models.NotificationLog{
			UserID:        userID,
			TransactionID: txnID,
			Kind:          kind,
			Channel:       string(r.Channel),
			Recipient:     r.Recipient,
			Status:        r.Status,
		}
		if r.Err != nil {
			entry.Error = r.Err.Error()
		}
		if err := s.logs.Create(ctx, entry); err != nil {
			s.logger.ErrorContext(ctx, "notification_log_failed", "user_id", userID, "error", err)
		}
	}
}
