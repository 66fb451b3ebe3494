// Package sweep implements the recurring overdue-loan scan.
//
// Each run reads every open loan, buckets it by whole days elapsed since
// borrow, and emits at most one reminder and one overdue notification per
// loan. The insert is conditional on absence, so running the sweep more
// often than once per bucket is a no-op and concurrent runs cannot
// duplicate.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shelfline/shelfline-server/internal/domain"
	"github.com/shelfline/shelfline-server/internal/id"
	"github.com/shelfline/shelfline-server/internal/store"
)

// Default day thresholds, matching the lending policy: a loan runs five
// days, with a reminder from day three.
const (
	DefaultReminderDays = 3
	DefaultOverdueDays  = 5
)

// Config holds sweep thresholds.
type Config struct {
	ReminderDays int // whole elapsed days at which a reminder is due
	OverdueDays  int // whole elapsed days at which the loan is overdue
}

// Sweeper scans open loans and inserts due notifications.
type Sweeper struct {
	store  store.Store
	logger *slog.Logger
	cfg    Config

	// now is injectable for tests; elapsed days are computed from real
	// wall-clock time, never from tick counts.
	now func() time.Time
}

// New creates a sweeper. Zero thresholds fall back to the defaults.
func New(st store.Store, cfg Config, logger *slog.Logger) *Sweeper {
	if cfg.ReminderDays <= 0 {
		cfg.ReminderDays = DefaultReminderDays
	}
	if cfg.OverdueDays <= 0 {
		cfg.OverdueDays = DefaultOverdueDays
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sweeper{
		store:  st,
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
}

// SetNow overrides the clock. Test hook.
func (s *Sweeper) SetNow(now func() time.Time) {
	s.now = now
}

// RunOnce performs a single sweep over all open loans.
//
// A failure on one loan is logged and does not stop the rest of the scan;
// the error returned is the first one encountered, so callers can count
// failed ticks without re-running.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	records, err := s.store.ListOpenBorrows(ctx)
	if err != nil {
		return fmt.Errorf("list open borrows: %w", err)
	}

	now := s.now()
	var firstErr error
	inserted := 0

	for _, record := range records {
		ntype, ok := s.classify(elapsedDays(record.BorrowDate, now))
		if !ok {
			continue
		}

		n := &domain.Notification{
			ID:        id.MustGenerate("nt"),
			UserID:    record.UserID,
			BorrowID:  record.ID,
			Type:      ntype,
			Message:   s.message(ntype, record.BookTitle),
			CreatedAt: now,
		}

		created, err := s.store.CreateNotificationIfAbsent(ctx, n)
		if err != nil {
			s.logger.Warn("Sweep notification insert failed",
				"borrow_id", record.ID,
				"type", ntype,
				"error", err,
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if created {
			inserted++
			s.logger.Info("Notification created",
				"borrow_id", record.ID,
				"user_id", record.UserID,
				"type", ntype,
			)
		}
	}

	if inserted > 0 || firstErr != nil {
		s.logger.Info("Sweep finished",
			"open_loans", len(records),
			"inserted", inserted,
		)
	}
	return firstErr
}

// classify maps whole elapsed days onto a notification type.
func (s *Sweeper) classify(days int) (domain.NotificationType, bool) {
	switch {
	case days >= s.cfg.OverdueDays:
		return domain.NotificationOverdue, true
	case days >= s.cfg.ReminderDays:
		return domain.NotificationReminder, true
	default:
		return "", false
	}
}

func (s *Sweeper) message(ntype domain.NotificationType, title string) string {
	if ntype == domain.NotificationOverdue {
		return fmt.Sprintf("Overdue: You failed to return %q. A fine may apply.", title)
	}
	return fmt.Sprintf("Reminder: Please return %q before the %d-day limit.", title, s.cfg.OverdueDays)
}

// elapsedDays is the number of whole days between borrow time and now.
func elapsedDays(borrowed, now time.Time) int {
	d := now.Sub(borrowed)
	if d < 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}
