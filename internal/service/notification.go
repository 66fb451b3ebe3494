package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shelfline/shelfline-server/internal/domain"
	"github.com/shelfline/shelfline-server/internal/id"
	"github.com/shelfline/shelfline-server/internal/store"
)

// NotificationService exposes the read side of notifications to the
// polling client, plus the administrative test insert.
type NotificationService struct {
	store  store.Store
	logger *slog.Logger
}

// NewNotificationService creates a new notification service.
func NewNotificationService(store store.Store, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		store:  store,
		logger: logger,
	}
}

// ListForUser returns a user's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	notifications, err := s.store.ListUserNotifications(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead flips a notification to read. Marking one that is already read
// succeeds with no observable change.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID string) error {
	return s.store.MarkNotificationRead(ctx, notificationID)
}

// SendTest inserts an administrative test notification for a user.
// It carries no borrow link, so the per-loan dedup does not apply.
func (s *NotificationService) SendTest(ctx context.Context, userID, message string) (*domain.Notification, error) {
	if userID == "" {
		return nil, store.ErrInvalidInput.WithMessage("user_id is required")
	}
	if message == "" {
		message = "This is a test notification."
	}

	n := &domain.Notification{
		ID:        id.MustGenerate("nt"),
		UserID:    userID,
		Type:      domain.NotificationTest,
		Message:   message,
		CreatedAt: time.Now(),
	}

	if err := s.store.CreateNotification(ctx, n); err != nil {
		return nil, err
	}

	s.logger.Info("Test notification sent", "user_id", userID, "notification_id", n.ID)
	return n, nil
}
