package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shelfline/shelfline-server/internal/domain"
	"github.com/shelfline/shelfline-server/internal/store"
)

const notificationColumns = `id, user_id, borrow_id, type, message, is_read, created_at`

// CreateNotification inserts a notification unconditionally.
// Used for administrative notifications that carry no borrow link.
func (s *Store) CreateNotification(ctx context.Context, n *domain.Notification) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, borrow_id, type, message, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID,
		n.UserID,
		nullString(n.BorrowID),
		string(n.Type),
		n.Message,
		boolToInt(n.IsRead),
		formatTime(n.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// CreateNotificationIfAbsent inserts a notification unless one already
// exists for the same (borrow_id, type) pair. The existence check and the
// insert are one statement, so concurrent sweep ticks cannot both insert.
// Returns true if a row was inserted.
func (s *Store) CreateNotificationIfAbsent(ctx context.Context, n *domain.Notification) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, borrow_id, type, message, is_read, created_at)
		SELECT ?, ?, ?, ?, ?, 0, ?
		WHERE NOT EXISTS (
			SELECT 1 FROM notifications WHERE borrow_id = ? AND type = ?
		)`,
		n.ID,
		n.UserID,
		n.BorrowID,
		string(n.Type),
		n.Message,
		formatTime(n.CreatedAt),
		n.BorrowID,
		string(n.Type),
	)
	if err != nil {
		// A concurrent insert that slipped past NOT EXISTS hits the unique
		// partial index; that is the same suppressed duplicate, not a failure.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return false, nil
		}
		return false, err
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return inserted > 0, nil
}

// ListUserNotifications returns a user's notifications, newest first.
func (s *Store) ListUserNotifications(ctx context.Context, userID string) ([]*domain.Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead flips is_read on. Marking an already-read
// notification is a no-op success; an unknown ID is store.ErrNotFound.
func (s *Store) MarkNotificationRead(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanNotification(scanner interface{ Scan(dest ...any) error }) (*domain.Notification, error) {
	var n domain.Notification

	var (
		borrowID  sql.NullString
		ntype     string
		isRead    int
		createdAt string
	)

	err := scanner.Scan(
		&n.ID,
		&n.UserID,
		&borrowID,
		&ntype,
		&n.Message,
		&isRead,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	n.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	n.Type = domain.NotificationType(ntype)
	n.IsRead = isRead != 0
	if borrowID.Valid {
		n.BorrowID = borrowID.String
	}

	return &n, nil
}
