package domain

import "time"

// NotificationType classifies a notification.
type NotificationType string

// Notification types. Reminder and Overdue are emitted by the sweep;
// Test is inserted through the admin endpoint.
const (
	NotificationReminder NotificationType = "reminder"
	NotificationOverdue  NotificationType = "overdue"
	NotificationTest     NotificationType = "test"
)

// Notification is a message delivered to a user through the polling API.
//
// BorrowID links sweep-generated notifications to the loan that triggered
// them and is empty for administrative ones. For a given (BorrowID, Type)
// pair at most one notification ever exists.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	BorrowID  string           `json:"borrow_id,omitempty"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
