// Package store defines the persistence interface for the Shelfline server.
package store

import (
	"context"
	"time"

	"github.com/shelfline/shelfline-server/internal/domain"
)

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Categories
	CreateCategory(ctx context.Context, c *domain.Category) error
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]*domain.Category, error)

	// Books
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	UpdateBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, id string) error
	ListBooks(ctx context.Context) ([]*domain.Book, error)

	// Lending. Both mutations run as a single transaction of conditional
	// writes; they either fully apply or leave state untouched.
	BorrowBook(ctx context.Context, userID, bookID string, now time.Time) (*domain.BorrowRecord, error)
	ReturnBook(ctx context.Context, userID, bookID string, now time.Time) (*domain.BorrowRecord, error)
	ListUserBorrows(ctx context.Context, userID string) ([]*domain.BorrowRecord, error)
	ListAllBorrows(ctx context.Context) ([]*domain.BorrowRecord, error)
	ListOpenBorrows(ctx context.Context) ([]*domain.BorrowRecord, error)

	// Notifications
	CreateNotification(ctx context.Context, n *domain.Notification) error
	CreateNotificationIfAbsent(ctx context.Context, n *domain.Notification) (bool, error)
	ListUserNotifications(ctx context.Context, userID string) ([]*domain.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
}
