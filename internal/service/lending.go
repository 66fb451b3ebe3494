package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shelfline/shelfline-server/internal/domain"
	"github.com/shelfline/shelfline-server/internal/store"
)

// LendingService enforces the borrow/return invariants of the ledger.
//
// It holds no state between calls; every invariant check travels to the
// store as a conditional write, so concurrent borrowers are serialized by
// the database rather than by this process.
type LendingService struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewLendingService creates a new lending service.
func NewLendingService(store store.Store, logger *slog.Logger) *LendingService {
	return &LendingService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Borrow checks out one copy of a book to a user.
//
// Preconditions, in order: the book exists, is not an eBook, has a copy
// available, and the user has no open loan for it. Violations surface as
// the matching store sentinel; on success the loan insert and the copy
// decrement have committed atomically.
func (s *LendingService) Borrow(ctx context.Context, userID, bookID string) (*domain.BorrowRecord, error) {
	if userID == "" {
		return nil, store.ErrInvalidInput.WithMessage("user_id is required")
	}

	record, err := s.store.BorrowBook(ctx, userID, bookID, s.now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("Book borrowed",
		"borrow_id", record.ID,
		"user_id", userID,
		"book_id", bookID,
	)
	return record, nil
}

// Return closes the user's open loan for a book and restores the copy.
// Fails with store.ErrNotBorrowed when no open loan exists.
func (s *LendingService) Return(ctx context.Context, userID, bookID string) (*domain.BorrowRecord, error) {
	if userID == "" {
		return nil, store.ErrInvalidInput.WithMessage("user_id is required")
	}

	record, err := s.store.ReturnBook(ctx, userID, bookID, s.now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("Book returned",
		"borrow_id", record.ID,
		"user_id", userID,
		"book_id", bookID,
	)
	return record, nil
}

// ListUserBorrows returns a user's loans joined with book title and author,
// newest borrow first.
func (s *LendingService) ListUserBorrows(ctx context.Context, userID string) ([]*domain.BorrowRecord, error) {
	records, err := s.store.ListUserBorrows(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user borrows: %w", err)
	}
	return records, nil
}

// ListAllBorrows returns every loan in the ledger, newest borrow first.
// Administrative view.
func (s *LendingService) ListAllBorrows(ctx context.Context) ([]*domain.BorrowRecord, error) {
	records, err := s.store.ListAllBorrows(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all borrows: %w", err)
	}
	return records, nil
}
