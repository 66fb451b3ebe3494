package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfline/shelfline-server/internal/domain"
	"github.com/shelfline/shelfline-server/internal/store"
	"github.com/shelfline/shelfline-server/internal/store/sqlite"
)

func setupTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := sqlite.Open(dbPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func setupLendingTest(t *testing.T) (*LendingService, *CatalogService) {
	t.Helper()
	st := setupTestStore(t)
	logger := testLogger()
	return NewLendingService(st, logger), NewCatalogService(st, logger)
}

func TestLendingBorrowAndReturn(t *testing.T) {
	lending, catalog := setupLendingTest(t)
	ctx := context.Background()

	book, err := catalog.CreateBook(ctx, BookInput{Title: "Dune", Author: "Frank Herbert", Copies: 2})
	require.NoError(t, err)

	record, err := lending.Borrow(ctx, "user-1", book.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBorrowed, record.Status)
	assert.Equal(t, "user-1", record.UserID)

	got, err := catalog.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Copies)

	returned, err := lending.Return(ctx, "user-1", book.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReturned, returned.Status)
	require.NotNil(t, returned.ReturnDate)
	assert.Equal(t, "Dune", returned.BookTitle)

	got, err = catalog.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Copies)
}

func TestLendingBorrowValidation(t *testing.T) {
	lending, catalog := setupLendingTest(t)
	ctx := context.Background()

	_, err := lending.Borrow(ctx, "", "bk-any")
	assert.ErrorIs(t, err, store.ErrInvalidInput)

	_, err = lending.Borrow(ctx, "user-1", "bk-missing")
	assert.ErrorIs(t, err, store.ErrBookNotFound)

	ebook, err := catalog.CreateBook(ctx, BookInput{Title: "PDF Only", IsEbook: true, Copies: 1})
	require.NoError(t, err)
	_, err = lending.Borrow(ctx, "user-1", ebook.ID)
	assert.ErrorIs(t, err, store.ErrNotBorrowable)

	empty, err := catalog.CreateBook(ctx, BookInput{Title: "Out of Stock", Copies: 0})
	require.NoError(t, err)
	_, err = lending.Borrow(ctx, "user-1", empty.ID)
	assert.ErrorIs(t, err, store.ErrNoCopies)
}

func TestLendingDoubleBorrow(t *testing.T) {
	lending, catalog := setupLendingTest(t)
	ctx := context.Background()

	book, err := catalog.CreateBook(ctx, BookInput{Title: "Hot Title", Copies: 5})
	require.NoError(t, err)

	_, err = lending.Borrow(ctx, "user-1", book.ID)
	require.NoError(t, err)

	_, err = lending.Borrow(ctx, "user-1", book.ID)
	assert.ErrorIs(t, err, store.ErrAlreadyBorrowed)

	// The refused attempt must not consume a copy.
	got, err := catalog.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Copies)
}

func TestLendingReturnWithoutLoan(t *testing.T) {
	lending, catalog := setupLendingTest(t)
	ctx := context.Background()

	book, err := catalog.CreateBook(ctx, BookInput{Title: "Untouched", Copies: 1})
	require.NoError(t, err)

	_, err = lending.Return(ctx, "user-1", book.ID)
	assert.ErrorIs(t, err, store.ErrNotBorrowed)

	_, err = lending.Return(ctx, "", book.ID)
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}

func TestLendingListUserBorrows(t *testing.T) {
	lending, catalog := setupLendingTest(t)
	ctx := context.Background()

	b1, err := catalog.CreateBook(ctx, BookInput{Title: "History One", Copies: 1})
	require.NoError(t, err)
	b2, err := catalog.CreateBook(ctx, BookInput{Title: "History Two", Copies: 1})
	require.NoError(t, err)

	_, err = lending.Borrow(ctx, "user-1", b1.ID)
	require.NoError(t, err)
	_, err = lending.Borrow(ctx, "user-1", b2.ID)
	require.NoError(t, err)
	_, err = lending.Return(ctx, "user-1", b1.ID)
	require.NoError(t, err)

	records, err := lending.ListUserBorrows(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Both loans show up, returned ones included, titles joined.
	titles := []string{records[0].BookTitle, records[1].BookTitle}
	assert.Contains(t, titles, "History One")
	assert.Contains(t, titles, "History Two")

	all, err := lending.ListAllBorrows(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := lending.ListUserBorrows(ctx, "user-ghost")
	require.NoError(t, err)
	assert.Empty(t, none)
}
