package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/shelfline/shelfline-server/internal/domain"
	"github.com/shelfline/shelfline-server/internal/id"
	"github.com/shelfline/shelfline-server/internal/store"
)

// borrowColumns is the ordered list of columns selected in borrow queries.
// Must match the scan order in scanBorrow.
const borrowColumns = `br.id, br.user_id, br.book_id, br.borrow_date,
	br.return_date, br.status, b.title, b.author`

const borrowFrom = ` FROM borrow_records br JOIN books b ON br.book_id = b.id`

// scanBorrow scans a sql.Row (or sql.Rows via its Scan method) into a domain.BorrowRecord.
func scanBorrow(scanner interface{ Scan(dest ...any) error }) (*domain.BorrowRecord, error) {
	var r domain.BorrowRecord

	var (
		borrowDate string
		returnDate sql.NullString
		status     string
		author     sql.NullString
	)

	err := scanner.Scan(
		&r.ID,
		&r.UserID,
		&r.BookID,
		&borrowDate,
		&returnDate,
		&status,
		&r.BookTitle,
		&author,
	)
	if err != nil {
		return nil, err
	}

	r.BorrowDate, err = parseTime(borrowDate)
	if err != nil {
		return nil, err
	}
	r.ReturnDate, err = parseNullableTime(returnDate)
	if err != nil {
		return nil, err
	}

	r.Status = domain.BorrowStatus(status)
	if author.Valid {
		r.BookAuthor = author.String
	}

	return &r, nil
}

// BorrowBook checks out one copy of a book to a user.
//
// The stock check and the open-loan check are both expressed as conditional
// writes inside one transaction, so two borrowers racing for the last copy
// (or the same user borrowing twice) cannot both commit. On any failure the
// transaction rolls back and no state changes.
//
// Returns store.ErrBookNotFound, store.ErrNotBorrowable, store.ErrNoCopies
// or store.ErrAlreadyBorrowed when a precondition fails.
func (s *Store) BorrowBook(ctx context.Context, userID, bookID string, now time.Time) (*domain.BorrowRecord, error) {
	recordID, err := id.Generate("br")
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Guarded decrement first. Issuing the conditional write as the
	// transaction's opening statement makes it a write transaction from
	// the start, so concurrent borrowers serialize on the database lock
	// instead of racing a read snapshot.
	result, err := tx.ExecContext(ctx, `
		UPDATE books SET copies = copies - 1
		WHERE id = ? AND is_ebook = 0 AND copies > 0`, bookID)
	if err != nil {
		return nil, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Distinguish why the guard refused.
		var isEbook int
		err = tx.QueryRowContext(ctx,
			`SELECT is_ebook FROM books WHERE id = ?`, bookID).Scan(&isEbook)
		if err == sql.ErrNoRows {
			return nil, store.ErrBookNotFound
		}
		if err != nil {
			return nil, err
		}
		if isEbook != 0 {
			return nil, store.ErrNotBorrowable
		}
		return nil, store.ErrNoCopies
	}

	// Guarded insert: refuse a second open loan for the same (user, book).
	result, err = tx.ExecContext(ctx, `
		INSERT INTO borrow_records (id, user_id, book_id, borrow_date, status)
		SELECT ?, ?, ?, ?, 'borrowed'
		WHERE NOT EXISTS (
			SELECT 1 FROM borrow_records
			WHERE user_id = ? AND book_id = ? AND status = 'borrowed'
		)`,
		recordID, userID, bookID, formatTime(now), userID, bookID)
	if err != nil {
		// The unique partial index backs up the NOT EXISTS guard.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, store.ErrAlreadyBorrowed
		}
		return nil, err
	}
	n, err = result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, store.ErrAlreadyBorrowed
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &domain.BorrowRecord{
		ID:         recordID,
		UserID:     userID,
		BookID:     bookID,
		BorrowDate: now.UTC(),
		Status:     domain.StatusBorrowed,
	}, nil
}

// ReturnBook closes a user's open loan for a book and restores the copy.
//
// The status transition is a single conditional update; zero rows affected
// means there was no open loan, and nothing changes. The increment is
// uncapped: the unique open-loan index guarantees at most one return per
// loan, so copies can only drift through catalog edits, which own the
// counter anyway.
//
// Returns store.ErrNotBorrowed when no open loan exists.
func (s *Store) ReturnBook(ctx context.Context, userID, bookID string, now time.Time) (*domain.BorrowRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE borrow_records SET status = 'returned', return_date = ?
		WHERE user_id = ? AND book_id = ? AND status = 'borrowed'`,
		formatTime(now), userID, bookID)
	if err != nil {
		return nil, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, store.ErrNotBorrowed
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE books SET copies = copies + 1 WHERE id = ? AND is_ebook = 0`,
		bookID); err != nil {
		return nil, err
	}

	row := tx.QueryRowContext(ctx,
		`SELECT `+borrowColumns+borrowFrom+`
		WHERE br.user_id = ? AND br.book_id = ? AND br.return_date = ?`,
		userID, bookID, formatTime(now))
	record, err := scanBorrow(row)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return record, nil
}

// ListUserBorrows returns all of a user's loans, newest borrow first.
func (s *Store) ListUserBorrows(ctx context.Context, userID string) ([]*domain.BorrowRecord, error) {
	return s.queryBorrows(ctx,
		`SELECT `+borrowColumns+borrowFrom+`
		WHERE br.user_id = ?
		ORDER BY br.borrow_date DESC, br.id DESC`, userID)
}

// ListAllBorrows returns every loan in the ledger, newest borrow first.
func (s *Store) ListAllBorrows(ctx context.Context) ([]*domain.BorrowRecord, error) {
	return s.queryBorrows(ctx,
		`SELECT `+borrowColumns+borrowFrom+`
		ORDER BY br.borrow_date DESC, br.id DESC`)
}

// ListOpenBorrows returns all loans still in status borrowed, for the sweep.
func (s *Store) ListOpenBorrows(ctx context.Context) ([]*domain.BorrowRecord, error) {
	return s.queryBorrows(ctx,
		`SELECT `+borrowColumns+borrowFrom+`
		WHERE br.status = 'borrowed'
		ORDER BY br.borrow_date`)
}

func (s *Store) queryBorrows(ctx context.Context, query string, args ...any) ([]*domain.BorrowRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.BorrowRecord
	for rows.Next() {
		r, err := scanBorrow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
