package domain

import "time"

// BorrowStatus is the lifecycle state of a loan.
type BorrowStatus string

// Loan states. A record is created as StatusBorrowed and transitions to
// StatusReturned exactly once; records are never deleted.
const (
	StatusBorrowed BorrowStatus = "borrowed"
	StatusReturned BorrowStatus = "returned"
)

// BorrowRecord is one loan of one book to one user.
//
// At most one record per (UserID, BookID) may be in StatusBorrowed at a
// time; the store enforces this with a conditional insert backed by a
// unique partial index.
type BorrowRecord struct {
	ID         string       `json:"id"`
	UserID     string       `json:"user_id"`
	BookID     string       `json:"book_id"`
	BorrowDate time.Time    `json:"borrow_date"`
	ReturnDate *time.Time   `json:"return_date,omitempty"`
	Status     BorrowStatus `json:"status"`

	// Denormalized book fields, populated by list queries.
	BookTitle  string `json:"book_title,omitempty"`
	BookAuthor string `json:"book_author,omitempty"`
}

// Open reports whether the loan is still outstanding.
func (r *BorrowRecord) Open() bool {
	return r.Status == StatusBorrowed
}
