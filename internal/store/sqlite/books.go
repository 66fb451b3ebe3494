package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/shelfline/shelfline-server/internal/domain"
	"github.com/shelfline/shelfline-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `b.id, b.title, b.author, b.description, b.category_id,
	c.name, b.is_ebook, b.pdf_path, b.copies, b.created_at, b.updated_at`

const bookFrom = ` FROM books b LEFT JOIN categories c ON b.category_id = c.id`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var (
		author       sql.NullString
		description  sql.NullString
		categoryID   sql.NullString
		categoryName sql.NullString
		isEbook      int
		pdfPath      sql.NullString
		createdAt    string
		updatedAt    string
	)

	err := scanner.Scan(
		&b.ID,
		&b.Title,
		&author,
		&description,
		&categoryID,
		&categoryName,
		&isEbook,
		&pdfPath,
		&b.Copies,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	b.IsEbook = isEbook != 0
	if author.Valid {
		b.Author = author.String
	}
	if description.Valid {
		b.Description = description.String
	}
	if categoryID.Valid {
		b.CategoryID = categoryID.String
	}
	if categoryName.Valid {
		b.CategoryName = categoryName.String
	}
	if pdfPath.Valid {
		b.PDFPath = pdfPath.String
	}

	return &b, nil
}

// CreateBook inserts a new book row.
// Returns store.ErrAlreadyExists on duplicate ID.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (
			id, title, author, description, category_id,
			is_ebook, pdf_path, copies, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		book.Title,
		nullString(book.Author),
		nullString(book.Description),
		nullString(book.CategoryID),
		boolToInt(book.IsEbook),
		nullString(book.PDFPath),
		book.Copies,
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return store.ErrInvalidInput.WithMessage("unknown category")
		}
		return err
	}
	return nil
}

// GetBook retrieves a book by ID with its category name joined.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+bookFrom+` WHERE b.id = ?`, id)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBook rewrites a book's catalog fields and bumps updated_at.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE books SET
			title = ?, author = ?, description = ?, category_id = ?,
			is_ebook = ?, pdf_path = ?, copies = ?, updated_at = ?
		WHERE id = ?`,
		book.Title,
		nullString(book.Author),
		nullString(book.Description),
		nullString(book.CategoryID),
		boolToInt(book.IsEbook),
		nullString(book.PDFPath),
		book.Copies,
		formatTime(time.Now()),
		book.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return store.ErrInvalidInput.WithMessage("unknown category")
		}
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

// DeleteBook removes a book row. Books with loan history cannot be
// deleted; the ledger keeps referencing them.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return store.ErrInvalidInput.WithMessage("book has borrow records")
		}
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

// ListBooks returns all books with category names, newest first.
func (s *Store) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+bookFrom+` ORDER BY b.created_at DESC, b.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}
