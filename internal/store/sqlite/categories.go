package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shelfline/shelfline-server/internal/domain"
	"github.com/shelfline/shelfline-server/internal/store"
)

// CreateCategory inserts a new category.
// Returns store.ErrAlreadyExists on duplicate ID or name.
func (s *Store) CreateCategory(ctx context.Context, c *domain.Category) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, created_at) VALUES (?, ?, ?)`,
		c.ID, c.Name, formatTime(c.CreatedAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetCategory retrieves a category by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM categories WHERE id = ?`, id)

	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCategory renames a category.
// Returns store.ErrNotFound if it does not exist and store.ErrAlreadyExists
// if the new name is taken.
func (s *Store) UpdateCategory(ctx context.Context, c *domain.Category) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE categories SET name = ? WHERE id = ?`, c.Name, c.ID)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
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

// DeleteCategory removes a category. Books referencing it keep existing
// with their category cleared (ON DELETE SET NULL).
// Returns store.ErrNotFound if it does not exist.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
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

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func scanCategory(scanner interface{ Scan(dest ...any) error }) (*domain.Category, error) {
	var c domain.Category
	var createdAt string

	if err := scanner.Scan(&c.ID, &c.Name, &createdAt); err != nil {
		return nil, err
	}

	var err error
	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
