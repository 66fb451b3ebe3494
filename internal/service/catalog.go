// Package service contains the business logic for the Shelfline server.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shelfline/shelfline-server/internal/domain"
	"github.com/shelfline/shelfline-server/internal/id"
	"github.com/shelfline/shelfline-server/internal/store"
)

// CatalogService manages books and categories.
type CatalogService struct {
	store  store.Store
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store store.Store, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:  store,
		logger: logger,
	}
}

// BookInput carries the caller-editable fields of a book.
type BookInput struct {
	Title       string `json:"title" validate:"required,min=1,max=500"`
	Author      string `json:"author" validate:"max=200"`
	Description string `json:"description"`
	CategoryID  string `json:"category_id"`
	IsEbook     bool   `json:"is_ebook"`
	PDFPath     string `json:"pdf_path"`
	Copies      int    `json:"copies" validate:"min=0"`
}

// ListBooks returns all books with category names joined, newest first.
func (s *CatalogService) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// GetBook returns a single book by ID.
func (s *CatalogService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	return s.store.GetBook(ctx, bookID)
}

// CreateBook adds a new title to the catalog.
func (s *CatalogService) CreateBook(ctx context.Context, input BookInput) (*domain.Book, error) {
	now := time.Now()
	book := &domain.Book{
		ID:          id.MustGenerate("bk"),
		Title:       strings.TrimSpace(input.Title),
		Author:      strings.TrimSpace(input.Author),
		Description: input.Description,
		CategoryID:  input.CategoryID,
		IsEbook:     input.IsEbook,
		PDFPath:     input.PDFPath,
		Copies:      input.Copies,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, err
	}

	s.logger.Info("Book created", "book_id", book.ID, "title", book.Title)

	// Re-read so the category name is populated.
	return s.store.GetBook(ctx, book.ID)
}

// BookUpdate carries optional field updates for a book. Nil fields are
// left unchanged (PATCH semantics).
type BookUpdate struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	Description *string `json:"description"`
	CategoryID  *string `json:"category_id"`
	IsEbook     *bool   `json:"is_ebook"`
	PDFPath     *string `json:"pdf_path"`
	Copies      *int    `json:"copies"`
}

// UpdateBook applies a partial update to a book's catalog fields.
func (s *CatalogService) UpdateBook(ctx context.Context, bookID string, update BookUpdate) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		book.Title = strings.TrimSpace(*update.Title)
	}
	if update.Author != nil {
		book.Author = strings.TrimSpace(*update.Author)
	}
	if update.Description != nil {
		book.Description = *update.Description
	}
	if update.CategoryID != nil {
		book.CategoryID = *update.CategoryID
	}
	if update.IsEbook != nil {
		book.IsEbook = *update.IsEbook
	}
	if update.PDFPath != nil {
		book.PDFPath = *update.PDFPath
	}
	if update.Copies != nil {
		if *update.Copies < 0 {
			return nil, store.ErrInvalidInput.WithMessage("copies cannot be negative")
		}
		book.Copies = *update.Copies
	}

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, err
	}

	return s.store.GetBook(ctx, bookID)
}

// DeleteBook removes a book from the catalog.
func (s *CatalogService) DeleteBook(ctx context.Context, bookID string) error {
	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		return err
	}
	s.logger.Info("Book deleted", "book_id", bookID)
	return nil
}

// ListCategories returns all categories ordered by name.
func (s *CatalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.store.ListCategories(ctx)
}

// CreateCategory adds a new category.
func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, store.ErrInvalidInput.WithMessage("category name is required")
	}

	category := &domain.Category{
		ID:        id.MustGenerate("cat"),
		Name:      name,
		CreatedAt: time.Now(),
	}

	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info("Category created", "category_id", category.ID, "name", name)
	return category, nil
}

// RenameCategory changes a category's name.
func (s *CatalogService) RenameCategory(ctx context.Context, categoryID, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, store.ErrInvalidInput.WithMessage("category name is required")
	}

	category, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	category.Name = name
	if err := s.store.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a category. Books in it are left uncategorized.
func (s *CatalogService) DeleteCategory(ctx context.Context, categoryID string) error {
	return s.store.DeleteCategory(ctx, categoryID)
}
