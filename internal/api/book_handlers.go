package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shelfline/shelfline-server/internal/http/response"
	"github.com/shelfline/shelfline-server/internal/service"
)

// handleListBooks returns the full catalog, newest first.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.services.Catalog.ListBooks(r.Context())
	if err != nil {
		s.logger.Error("Failed to list books", "error", err)
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, books, s.logger)
}

// handleGetBook returns one book by ID.
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")

	book, err := s.services.Catalog.GetBook(r.Context(), bookID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, book, s.logger)
}

// handleCreateBook adds a new title to the catalog.
func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var input service.BookInput
	if err := json.UnmarshalRead(r.Body, &input); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.validator.Validate(input); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	book, err := s.services.Catalog.CreateBook(r.Context(), input)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Created(w, book, s.logger)
}

// handleUpdateBook applies a partial update (PATCH semantics): only fields
// present in the body change. Nil-vs-absent is distinguished with pointers.
func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")

	var update service.BookUpdate
	if err := json.UnmarshalRead(r.Body, &update); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	book, err := s.services.Catalog.UpdateBook(r.Context(), bookID, update)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, book, s.logger)
}

// handleDeleteBook removes a book from the catalog.
func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")

	if err := s.services.Catalog.DeleteBook(r.Context(), bookID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.OK(w, "Book deleted", s.logger)
}
