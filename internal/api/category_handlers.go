package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shelfline/shelfline-server/internal/http/response"
)

// CategoryRequest carries a category name for create and rename.
type CategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.services.Catalog.ListCategories(r.Context())
	if err != nil {
		s.logger.Error("Failed to list categories", "error", err)
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, categories, s.logger)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	category, err := s.services.Catalog.CreateCategory(r.Context(), req.Name)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Created(w, category, s.logger)
}

func (s *Server) handleRenameCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "id")

	var req CategoryRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	category, err := s.services.Catalog.RenameCategory(r.Context(), categoryID, req.Name)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, category, s.logger)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "id")

	if err := s.services.Catalog.DeleteCategory(r.Context(), categoryID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.OK(w, "Category deleted", s.logger)
}
