package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shelfline/shelfline-server/internal/http/response"
)

// LendingRequest identifies the acting user for borrow and return.
type LendingRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// handleBorrow checks out one copy of a book to a user.
func (s *Server) handleBorrow(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")

	var req LendingRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	record, err := s.services.Lending.Borrow(r.Context(), req.UserID, bookID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, record, s.logger)
}

// handleReturn closes the user's open loan for a book.
func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")

	var req LendingRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	record, err := s.services.Lending.Return(r.Context(), req.UserID, bookID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, record, s.logger)
}

// handleListUserBorrows returns a user's loans, newest first.
func (s *Server) handleListUserBorrows(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	records, err := s.services.Lending.ListUserBorrows(r.Context(), userID)
	if err != nil {
		s.logger.Error("Failed to list user borrows", "error", err, "user_id", userID)
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, records, s.logger)
}

// handleListAllBorrows returns the whole ledger. Administrative view.
func (s *Server) handleListAllBorrows(w http.ResponseWriter, r *http.Request) {
	records, err := s.services.Lending.ListAllBorrows(r.Context())
	if err != nil {
		s.logger.Error("Failed to list borrows", "error", err)
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, records, s.logger)
}
