package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shelfline/shelfline-server/internal/http/response"
)

// handleListNotifications returns a user's notifications, newest first.
// Consumed by the frontend's polling loop.
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	notifications, err := s.services.Notification.ListForUser(r.Context(), userID)
	if err != nil {
		s.logger.Error("Failed to list notifications", "error", err, "user_id", userID)
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, notifications, s.logger)
}

// handleMarkNotificationRead flips a notification to read. Repeating the
// call for an already-read notification succeeds.
func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	notificationID := chi.URLParam(r, "id")

	if err := s.services.Notification.MarkRead(r.Context(), notificationID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.OK(w, "Notification marked as read", s.logger)
}

// TestNotificationRequest triggers an administrative test notification.
type TestNotificationRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	Message string `json:"message"`
}

func (s *Server) handleSendTestNotification(w http.ResponseWriter, r *http.Request) {
	var req TestNotificationRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	notification, err := s.services.Notification.SendTest(r.Context(), req.UserID, req.Message)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Created(w, notification, s.logger)
}
