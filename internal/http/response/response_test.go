package response

import (
	"encoding/json/v2"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shelfline/shelfline-server/internal/store"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, map[string]string{"key": "value"}, nil)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("unexpected content type %q", ct)
	}

	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Error("expected success=true")
	}
	if env.Error != "" {
		t.Errorf("expected no error, got %q", env.Error)
	}
}

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound(rec, "nothing here", nil)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Success {
		t.Error("expected success=false")
	}
	if env.Error != "nothing here" {
		t.Errorf("expected error message, got %q", env.Error)
	}
}

func TestHandleError(t *testing.T) {
	// Store errors map to their HTTP code and message.
	rec := httptest.NewRecorder()
	HandleError(rec, store.ErrNoCopies, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error != "no copies available" {
		t.Errorf("unexpected message %q", env.Error)
	}

	// Wrapped store errors still map.
	rec = httptest.NewRecorder()
	HandleError(rec, store.ErrInvalidInput.WithMessage("user_id is required"), nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	env = decodeEnvelope(t, rec)
	if env.Error != "user_id is required" {
		t.Errorf("unexpected message %q", env.Error)
	}

	// Unknown errors become opaque 500s.
	rec = httptest.NewRecorder()
	HandleError(rec, errors.New("disk on fire"), nil)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	env = decodeEnvelope(t, rec)
	if env.Error != "internal server error" {
		t.Errorf("internal details must not leak, got %q", env.Error)
	}
}
