package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"goldwork/internal/domain"
)

func TestWriteErrorMapping(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
		wantName string
		wantMsg  string
	}{
		{domain.Invalid("rejection reason must be at least 10 characters"), http.StatusBadRequest, "validation_error", "validation error: rejection reason must be at least 10 characters"},
		{domain.Forbidden("job belongs to another employer"), http.StatusForbidden, "unauthorized", ""},
		{fmt.Errorf("job j1: %w", domain.ErrNotFound), http.StatusNotFound, "not_found", ""},
		{domain.IllegalMove("job", "completed", "cancelled"), http.StatusConflict, "invalid_transition", ""},
		{domain.ErrJobAlreadyLocked, http.StatusConflict, "job_already_locked", ""},
		{errors.Join(domain.ErrConflict, errors.New(`ERROR: could not serialize access (SQLSTATE 40001)`)), http.StatusConflict, "conflict", "concurrent modification, retry"},
		{fmt.Errorf("debit employer-1 balance 12: %w", domain.ErrInsufficientFunds), http.StatusUnprocessableEntity, "insufficient_funds", "insufficient funds"},
		{errors.New("pool closed"), http.StatusInternalServerError, "internal", "internal error"},
	}

	a := &App{Log: zerolog.Nop()}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		a.writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
		if rec.Code != tc.wantCode {
			t.Fatalf("%v: status = %d, want %d", tc.err, rec.Code, tc.wantCode)
		}
		var body struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Error.Code != tc.wantName {
			t.Fatalf("%v: code = %q, want %q", tc.err, body.Error.Code, tc.wantName)
		}
		if tc.wantMsg != "" && body.Error.Message != tc.wantMsg {
			t.Fatalf("%v: message = %q, want %q", tc.err, body.Error.Message, tc.wantMsg)
		}
	}
}

func TestActorRequired(t *testing.T) {
	a := &App{Log: zerolog.Nop()}
	rec := httptest.NewRecorder()
	a.JobsCreate(rec, httptest.NewRequest(http.MethodPost, "/jobs", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
