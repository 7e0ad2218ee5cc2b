package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"goldwork/internal/app"
	"goldwork/internal/domain"
	"goldwork/internal/middleware"
)

type App struct {
	Svc *app.Services
	Log zerolog.Logger
	// Ping reports storage readiness; nil means always ready.
	Ping func(ctx context.Context) error
}

func NewApp(svc *app.Services, log zerolog.Logger) *App {
	return &App{Svc: svc, Log: log}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, msg string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": errCode, "message": msg},
	})
}

var errorStatus = []struct {
	err  error
	code int
	name string
}{
	{domain.ErrValidation, http.StatusBadRequest, "validation_error"},
	{domain.ErrUnauthorized, http.StatusForbidden, "unauthorized"},
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrDuplicateApplication, http.StatusConflict, "duplicate_application"},
	{domain.ErrAlreadyDecided, http.StatusConflict, "already_decided"},
	{domain.ErrJobAlreadyLocked, http.StatusConflict, "job_already_locked"},
	{domain.ErrJobNotOpen, http.StatusConflict, "job_not_open"},
	{domain.ErrAlreadyReleased, http.StatusConflict, "already_released"},
	{domain.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{domain.ErrConflict, http.StatusConflict, "conflict"},
	{domain.ErrInsufficientFunds, http.StatusUnprocessableEntity, "insufficient_funds"},
}

// writeError maps domain errors to the error envelope. Unknown errors are logged and
// answered with a generic message.
func (a *App) writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			msg := err.Error()
			switch m.err {
			case domain.ErrInsufficientFunds:
				msg = "insufficient funds"
			case domain.ErrConflict:
				msg = "concurrent modification, retry"
			}
			a.error(w, m.code, m.name, msg)
			return
		}
	}
	a.Log.Error().Err(err).
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Str("path", r.URL.Path).
		Msg("request failed")
	a.error(w, http.StatusInternalServerError, "internal", "internal error")
}

func (a *App) actor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthenticated", "missing actor")
	}
	return actor, ok
}

// decode reads an optional JSON body into v. An empty body leaves v untouched.
func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	return true
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(key)))
	return n
}

func idParam(r *http.Request) string {
	return chi.URLParam(r, "id")
}
