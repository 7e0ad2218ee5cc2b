package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"goldwork/internal/app"
	"goldwork/internal/domain"
)

type resolveAnomalyRequest struct {
	Notes   string `json:"notes"`
	Dismiss bool   `json:"dismiss"`
	Winner  string `json:"winner"`
	Reason  string `json:"reason"`
}

type grantRequest struct {
	Amount int64 `json:"amount"`
}

type cleanupRequest struct {
	OlderThanHours int `json:"olderThanHours"`
}

type companyNameRequest struct {
	OldName string `json:"oldName"`
	NewName string `json:"newName"`
}

const defaultCleanupHours = 30 * 24

func (a *App) AccountMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	acc, err := a.Svc.Ledger.Balance(r.Context(), actor, actor.ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, acc)
}

func (a *App) AccountEntries(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	items, err := a.Svc.Ledger.Entries(r.Context(), actor, actor.ID, queryInt(r, "limit"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.LedgerEntry{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) AccountGrant(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	var req grantRequest
	if !a.decode(w, r, &req) {
		return
	}
	accountID := chi.URLParam(r, "id")
	balance, err := a.Svc.Ledger.Grant(r.Context(), actor, accountID, req.Amount)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"actor_id": accountID, "balance": balance})
}

func (a *App) LedgerTotals(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	totals, err := a.Svc.Ledger.Totals(r.Context(), actor)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, totals)
}

func (a *App) AnomaliesList(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	items, err := a.Svc.Anomalies.List(r.Context(), actor, domain.AnomalyFilter{
		Status: domain.AnomalyStatus(q.Get("status")),
		Type:   domain.AnomalyType(q.Get("type")),
		JobID:  q.Get("job_id"),
		Limit:  queryInt(r, "limit"),
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.Anomaly{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) AnomaliesDetect(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	sum, err := a.Svc.Anomalies.Detect(r.Context(), actor)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, sum)
}

func (a *App) AnomalyInvestigate(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	anomaly, err := a.Svc.Anomalies.Investigate(r.Context(), actor, idParam(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, anomaly)
}

func (a *App) AnomalyResolve(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	var req resolveAnomalyRequest
	if !a.decode(w, r, &req) {
		return
	}
	anomaly, err := a.Svc.Anomalies.Resolve(r.Context(), actor, idParam(r), app.ResolveInput{
		Notes:   req.Notes,
		Dismiss: req.Dismiss,
		Winner:  req.Winner,
		Reason:  req.Reason,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, anomaly)
}

func (a *App) CompanyRename(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	var req companyNameRequest
	if !a.decode(w, r, &req) {
		return
	}
	rename, err := a.Svc.Anomalies.RecordCompanyRename(r.Context(), actor, req.OldName, req.NewName)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, rename)
}

func (a *App) Cleanup(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	req := cleanupRequest{OlderThanHours: defaultCleanupHours}
	if !a.decode(w, r, &req) {
		return
	}
	if req.OlderThanHours <= 0 {
		a.error(w, http.StatusBadRequest, "validation_error", "olderThanHours must be positive")
		return
	}
	sum, err := a.Svc.Cleanup.Run(r.Context(), actor, time.Duration(req.OlderThanHours)*time.Hour)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, sum)
}
