package handlers

import (
	"net/http"
	"strings"
	"time"

	"goldwork/internal/app"
	"goldwork/internal/domain"
)

type decisionRequest struct {
	Status          string `json:"status"`
	RejectionReason string `json:"rejectionReason"`
}

// submitRequest carries timeTaken as a duration string such as "3h30m".
type submitRequest struct {
	ProofURL        string `json:"proofUrl"`
	TimeTaken       string `json:"timeTaken"`
	CompletionNotes string `json:"completionNotes"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

type resolveDisputeRequest struct {
	Winner string `json:"winner"`
	Reason string `json:"reason"`
}

func (a *App) Apply(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	application, err := a.Svc.Applications.Apply(r.Context(), actor, idParam(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, application)
}

func (a *App) JobApplications(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	items, err := a.Svc.Applications.ListByJob(r.Context(), actor, idParam(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.Application{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) ApplicationDecide(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	var req decisionRequest
	if !a.decode(w, r, &req) {
		return
	}
	application, err := a.Svc.Applications.Decide(r.Context(), actor, idParam(r), req.Status, req.RejectionReason)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, application)
}

func (a *App) FundEscrow(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	payment, err := a.Svc.Escrow.Fund(r.Context(), actor, idParam(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, payment)
}

func (a *App) JobPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	payment, err := a.Svc.Escrow.ForJob(r.Context(), actor, idParam(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, payment)
}

func (a *App) ReleasePayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	payment, err := a.Svc.Escrow.Release(r.Context(), actor, idParam(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, payment)
}

func (a *App) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	var req submitRequest
	if !a.decode(w, r, &req) {
		return
	}
	in := app.SubmitInput{ProofURL: req.ProofURL, Notes: req.CompletionNotes}
	if raw := strings.TrimSpace(req.TimeTaken); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			a.error(w, http.StatusBadRequest, "validation_error", "timeTaken must be a duration such as 90m")
			return
		}
		in.TimeTaken = &d
	}
	job, err := a.Svc.Submissions.Submit(r.Context(), actor, idParam(r), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, job)
}

func (a *App) Confirm(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	res, err := a.Svc.Submissions.Confirm(r.Context(), actor, idParam(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, res)
}

func (a *App) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	var req reasonRequest
	if !a.decode(w, r, &req) {
		return
	}
	job, err := a.Svc.Submissions.Reject(r.Context(), actor, idParam(r), req.Reason)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, job)
}

func (a *App) ReportRejection(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	anomaly, err := a.Svc.Submissions.ReportRejection(r.Context(), actor, idParam(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, anomaly)
}

func (a *App) ResolveDispute(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	var req resolveDisputeRequest
	if !a.decode(w, r, &req) {
		return
	}
	verdict, err := a.Svc.Disputes.ResolveDispute(r.Context(), actor, idParam(r), req.Winner, req.Reason)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, verdict)
}
