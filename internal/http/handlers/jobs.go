package handlers

import (
	"net/http"
	"strconv"
	"time"

	"goldwork/internal/app"
	"goldwork/internal/domain"
)

type postJobRequest struct {
	Title      string     `json:"title"`
	GoldReward int64      `json:"goldReward"`
	Priority   string     `json:"priority"`
	Deadline   *time.Time `json:"deadline"`
}

type editJobRequest struct {
	Title      *string    `json:"title"`
	GoldReward *int64     `json:"goldReward"`
	Priority   *string    `json:"priority"`
	Deadline   *time.Time `json:"deadline"`
}

func (a *App) JobsCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	var req postJobRequest
	if !a.decode(w, r, &req) {
		return
	}
	job, err := a.Svc.Jobs.Post(r.Context(), actor, app.PostJobInput{
		Title:      req.Title,
		GoldReward: req.GoldReward,
		Priority:   req.Priority,
		Deadline:   req.Deadline,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, job)
}

func (a *App) JobsEdit(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	var req editJobRequest
	if !a.decode(w, r, &req) {
		return
	}
	job, err := a.Svc.Jobs.Edit(r.Context(), actor, idParam(r), app.EditJobInput{
		Title:      req.Title,
		GoldReward: req.GoldReward,
		Priority:   req.Priority,
		Deadline:   req.Deadline,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, job)
}

func (a *App) JobsList(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	items, err := a.Svc.Jobs.List(r.Context(), actor, domain.JobFilter{
		Status:     domain.JobStatus(q.Get("status")),
		EmployerID: q.Get("employer_id"),
		StudentID:  q.Get("student_id"),
		Limit:      queryInt(r, "limit"),
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.Job{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) JobsGet(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	job, err := a.Svc.Jobs.Get(r.Context(), actor, idParam(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, job)
}

func (a *App) JobEvents(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	var since int64
	if raw := r.URL.Query().Get("since"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			a.error(w, http.StatusBadRequest, "bad_request", "since must be a non-negative integer")
			return
		}
		since = v
	}
	events, err := a.Svc.Jobs.Events(r.Context(), actor, idParam(r), since, queryInt(r, "limit"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	next := since
	for _, e := range events {
		if e.Seq > next {
			next = e.Seq
		}
	}
	if events == nil {
		events = []domain.JobEvent{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": events, "next": next})
}

func (a *App) JobsCancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	res, err := a.Svc.Jobs.Cancel(r.Context(), actor, idParam(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, res)
}

func (a *App) JobsComplete(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	job, err := a.Svc.Jobs.Complete(r.Context(), actor, idParam(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, job)
}
