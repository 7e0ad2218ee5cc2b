package memstore

import (
	"context"
	"sort"
	"time"

	"goldwork/internal/domain"
)

type jobRepo struct{ s *state }

func (r jobRepo) Create(_ context.Context, job *domain.Job) error {
	if _, ok := r.s.jobs[job.ID]; ok {
		return domain.ErrConflict
	}
	job.Version = 1
	r.s.jobs[job.ID] = *job
	return nil
}

func (r jobRepo) GetByID(_ context.Context, id string) (*domain.Job, error) {
	job, ok := r.s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &job, nil
}

func (r jobRepo) List(_ context.Context, f domain.JobFilter) ([]domain.Job, error) {
	var out []domain.Job
	for _, job := range r.s.jobs {
		if f.Status != "" && job.Status != f.Status {
			continue
		}
		if f.EmployerID != "" && job.EmployerID != f.EmployerID {
			continue
		}
		if f.StudentID != "" && !job.IsAcceptedStudent(f.StudentID) {
			continue
		}
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r jobRepo) Update(_ context.Context, job *domain.Job) error {
	cur, ok := r.s.jobs[job.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Version != job.Version {
		return domain.ErrConflict
	}
	job.Version++
	r.s.jobs[job.ID] = *job
	return nil
}

func (r jobRepo) LockToStudent(_ context.Context, jobID, studentID string, at time.Time) (*domain.Job, error) {
	job, ok := r.s.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if job.AcceptedStudentID != nil {
		return nil, domain.ErrJobAlreadyLocked
	}
	if job.Status != domain.JobStatusPosted {
		return nil, domain.ErrJobNotOpen
	}
	sid := studentID
	job.AcceptedStudentID = &sid
	job.AcceptedAt = &at
	job.Status = domain.JobStatusInProgress
	job.SubmissionStatus = domain.SubmissionPending
	job.UpdatedAt = at
	job.Version++
	r.s.jobs[jobID] = job
	return &job, nil
}

type appRepo struct{ s *state }

func (r appRepo) Create(_ context.Context, app *domain.Application) error {
	for _, existing := range r.s.apps {
		if existing.JobID == app.JobID && existing.StudentID == app.StudentID && existing.Status != domain.ApplicationRejected {
			return domain.ErrDuplicateApplication
		}
	}
	app.Version = 1
	r.s.apps[app.ID] = *app
	return nil
}

func (r appRepo) GetByID(_ context.Context, id string) (*domain.Application, error) {
	app, ok := r.s.apps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &app, nil
}

func (r appRepo) FindActive(_ context.Context, jobID, studentID string) (*domain.Application, error) {
	for _, app := range r.s.apps {
		if app.JobID == jobID && app.StudentID == studentID && app.Status != domain.ApplicationRejected {
			a := app
			return &a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r appRepo) ListByJob(_ context.Context, jobID string) ([]domain.Application, error) {
	var out []domain.Application
	for _, app := range r.s.apps {
		if app.JobID == jobID {
			out = append(out, app)
		}
	}
	sortApps(out)
	return out, nil
}

func (r appRepo) ListUndecided(_ context.Context) ([]domain.Application, error) {
	var out []domain.Application
	for _, app := range r.s.apps {
		if !app.Status.Decided() {
			out = append(out, app)
		}
	}
	sortApps(out)
	return out, nil
}

func (r appRepo) Update(_ context.Context, app *domain.Application) error {
	cur, ok := r.s.apps[app.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Version != app.Version {
		return domain.ErrConflict
	}
	app.Version++
	r.s.apps[app.ID] = *app
	return nil
}

func sortApps(apps []domain.Application) {
	sort.Slice(apps, func(i, j int) bool {
		if apps[i].CreatedAt.Equal(apps[j].CreatedAt) {
			return apps[i].ID < apps[j].ID
		}
		return apps[i].CreatedAt.Before(apps[j].CreatedAt)
	})
}

type paymentRepo struct{ s *state }

func (r paymentRepo) Create(_ context.Context, p *domain.EscrowPayment) error {
	for _, existing := range r.s.payments {
		if existing.JobID == p.JobID && existing.Status != domain.PaymentRefunded {
			return domain.ErrConflict
		}
	}
	p.Version = 1
	r.s.payments[p.ID] = *p
	return nil
}

func (r paymentRepo) GetByID(_ context.Context, id string) (*domain.EscrowPayment, error) {
	p, ok := r.s.payments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r paymentRepo) GetActiveByJob(_ context.Context, jobID string) (*domain.EscrowPayment, error) {
	for _, p := range r.s.payments {
		if p.JobID == jobID && p.Status != domain.PaymentRefunded {
			out := p
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r paymentRepo) Update(_ context.Context, p *domain.EscrowPayment) error {
	cur, ok := r.s.payments[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Version != p.Version {
		return domain.ErrConflict
	}
	p.Version++
	r.s.payments[p.ID] = *p
	return nil
}

func (r paymentRepo) SumEscrowed(context.Context) (int64, error) {
	var total int64
	for _, p := range r.s.payments {
		if p.Status == domain.PaymentEscrowed {
			total += p.Amount
		}
	}
	return total, nil
}

type accountRepo struct{ s *state }

func (r accountRepo) Get(_ context.Context, actorID string) (*domain.Account, error) {
	acc, ok := r.s.accounts[actorID]
	if !ok {
		return &domain.Account{ActorID: actorID}, nil
	}
	return &acc, nil
}

func (r accountRepo) Adjust(_ context.Context, actorID string, delta int64, allowNegative bool) (int64, error) {
	acc := r.s.accounts[actorID]
	acc.ActorID = actorID
	next := acc.Balance + delta
	if delta < 0 && next < 0 && !allowNegative {
		return acc.Balance, domain.ErrInsufficientFunds
	}
	acc.Balance = next
	acc.Version++
	acc.UpdatedAt = time.Now().UTC()
	r.s.accounts[actorID] = acc
	return next, nil
}

func (r accountRepo) AppendEntry(_ context.Context, entry *domain.LedgerEntry) error {
	r.s.entries = append(r.s.entries, *entry)
	return nil
}

func (r accountRepo) ListEntries(_ context.Context, actorID string, limit int) ([]domain.LedgerEntry, error) {
	var out []domain.LedgerEntry
	for i := len(r.s.entries) - 1; i >= 0; i-- {
		if r.s.entries[i].ActorID != actorID {
			continue
		}
		out = append(out, r.s.entries[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r accountRepo) SumBalances(context.Context) (int64, error) {
	var total int64
	for _, acc := range r.s.accounts {
		total += acc.Balance
	}
	return total, nil
}

type anomalyRepo struct{ s *state }

func (r anomalyRepo) Create(_ context.Context, a *domain.Anomaly) error {
	if a.Status.Active() {
		for _, existing := range r.s.anomalies {
			if existing.Type == a.Type && existing.Subject == a.Subject && existing.Status.Active() {
				return domain.ErrConflict
			}
		}
	}
	a.Version = 1
	r.s.anomalies[a.ID] = *a
	return nil
}

func (r anomalyRepo) GetByID(_ context.Context, id string) (*domain.Anomaly, error) {
	a, ok := r.s.anomalies[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (r anomalyRepo) FindActive(_ context.Context, t domain.AnomalyType, subject string) (*domain.Anomaly, error) {
	for _, a := range r.s.anomalies {
		if a.Type == t && a.Subject == subject && a.Status.Active() {
			out := a
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r anomalyRepo) List(_ context.Context, f domain.AnomalyFilter) ([]domain.Anomaly, error) {
	var out []domain.Anomaly
	for _, a := range r.s.anomalies {
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.Type != "" && a.Type != f.Type {
			continue
		}
		if f.JobID != "" && (a.JobID == nil || *a.JobID != f.JobID) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r anomalyRepo) Update(_ context.Context, a *domain.Anomaly) error {
	cur, ok := r.s.anomalies[a.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Version != a.Version {
		return domain.ErrConflict
	}
	a.Version++
	r.s.anomalies[a.ID] = *a
	return nil
}

type eventRepo struct{ s *state }

func (r eventRepo) Append(_ context.Context, e *domain.JobEvent) error {
	r.s.seq++
	e.Seq = r.s.seq
	r.s.events = append(r.s.events, *e)
	return nil
}

func (r eventRepo) ListSince(_ context.Context, jobID string, since int64, limit int) ([]domain.JobEvent, error) {
	var out []domain.JobEvent
	for _, e := range r.s.events {
		if e.JobID != jobID || e.Seq <= since {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

type renameRepo struct{ s *state }

func (r renameRepo) Create(_ context.Context, rn *domain.CompanyRename) error {
	r.s.renames = append(r.s.renames, *rn)
	return nil
}

func (r renameRepo) ListSince(_ context.Context, since time.Time) ([]domain.CompanyRename, error) {
	var out []domain.CompanyRename
	for _, rn := range r.s.renames {
		if !rn.CreatedAt.Before(since) {
			out = append(out, rn)
		}
	}
	return out, nil
}
