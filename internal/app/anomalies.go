package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"goldwork/internal/domain"
)

// Anomalies runs the detection sweep and the admin handling of anomalies.
type Anomalies struct{ *core }

// DetectSummary reports what a sweep found.
type DetectSummary struct {
	JobsScanned int                        `json:"jobs_scanned"`
	Created     int                        `json:"created"`
	Existing    int                        `json:"existing"`
	ByType      map[domain.AnomalyType]int `json:"by_type"`
}

// ResolveInput is the admin's handling of an anomaly. A Winner turns the resolution into
// a dispute verdict on the referenced job.
type ResolveInput struct {
	Notes   string
	Dismiss bool
	Winner  string
	Reason  string
}

var severityRank = map[domain.Severity]int{
	domain.SeverityLow:      1,
	domain.SeverityMedium:   2,
	domain.SeverityHigh:     3,
	domain.SeverityCritical: 4,
}

// raise opens an anomaly unless an active one exists for (type, subject). With merge the
// existing anomaly absorbs the new notes and a higher severity.
func (c *core) raise(ctx context.Context, tx domain.Tx, a domain.Anomaly, merge bool) (*domain.Anomaly, bool, error) {
	existing, err := tx.Anomalies().FindActive(ctx, a.Type, a.Subject)
	if err == nil {
		if !merge {
			return existing, false, nil
		}
		if severityRank[a.Severity] > severityRank[existing.Severity] {
			existing.Severity = a.Severity
		}
		if existing.StudentID == nil {
			existing.StudentID = a.StudentID
		}
		if existing.EmployerID == nil {
			existing.EmployerID = a.EmployerID
		}
		if a.Notes != "" && !strings.Contains(existing.Notes, a.Notes) {
			existing.Notes = strings.TrimSpace(existing.Notes + "\n" + a.Notes)
		}
		existing.UpdatedAt = c.now()
		if err := tx.Anomalies().Update(ctx, existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}
	now := c.now()
	a.ID = newID()
	a.Status = domain.AnomalyOpen
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Notes == "" {
		a.Notes = a.Type.Label()
	}
	if err := tx.Anomalies().Create(ctx, &a); err != nil {
		return nil, false, err
	}
	return &a, true, nil
}

// List returns anomalies to admins.
func (s *Anomalies) List(ctx context.Context, actor domain.Actor, filter domain.AnomalyFilter) ([]domain.Anomaly, error) {
	if err := actor.Require(domain.RoleAdmin); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	var out []domain.Anomaly
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		var err error
		out, err = tx.Anomalies().List(ctx, filter)
		return err
	})
	return out, err
}

// Detect sweeps jobs, applications and company renames and opens anomalies for rule
// violations. It never touches job, application or payment state, and re-running it
// creates nothing for violations that already have an active anomaly.
func (s *Anomalies) Detect(ctx context.Context, actor domain.Actor) (*DetectSummary, error) {
	if err := actor.Require(domain.RoleAdmin); err != nil {
		return nil, err
	}
	sum := &DetectSummary{ByType: map[domain.AnomalyType]int{}}
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		*sum = DetectSummary{ByType: map[domain.AnomalyType]int{}}
		candidates, jobsScanned, err := s.findViolations(ctx, tx)
		if err != nil {
			return err
		}
		sum.JobsScanned = jobsScanned
		for _, cand := range candidates {
			_, created, err := s.raise(ctx, tx, cand, false)
			if err != nil {
				return err
			}
			if created {
				sum.Created++
				sum.ByType[cand.Type]++
			} else {
				sum.Existing++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("jobs_scanned", sum.JobsScanned).Int("created", sum.Created).Int("existing", sum.Existing).Msg("anomaly sweep finished")
	return sum, nil
}

func (s *Anomalies) findViolations(ctx context.Context, tx domain.Tx) ([]domain.Anomaly, int, error) {
	now := s.now()
	rules := s.rules
	var out []domain.Anomaly

	posted, err := tx.Jobs().List(ctx, domain.JobFilter{Status: domain.JobStatusPosted})
	if err != nil {
		return nil, 0, err
	}
	active, err := tx.Jobs().List(ctx, domain.JobFilter{Status: domain.JobStatusInProgress})
	if err != nil {
		return nil, 0, err
	}

	postedByID := make(map[string]domain.Job, len(posted))
	for _, job := range posted {
		postedByID[job.ID] = job
	}
	undecided, err := tx.Applications().ListUndecided(ctx)
	if err != nil {
		return nil, 0, err
	}
	flagged := map[string]bool{}
	for _, app := range undecided {
		job, ok := postedByID[app.JobID]
		if !ok || flagged[job.ID] || now.Sub(app.CreatedAt) < rules.EmployerInactivityAfter {
			continue
		}
		flagged[job.ID] = true
		out = append(out, domain.Anomaly{
			Type:       domain.AnomalyEmployerInactivity,
			Severity:   domain.SeverityMedium,
			Subject:    domain.JobSubject(job.ID),
			JobID:      strPtr(job.ID),
			EmployerID: strPtr(job.EmployerID),
			Notes:      fmt.Sprintf("%s: applications waiting since %s", domain.AnomalyEmployerInactivity.Label(), app.CreatedAt.Format("2006-01-02")),
		})
	}

	perStudent := map[string]int{}
	for _, job := range active {
		if job.AcceptedStudentID != nil {
			perStudent[*job.AcceptedStudentID]++
		}
		switch job.SubmissionStatus {
		case domain.SubmissionPending:
			if job.Deadline != nil && now.After(*job.Deadline) {
				out = append(out, jobAnomaly(job, domain.AnomalyMissedDeadline, domain.SeverityHigh,
					"deadline "+job.Deadline.Format("2006-01-02 15:04")+" passed without a submission"))
			}
			if job.AcceptedAt != nil && now.Sub(*job.AcceptedAt) >= rules.TaskStalledAfter {
				out = append(out, jobAnomaly(job, domain.AnomalyTaskStalled, domain.SeverityMedium,
					"no submission since acceptance on "+job.AcceptedAt.Format("2006-01-02")))
			}
		case domain.SubmissionSubmitted:
			if job.SubmittedAt != nil && now.Sub(*job.SubmittedAt) >= rules.DelayedPaymentAfter {
				out = append(out, jobAnomaly(job, domain.AnomalyDelayedPayment, domain.SeverityHigh,
					"submission awaiting review since "+job.SubmittedAt.Format("2006-01-02 15:04")))
			}
		}
	}
	for studentID, n := range perStudent {
		if n <= rules.StudentOverworkLimit {
			continue
		}
		out = append(out, domain.Anomaly{
			Type:      domain.AnomalyStudentOverwork,
			Severity:  domain.SeverityLow,
			Subject:   domain.StudentSubject(studentID),
			StudentID: strPtr(studentID),
			Notes:     fmt.Sprintf("%s: %d jobs in progress", domain.AnomalyStudentOverwork.Label(), n),
		})
	}

	renames, err := tx.Renames().ListSince(ctx, now.Add(-rules.CompanyRenameWindow))
	if err != nil {
		return nil, 0, err
	}
	perEmployer := map[string]int{}
	for _, rn := range renames {
		perEmployer[rn.EmployerID]++
	}
	for employerID, n := range perEmployer {
		if n < rules.CompanyRenameLimit {
			continue
		}
		out = append(out, domain.Anomaly{
			Type:       domain.AnomalyCompanyNameChange,
			Severity:   domain.SeverityMedium,
			Subject:    domain.EmployerSubject(employerID),
			EmployerID: strPtr(employerID),
			Notes:      fmt.Sprintf("%s: %d renames within %s", domain.AnomalyCompanyNameChange.Label(), n, rules.CompanyRenameWindow),
		})
	}
	return out, len(posted) + len(active), nil
}

func jobAnomaly(job domain.Job, t domain.AnomalyType, sev domain.Severity, detail string) domain.Anomaly {
	a := domain.Anomaly{
		Type:       t,
		Severity:   sev,
		Subject:    domain.JobSubject(job.ID),
		JobID:      strPtr(job.ID),
		EmployerID: strPtr(job.EmployerID),
		Notes:      t.Label() + ": " + detail,
	}
	if job.AcceptedStudentID != nil {
		a.StudentID = strPtr(*job.AcceptedStudentID)
	}
	return a
}

// Investigate marks an open anomaly as under investigation.
func (s *Anomalies) Investigate(ctx context.Context, actor domain.Actor, id string) (*domain.Anomaly, error) {
	if err := actor.Require(domain.RoleAdmin); err != nil {
		return nil, err
	}
	var a *domain.Anomaly
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		var err error
		if a, err = loadAnomaly(ctx, tx, id); err != nil {
			return err
		}
		if !domain.CanMoveAnomaly(a.Status, domain.AnomalyInvestigating) {
			return domain.IllegalMove("anomaly", string(a.Status), string(domain.AnomalyInvestigating))
		}
		a.Status = domain.AnomalyInvestigating
		a.UpdatedAt = s.now()
		return tx.Anomalies().Update(ctx, a)
	})
	return a, err
}

// Resolve closes an anomaly. With a winner it delegates to the dispute verdict for the
// anomaly's job, which resolves this anomaly as well.
func (s *Anomalies) Resolve(ctx context.Context, actor domain.Actor, id string, in ResolveInput) (*domain.Anomaly, error) {
	if err := actor.Require(domain.RoleAdmin); err != nil {
		return nil, err
	}
	var a *domain.Anomaly
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		var err error
		if a, err = loadAnomaly(ctx, tx, id); err != nil {
			return err
		}
		if in.Winner != "" {
			if a.JobID == nil {
				return domain.Invalid("anomaly does not reference a job")
			}
			reason := in.Reason
			if reason == "" {
				reason = in.Notes
			}
			if _, err := s.resolveDisputeTx(ctx, tx, actor, *a.JobID, in.Winner, reason); err != nil {
				return err
			}
			a, err = loadAnomaly(ctx, tx, id)
			return err
		}
		to := domain.AnomalyResolved
		if in.Dismiss {
			to = domain.AnomalyDismissed
		}
		return s.closeAnomaly(ctx, tx, a, to, actor.ID, strings.TrimSpace(in.Notes))
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("anomaly_id", id).Str("status", string(a.Status)).Str("actor_id", actor.ID).Msg("anomaly closed")
	return a, nil
}

func (c *core) closeAnomaly(ctx context.Context, tx domain.Tx, a *domain.Anomaly, to domain.AnomalyStatus, adminID, notes string) error {
	if !domain.CanMoveAnomaly(a.Status, to) {
		return domain.IllegalMove("anomaly", string(a.Status), string(to))
	}
	now := c.now()
	a.Status = to
	a.ResolvedBy = strPtr(adminID)
	a.ResolvedAt = &now
	if notes != "" {
		a.Notes = notes
	}
	a.UpdatedAt = now
	return tx.Anomalies().Update(ctx, a)
}

func loadAnomaly(ctx context.Context, tx domain.Tx, id string) (*domain.Anomaly, error) {
	a, err := tx.Anomalies().GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domainNotFound("anomaly", id)
	}
	return a, err
}

// RecordCompanyRename stores an employer's company name change for the sweep.
func (s *Anomalies) RecordCompanyRename(ctx context.Context, actor domain.Actor, oldName, newName string) (*domain.CompanyRename, error) {
	if err := actor.Require(domain.RoleEmployer); err != nil {
		return nil, err
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, domain.Invalid("company name is required")
	}
	oldName = strings.TrimSpace(oldName)
	if strings.EqualFold(oldName, newName) {
		return nil, domain.Invalid("company name is unchanged")
	}
	rn := &domain.CompanyRename{
		ID:         newID(),
		EmployerID: actor.ID,
		OldName:    oldName,
		NewName:    newName,
		CreatedAt:  s.now(),
	}
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		return tx.Renames().Create(ctx, rn)
	})
	if err != nil {
		return nil, err
	}
	return rn, nil
}
