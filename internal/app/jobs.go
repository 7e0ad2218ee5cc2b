package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"goldwork/internal/domain"
)

// Jobs owns job posting and the job status lifecycle.
type Jobs struct{ *core }

// PostJobInput describes a new job.
type PostJobInput struct {
	Title      string
	GoldReward int64
	Priority   string
	Deadline   *time.Time
}

// EditJobInput carries optional changes to a posted job.
type EditJobInput struct {
	Title      *string
	GoldReward *int64
	Priority   *string
	Deadline   *time.Time
}

// CancelResult reports the ledger side effects of a cancellation.
type CancelResult struct {
	Job      *domain.Job `json:"job"`
	Penalty  int64       `json:"penalty"`
	Refunded int64       `json:"refunded"`
}

const maxTitleLength = 120

func validateTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", domain.Invalid("title is required")
	}
	if len([]rune(t)) > maxTitleLength {
		return "", domain.Invalid("title must be at most %d characters", maxTitleLength)
	}
	return t, nil
}

// Post creates a job in status posted.
func (s *Jobs) Post(ctx context.Context, actor domain.Actor, in PostJobInput) (*domain.Job, error) {
	if err := actor.Require(domain.RoleEmployer); err != nil {
		return nil, err
	}
	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if in.GoldReward < 0 {
		return nil, domain.Invalid("gold reward must not be negative")
	}
	priority, err := domain.ParsePriority(in.Priority)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if in.Deadline != nil && !in.Deadline.After(now) {
		return nil, domain.Invalid("deadline must be in the future")
	}
	job := &domain.Job{
		ID:               newID(),
		EmployerID:       actor.ID,
		Title:            title,
		GoldReward:       in.GoldReward,
		Priority:         priority,
		Deadline:         in.Deadline,
		Status:           domain.JobStatusPosted,
		SubmissionStatus: domain.SubmissionNone,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err = s.store.InTx(ctx, func(tx domain.Tx) error {
		if err := tx.Jobs().Create(ctx, job); err != nil {
			return err
		}
		return s.recordEvent(ctx, tx, job.ID, "status", "", string(domain.JobStatusPosted), actor.ID, "posted")
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("job_id", job.ID).Str("actor_id", actor.ID).Int64("reward", job.GoldReward).Msg("job posted")
	return job, nil
}

// Edit changes a job that is still posted.
func (s *Jobs) Edit(ctx context.Context, actor domain.Actor, jobID string, in EditJobInput) (*domain.Job, error) {
	if err := actor.Require(domain.RoleEmployer); err != nil {
		return nil, err
	}
	var job *domain.Job
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		var err error
		job, err = loadJob(ctx, tx, jobID)
		if err != nil {
			return err
		}
		if !actor.Owns(domain.RoleEmployer, job.EmployerID) {
			return domain.Forbidden("job belongs to another employer")
		}
		if job.Status != domain.JobStatusPosted {
			return domain.IllegalMove("job", string(job.Status), "edited")
		}
		if in.Title != nil {
			if job.Title, err = validateTitle(*in.Title); err != nil {
				return err
			}
		}
		if in.GoldReward != nil {
			if *in.GoldReward < 0 {
				return domain.Invalid("gold reward must not be negative")
			}
			job.GoldReward = *in.GoldReward
		}
		if in.Priority != nil {
			if job.Priority, err = domain.ParsePriority(*in.Priority); err != nil {
				return err
			}
		}
		if in.Deadline != nil {
			if !in.Deadline.After(s.now()) {
				return domain.Invalid("deadline must be in the future")
			}
			job.Deadline = in.Deadline
		}
		job.UpdatedAt = s.now()
		return tx.Jobs().Update(ctx, job)
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// Get returns a job by id. Actors outside the job see its public listing only.
func (s *Jobs) Get(ctx context.Context, actor domain.Actor, jobID string) (*domain.Job, error) {
	var job *domain.Job
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		var err error
		job, err = loadJob(ctx, tx, jobID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !job.VisibleTo(actor) {
		pub := job.Public()
		return &pub, nil
	}
	return job, nil
}

// List returns jobs matching filter, newest first. Only admins and the student
// themselves may filter by student.
func (s *Jobs) List(ctx context.Context, actor domain.Actor, filter domain.JobFilter) ([]domain.Job, error) {
	if filter.StudentID != "" && !actor.IsAdmin() && !actor.Owns(domain.RoleStudent, filter.StudentID) {
		return nil, domain.Forbidden("cannot list another student's jobs")
	}
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	var out []domain.Job
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		var err error
		out, err = tx.Jobs().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	for i := range out {
		if !out[i].VisibleTo(actor) {
			out[i] = out[i].Public()
		}
	}
	return out, nil
}

// Events returns the job's event trail after the since cursor.
func (s *Jobs) Events(ctx context.Context, actor domain.Actor, jobID string, since int64, limit int) ([]domain.JobEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var out []domain.JobEvent
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		job, err := loadJob(ctx, tx, jobID)
		if err != nil {
			return err
		}
		if !job.VisibleTo(actor) {
			return domain.Forbidden("only job participants may read its events")
		}
		out, err = tx.Events().ListSince(ctx, jobID, since, limit)
		return err
	})
	return out, err
}

// Cancel moves a posted or in-progress job to cancelled. The accepted student pays the
// abandonment penalty; an escrowed payment goes back to the employer.
func (s *Jobs) Cancel(ctx context.Context, actor domain.Actor, jobID string) (*CancelResult, error) {
	if err := actor.Require(domain.RoleStudent, domain.RoleEmployer, domain.RoleAdmin); err != nil {
		return nil, err
	}
	res := &CancelResult{}
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		job, err := loadJob(ctx, tx, jobID)
		if err != nil {
			return err
		}
		switch actor.Role {
		case domain.RoleEmployer:
			if job.EmployerID != actor.ID {
				return domain.Forbidden("job belongs to another employer")
			}
		case domain.RoleStudent:
			if !job.IsAcceptedStudent(actor.ID) {
				return domain.Forbidden("only the accepted student may cancel")
			}
		}
		if job.SubmissionStatus == domain.SubmissionDisputed {
			return domain.IllegalMove("job", "disputed", string(domain.JobStatusCancelled))
		}
		if !domain.CanMoveJob(job.Status, domain.JobStatusCancelled) {
			return domain.IllegalMove("job", string(job.Status), string(domain.JobStatusCancelled))
		}

		if actor.Role == domain.RoleStudent && job.Status == domain.JobStatusInProgress {
			res.Penalty = job.GoldReward * s.penaltyPercent / 100
			if res.Penalty > 0 {
				if _, err := s.post(ctx, tx, actor.ID, -res.Penalty, domain.EntryPenalty, strPtr(job.ID), nil, true); err != nil {
					return err
				}
			}
		}
		if res.Refunded, err = s.refundTx(ctx, tx, job.ID); err != nil {
			return err
		}
		if err := s.setJobStatus(ctx, tx, job, domain.JobStatusCancelled, actor.ID, "cancelled by "+string(actor.Role)); err != nil {
			return err
		}
		res.Job = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("job_id", jobID).Str("actor_id", actor.ID).Int64("penalty", res.Penalty).Int64("refunded", res.Refunded).Msg("job cancelled")
	return res, nil
}

// Complete finishes an in-progress job whose submission is confirmed.
func (s *Jobs) Complete(ctx context.Context, actor domain.Actor, jobID string) (*domain.Job, error) {
	if err := actor.Require(domain.RoleEmployer, domain.RoleAdmin); err != nil {
		return nil, err
	}
	var job *domain.Job
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		var err error
		job, err = loadJob(ctx, tx, jobID)
		if err != nil {
			return err
		}
		if actor.Role == domain.RoleEmployer && job.EmployerID != actor.ID {
			return domain.Forbidden("job belongs to another employer")
		}
		return s.completeTx(ctx, tx, job, actor.ID, false)
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// completeTx moves the job to completed. Without override the submission must be confirmed.
func (c *core) completeTx(ctx context.Context, tx domain.Tx, job *domain.Job, actorID string, override bool) error {
	if !override && job.SubmissionStatus != domain.SubmissionConfirmed {
		return domain.IllegalMove("job", "submission "+string(job.SubmissionStatus), string(domain.JobStatusCompleted))
	}
	reason := "submission confirmed"
	if override {
		reason = "dispute verdict"
	}
	return c.setJobStatus(ctx, tx, job, domain.JobStatusCompleted, actorID, reason)
}

// lockToStudentTx assigns the job to the student with a compare-and-set.
func (c *core) lockToStudentTx(ctx context.Context, tx domain.Tx, jobID, studentID, actorID string) (*domain.Job, error) {
	job, err := tx.Jobs().LockToStudent(ctx, jobID, studentID, c.now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domainNotFound("job", jobID)
		}
		return nil, err
	}
	if err := c.recordEvent(ctx, tx, jobID, "status", string(domain.JobStatusPosted), string(domain.JobStatusInProgress), actorID, "application accepted"); err != nil {
		return nil, err
	}
	if err := c.recordEvent(ctx, tx, jobID, "submission", string(domain.SubmissionNone), string(domain.SubmissionPending), actorID, "application accepted"); err != nil {
		return nil, err
	}
	return job, nil
}
