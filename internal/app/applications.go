package app

import (
	"context"
	"errors"
	"strings"

	"goldwork/internal/domain"
)

// Applications tracks student applications and employer decisions.
type Applications struct{ *core }

// Apply creates an application for a posted job.
func (s *Applications) Apply(ctx context.Context, actor domain.Actor, jobID string) (*domain.Application, error) {
	if err := actor.Require(domain.RoleStudent); err != nil {
		return nil, err
	}
	var app *domain.Application
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		job, err := loadJob(ctx, tx, jobID)
		if err != nil {
			return err
		}
		if job.Status != domain.JobStatusPosted {
			return domain.ErrJobNotOpen
		}
		if _, err := tx.Applications().FindActive(ctx, jobID, actor.ID); err == nil {
			return domain.ErrDuplicateApplication
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		now := s.now()
		app = &domain.Application{
			ID:        newID(),
			JobID:     jobID,
			StudentID: actor.ID,
			Status:    domain.ApplicationApplied,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return tx.Applications().Create(ctx, app)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("job_id", jobID).Str("application_id", app.ID).Str("actor_id", actor.ID).Msg("application created")
	return app, nil
}

// Decide records the employer's decision. Accepting locks the job to the applicant;
// sibling applications are left untouched.
func (s *Applications) Decide(ctx context.Context, actor domain.Actor, applicationID, decision, reason string) (*domain.Application, error) {
	if err := actor.Require(domain.RoleEmployer); err != nil {
		return nil, err
	}
	next := domain.ApplicationStatus(strings.ToLower(strings.TrimSpace(decision)))
	switch next {
	case domain.ApplicationAccepted, domain.ApplicationRejected, domain.ApplicationEvaluating:
	default:
		return nil, domain.Invalid("status must be evaluating, accepted or rejected")
	}
	var app *domain.Application
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		var err error
		app, err = tx.Applications().GetByID(ctx, applicationID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domainNotFound("application", applicationID)
			}
			return err
		}
		job, err := loadJob(ctx, tx, app.JobID)
		if err != nil {
			return err
		}
		if job.EmployerID != actor.ID {
			return domain.Forbidden("application belongs to another employer's job")
		}
		if app.Status.Decided() {
			return domain.ErrAlreadyDecided
		}
		if !domain.CanMoveApplication(app.Status, next) {
			return domain.IllegalMove("application", string(app.Status), string(next))
		}

		switch next {
		case domain.ApplicationRejected:
			r, err := domain.ValidateReason(reason)
			if err != nil {
				return err
			}
			app.RejectionReason = r
		case domain.ApplicationAccepted:
			if _, err := s.lockToStudentTx(ctx, tx, job.ID, app.StudentID, actor.ID); err != nil {
				return err
			}
		}
		app.Status = next
		app.UpdatedAt = s.now()
		return tx.Applications().Update(ctx, app)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("application_id", app.ID).Str("job_id", app.JobID).Str("status", string(app.Status)).Str("actor_id", actor.ID).Msg("application decided")
	return app, nil
}

// ListByJob returns a job's applications to its employer or an admin.
func (s *Applications) ListByJob(ctx context.Context, actor domain.Actor, jobID string) ([]domain.Application, error) {
	var out []domain.Application
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		job, err := loadJob(ctx, tx, jobID)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && !actor.Owns(domain.RoleEmployer, job.EmployerID) {
			return domain.Forbidden("only the job's employer may list applications")
		}
		out, err = tx.Applications().ListByJob(ctx, jobID)
		return err
	})
	return out, err
}
