package app

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"goldwork/internal/domain"
)

// Submissions drives the accepted student's completion submission through employer review.
type Submissions struct{ *core }

// SubmitInput is the student's completion report. A nil TimeTaken is derived from the
// acceptance time.
type SubmitInput struct {
	ProofURL  string
	Notes     string
	TimeTaken *time.Duration
}

// ConfirmResult carries the completed job and the released payment.
type ConfirmResult struct {
	Job     *domain.Job           `json:"job"`
	Payment *domain.EscrowPayment `json:"payment"`
}

const maxNotesLength = 4000

// Submit records the completion report and moves the submission to submitted.
func (s *Submissions) Submit(ctx context.Context, actor domain.Actor, jobID string, in SubmitInput) (*domain.Job, error) {
	if err := actor.Require(domain.RoleStudent); err != nil {
		return nil, err
	}
	proof := strings.TrimSpace(in.ProofURL)
	if proof != "" {
		u, err := url.Parse(proof)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, domain.Invalid("proof url must be an absolute http(s) url")
		}
	}
	notes := strings.TrimSpace(in.Notes)
	if len([]rune(notes)) > maxNotesLength {
		return nil, domain.Invalid("completion notes must be at most %d characters", maxNotesLength)
	}
	if in.TimeTaken != nil && *in.TimeTaken <= 0 {
		return nil, domain.Invalid("time taken must be positive")
	}

	var job *domain.Job
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		var err error
		job, err = loadJob(ctx, tx, jobID)
		if err != nil {
			return err
		}
		if !job.IsAcceptedStudent(actor.ID) {
			return domain.Forbidden("only the accepted student may submit")
		}
		if job.Status != domain.JobStatusInProgress {
			return domain.IllegalMove("submission", "job "+string(job.Status), string(domain.SubmissionSubmitted))
		}
		if !domain.CanMoveSubmission(job.SubmissionStatus, domain.SubmissionSubmitted) {
			return domain.IllegalMove("submission", string(job.SubmissionStatus), string(domain.SubmissionSubmitted))
		}
		now := s.now()
		report := &domain.SubmissionReport{ProofURL: proof, Notes: notes}
		switch {
		case in.TimeTaken != nil:
			report.TimeTaken = *in.TimeTaken
		case job.AcceptedAt != nil:
			report.TimeTaken = now.Sub(*job.AcceptedAt)
		}
		job.Report = report
		job.SubmittedAt = &now
		return s.setSubmission(ctx, tx, job, domain.SubmissionSubmitted, actor.ID, "")
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("job_id", jobID).Str("actor_id", actor.ID).Msg("submission received")
	return job, nil
}

// Confirm accepts the submission, releases the escrowed payment to the student and
// completes the job. All three happen in one transaction or not at all.
func (s *Submissions) Confirm(ctx context.Context, actor domain.Actor, jobID string) (*ConfirmResult, error) {
	if err := actor.Require(domain.RoleEmployer); err != nil {
		return nil, err
	}
	res := &ConfirmResult{}
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		job, err := s.reviewableJob(ctx, tx, actor, jobID, domain.SubmissionConfirmed)
		if err != nil {
			return err
		}
		payment, err := tx.Payments().GetActiveByJob(ctx, jobID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.IllegalMove("payment", "unfunded", string(domain.PaymentReleased))
		}
		if err != nil {
			return err
		}
		if payment.Status != domain.PaymentEscrowed {
			return domain.IllegalMove("payment", string(payment.Status), string(domain.PaymentReleased))
		}
		job.RejectionReason = ""
		if err := s.setSubmission(ctx, tx, job, domain.SubmissionConfirmed, actor.ID, ""); err != nil {
			return err
		}
		if err := s.releaseTx(ctx, tx, job, payment, actor.ID, false); err != nil {
			return err
		}
		if err := s.completeTx(ctx, tx, job, actor.ID, false); err != nil {
			return err
		}
		res.Job, res.Payment = job, payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("job_id", jobID).Str("payment_id", res.Payment.ID).Int64("amount", res.Payment.Amount).Msg("submission confirmed")
	return res, nil
}

// Reject turns the submission down with a reason. Escrow and ledger are untouched.
func (s *Submissions) Reject(ctx context.Context, actor domain.Actor, jobID, reason string) (*domain.Job, error) {
	if err := actor.Require(domain.RoleEmployer); err != nil {
		return nil, err
	}
	r, err := domain.ValidateReason(reason)
	if err != nil {
		return nil, err
	}
	var job *domain.Job
	err = s.store.InTx(ctx, func(tx domain.Tx) error {
		var err error
		job, err = s.reviewableJob(ctx, tx, actor, jobID, domain.SubmissionRejected)
		if err != nil {
			return err
		}
		job.RejectionReason = r
		return s.setSubmission(ctx, tx, job, domain.SubmissionRejected, actor.ID, r)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("job_id", jobID).Str("actor_id", actor.ID).Msg("submission rejected")
	return job, nil
}

func (s *Submissions) reviewableJob(ctx context.Context, tx domain.Tx, actor domain.Actor, jobID string, to domain.SubmissionStatus) (*domain.Job, error) {
	job, err := loadJob(ctx, tx, jobID)
	if err != nil {
		return nil, err
	}
	if job.EmployerID != actor.ID {
		return nil, domain.Forbidden("job belongs to another employer")
	}
	if job.Status != domain.JobStatusInProgress {
		return nil, domain.IllegalMove("submission", "job "+string(job.Status), string(to))
	}
	if !domain.CanMoveSubmission(job.SubmissionStatus, to) {
		return nil, domain.IllegalMove("submission", string(job.SubmissionStatus), string(to))
	}
	return job, nil
}

// ReportRejection lets the accepted student contest a rejection. The submission becomes
// disputed and an anomaly is opened for admin review.
func (s *Submissions) ReportRejection(ctx context.Context, actor domain.Actor, jobID string) (*domain.Anomaly, error) {
	if err := actor.Require(domain.RoleStudent); err != nil {
		return nil, err
	}
	var anomaly *domain.Anomaly
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		job, err := loadJob(ctx, tx, jobID)
		if err != nil {
			return err
		}
		if !job.IsAcceptedStudent(actor.ID) {
			return domain.Forbidden("only the accepted student may contest a rejection")
		}
		if job.Status != domain.JobStatusInProgress {
			return domain.IllegalMove("submission", "job "+string(job.Status), string(domain.SubmissionDisputed))
		}
		if err := s.setSubmission(ctx, tx, job, domain.SubmissionDisputed, actor.ID, "rejection contested"); err != nil {
			return err
		}
		anomaly, _, err = s.raise(ctx, tx, domain.Anomaly{
			Type:       domain.AnomalyDelayedPayment,
			Severity:   domain.SeverityHigh,
			Subject:    domain.JobSubject(job.ID),
			JobID:      strPtr(job.ID),
			EmployerID: strPtr(job.EmployerID),
			StudentID:  strPtr(actor.ID),
			Notes:      "student contested rejection: " + job.RejectionReason,
		}, true)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("job_id", jobID).Str("anomaly_id", anomaly.ID).Msg("rejection contested")
	return anomaly, nil
}
