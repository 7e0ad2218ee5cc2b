package app

import (
	"context"
	"errors"

	"goldwork/internal/domain"
)

// Escrow holds employer gold between funding and payout. The employer is debited at fund
// time and the student credited at release time; in between the gold belongs to neither.
type Escrow struct{ *core }

// Fund debits the employer by the job reward and marks the job's payment escrowed.
// The pending payment row is created in its own transaction so that it survives a
// failed debit.
func (s *Escrow) Fund(ctx context.Context, actor domain.Actor, jobID string) (*domain.EscrowPayment, error) {
	if err := actor.Require(domain.RoleEmployer); err != nil {
		return nil, err
	}
	if err := s.store.InTx(ctx, func(tx domain.Tx) error {
		job, err := s.fundableJob(ctx, tx, actor, jobID)
		if err != nil {
			return err
		}
		_, err = s.pendingPayment(ctx, tx, job)
		return err
	}); err != nil {
		return nil, err
	}

	var payment *domain.EscrowPayment
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		job, err := s.fundableJob(ctx, tx, actor, jobID)
		if err != nil {
			return err
		}
		payment, err = s.pendingPayment(ctx, tx, job)
		if err != nil {
			return err
		}
		if !domain.CanMovePayment(payment.Status, domain.PaymentEscrowed) {
			return domain.IllegalMove("payment", string(payment.Status), string(domain.PaymentEscrowed))
		}
		payment.Amount = job.GoldReward
		if payment.Amount > 0 {
			if _, err := s.post(ctx, tx, job.EmployerID, -payment.Amount, domain.EntryFund, strPtr(job.ID), strPtr(payment.ID), false); err != nil {
				return err
			}
		}
		now := s.now()
		payment.Status = domain.PaymentEscrowed
		payment.EscrowedAt = &now
		payment.UpdatedAt = now
		return tx.Payments().Update(ctx, payment)
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) {
			s.log.Warn().Str("job_id", jobID).Str("actor_id", actor.ID).Msg("escrow funding refused: insufficient funds")
		}
		return nil, err
	}
	s.log.Info().Str("job_id", jobID).Str("payment_id", payment.ID).Int64("amount", payment.Amount).Msg("escrow funded")
	return payment, nil
}

func (s *Escrow) fundableJob(ctx context.Context, tx domain.Tx, actor domain.Actor, jobID string) (*domain.Job, error) {
	job, err := loadJob(ctx, tx, jobID)
	if err != nil {
		return nil, err
	}
	if job.EmployerID != actor.ID {
		return nil, domain.Forbidden("job belongs to another employer")
	}
	if job.Status != domain.JobStatusInProgress {
		return nil, domain.IllegalMove("job", string(job.Status), "funded")
	}
	if job.SubmissionStatus == domain.SubmissionDisputed {
		return nil, domain.IllegalMove("job", "disputed", "funded")
	}
	return job, nil
}

// pendingPayment returns the job's pending payment, creating it on first use. An already
// escrowed or released payment is an invalid funding attempt.
func (s *Escrow) pendingPayment(ctx context.Context, tx domain.Tx, job *domain.Job) (*domain.EscrowPayment, error) {
	payment, err := tx.Payments().GetActiveByJob(ctx, job.ID)
	switch {
	case err == nil:
		if payment.Status != domain.PaymentPending {
			return nil, domain.IllegalMove("payment", string(payment.Status), string(domain.PaymentEscrowed))
		}
		return payment, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}
	now := s.now()
	payment = &domain.EscrowPayment{
		ID:         newID(),
		JobID:      job.ID,
		EmployerID: job.EmployerID,
		Amount:     job.GoldReward,
		Status:     domain.PaymentPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if job.AcceptedStudentID != nil {
		payment.StudentID = *job.AcceptedStudentID
	}
	if err := tx.Payments().Create(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// Release pays an escrowed payment out to the student once the submission is confirmed.
// Confirm already releases in its own transaction, so on the normal path this answers
// AlreadyReleased for a paid-out payment and InvalidTransition for an unconfirmed one.
// A dispute verdict for the student is the admin route to a payout.
func (s *Escrow) Release(ctx context.Context, actor domain.Actor, paymentID string) (*domain.EscrowPayment, error) {
	if err := actor.Require(domain.RoleEmployer, domain.RoleAdmin); err != nil {
		return nil, err
	}
	var payment *domain.EscrowPayment
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		var err error
		payment, err = tx.Payments().GetByID(ctx, paymentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domainNotFound("payment", paymentID)
			}
			return err
		}
		if actor.Role == domain.RoleEmployer && payment.EmployerID != actor.ID {
			return domain.Forbidden("payment belongs to another employer")
		}
		job, err := loadJob(ctx, tx, payment.JobID)
		if err != nil {
			return err
		}
		return s.releaseTx(ctx, tx, job, payment, actor.ID, false)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("payment_id", payment.ID).Str("job_id", payment.JobID).Int64("amount", payment.Amount).Msg("escrow released")
	return payment, nil
}

// ForJob returns the job's current payment to a participant.
func (s *Escrow) ForJob(ctx context.Context, actor domain.Actor, jobID string) (*domain.EscrowPayment, error) {
	var payment *domain.EscrowPayment
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		job, err := loadJob(ctx, tx, jobID)
		if err != nil {
			return err
		}
		if !job.VisibleTo(actor) {
			return domain.Forbidden("only job participants may read its payment")
		}
		payment, err = tx.Payments().GetActiveByJob(ctx, jobID)
		if errors.Is(err, domain.ErrNotFound) {
			return domainNotFound("payment for job", jobID)
		}
		return err
	})
	return payment, err
}

// releaseTx credits the student and marks the payment released. override skips the
// confirmed-submission precondition and is set only by the dispute resolver.
func (c *core) releaseTx(ctx context.Context, tx domain.Tx, job *domain.Job, p *domain.EscrowPayment, actorID string, override bool) error {
	if p.Status == domain.PaymentReleased {
		return domain.ErrAlreadyReleased
	}
	if !domain.CanMovePayment(p.Status, domain.PaymentReleased) {
		return domain.IllegalMove("payment", string(p.Status), string(domain.PaymentReleased))
	}
	if !override && job.SubmissionStatus != domain.SubmissionConfirmed {
		return domain.IllegalMove("payment", "submission "+string(job.SubmissionStatus), string(domain.PaymentReleased))
	}
	studentID := p.StudentID
	if studentID == "" && job.AcceptedStudentID != nil {
		studentID = *job.AcceptedStudentID
	}
	if studentID == "" {
		return domain.IllegalMove("payment", "no student", string(domain.PaymentReleased))
	}
	if p.Amount > 0 {
		if _, err := c.post(ctx, tx, studentID, p.Amount, domain.EntryRelease, strPtr(job.ID), strPtr(p.ID), false); err != nil {
			return err
		}
	}
	now := c.now()
	p.StudentID = studentID
	p.Status = domain.PaymentReleased
	p.ReleasedAt = &now
	p.UpdatedAt = now
	if err := tx.Payments().Update(ctx, p); err != nil {
		return err
	}
	return c.recordEvent(ctx, tx, job.ID, "payment", string(domain.PaymentEscrowed), string(domain.PaymentReleased), actorID, "")
}

// refundTx returns an escrowed payment of the job to its employer. Jobs without an escrowed
// payment refund nothing.
func (c *core) refundTx(ctx context.Context, tx domain.Tx, jobID string) (int64, error) {
	p, err := tx.Payments().GetActiveByJob(ctx, jobID)
	if errors.Is(err, domain.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if !domain.CanRefund(p.Status) {
		return 0, nil
	}
	if p.Amount > 0 {
		if _, err := c.post(ctx, tx, p.EmployerID, p.Amount, domain.EntryRefund, strPtr(jobID), strPtr(p.ID), false); err != nil {
			return 0, err
		}
	}
	now := c.now()
	p.Status = domain.PaymentRefunded
	p.RefundedAt = &now
	p.UpdatedAt = now
	if err := tx.Payments().Update(ctx, p); err != nil {
		return 0, err
	}
	if err := c.recordEvent(ctx, tx, jobID, "payment", string(domain.PaymentEscrowed), string(domain.PaymentRefunded), "", ""); err != nil {
		return 0, err
	}
	return p.Amount, nil
}
