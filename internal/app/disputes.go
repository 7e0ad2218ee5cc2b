package app

import (
	"context"
	"strings"

	"goldwork/internal/domain"
)

// Disputes issues admin verdicts on contested jobs. It is the only caller of the privileged
// submission and payment transitions.
type Disputes struct{ *core }

// Winner names the side a verdict favours.
type Winner string

const (
	WinnerStudent  Winner = "student"
	WinnerEmployer Winner = "employer"
)

// ParseWinner normalizes a verdict side.
func ParseWinner(v string) (Winner, error) {
	switch w := Winner(strings.ToLower(strings.TrimSpace(v))); w {
	case WinnerStudent, WinnerEmployer:
		return w, nil
	default:
		return "", domain.Invalid("winner must be student or employer")
	}
}

// Verdict reports the outcome of a dispute resolution.
type Verdict struct {
	Job               *domain.Job `json:"job"`
	Winner            Winner      `json:"winner"`
	Transferred       int64       `json:"transferred"`
	Refunded          int64       `json:"refunded"`
	AnomaliesResolved int         `json:"anomalies_resolved"`
}

// ResolveDispute closes a rejected or disputed job in favour of winner. A student verdict
// pays out any escrowed gold and completes the job; an employer verdict refunds it and
// cancels the job without a penalty. Every active anomaly on the job is resolved with reason.
func (s *Disputes) ResolveDispute(ctx context.Context, actor domain.Actor, jobID, winner, reason string) (*Verdict, error) {
	if err := actor.Require(domain.RoleAdmin); err != nil {
		return nil, err
	}
	var v *Verdict
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		var err error
		v, err = s.resolveDisputeTx(ctx, tx, actor, jobID, winner, reason)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("job_id", jobID).
		Str("actor_id", actor.ID).
		Str("winner", string(v.Winner)).
		Int64("transferred", v.Transferred).
		Int64("refunded", v.Refunded).
		Msg("dispute resolved")
	return v, nil
}

func (c *core) resolveDisputeTx(ctx context.Context, tx domain.Tx, actor domain.Actor, jobID, winner, reason string) (*Verdict, error) {
	if err := actor.Require(domain.RoleAdmin); err != nil {
		return nil, err
	}
	w, err := ParseWinner(winner)
	if err != nil {
		return nil, err
	}
	r, err := domain.ValidateReason(reason)
	if err != nil {
		return nil, err
	}
	job, err := loadJob(ctx, tx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobStatusInProgress || !domain.Disputable(job.SubmissionStatus) {
		return nil, domain.IllegalMove("dispute", string(job.Status)+"/"+string(job.SubmissionStatus), string(w))
	}

	v := &Verdict{Job: job, Winner: w}
	switch w {
	case WinnerStudent:
		if !domain.CanOverrideSubmission(job.SubmissionStatus, domain.SubmissionConfirmed) {
			return nil, domain.IllegalMove("submission", string(job.SubmissionStatus), string(domain.SubmissionConfirmed))
		}
		job.RejectionReason = ""
		if err := c.writeSubmission(ctx, tx, job, domain.SubmissionConfirmed, actor.ID, r); err != nil {
			return nil, err
		}
		p, err := tx.Payments().GetActiveByJob(ctx, jobID)
		switch {
		case err == nil && p.Status == domain.PaymentEscrowed:
			if err := c.releaseTx(ctx, tx, job, p, actor.ID, true); err != nil {
				return nil, err
			}
			v.Transferred = p.Amount
		case err != nil && !isNotFound(err):
			return nil, err
		}
		if err := c.completeTx(ctx, tx, job, actor.ID, true); err != nil {
			return nil, err
		}
	case WinnerEmployer:
		if job.SubmissionStatus == domain.SubmissionDisputed {
			if !domain.CanOverrideSubmission(job.SubmissionStatus, domain.SubmissionRejected) {
				return nil, domain.IllegalMove("submission", string(job.SubmissionStatus), string(domain.SubmissionRejected))
			}
			if err := c.writeSubmission(ctx, tx, job, domain.SubmissionRejected, actor.ID, r); err != nil {
				return nil, err
			}
		}
		if v.Refunded, err = c.refundTx(ctx, tx, jobID); err != nil {
			return nil, err
		}
		if err := c.setJobStatus(ctx, tx, job, domain.JobStatusCancelled, actor.ID, r); err != nil {
			return nil, err
		}
	}

	if v.AnomaliesResolved, err = c.resolveJobAnomalies(ctx, tx, jobID, actor.ID, r); err != nil {
		return nil, err
	}
	return v, nil
}

// resolveJobAnomalies closes every active anomaly referencing the job.
func (c *core) resolveJobAnomalies(ctx context.Context, tx domain.Tx, jobID, adminID, notes string) (int, error) {
	list, err := tx.Anomalies().List(ctx, domain.AnomalyFilter{JobID: jobID})
	if err != nil {
		return 0, err
	}
	n := 0
	for i := range list {
		a := list[i]
		if !a.Status.Active() {
			continue
		}
		if err := c.closeAnomaly(ctx, tx, &a, domain.AnomalyResolved, adminID, notes); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
