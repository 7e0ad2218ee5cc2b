package app

import (
	"context"
	"time"

	"goldwork/internal/domain"
)

// Cleanup force-closes jobs that have been stuck longer than an admin-chosen threshold.
type Cleanup struct{ *core }

// CleanupSummary is the audit of one cleanup run.
type CleanupSummary struct {
	Refunded          int      `json:"refunded"`
	RefundedGold      int64    `json:"refunded_gold"`
	Cancelled         int      `json:"cancelled"`
	AnomaliesResolved int      `json:"anomalies_resolved"`
	Failed            int      `json:"failed"`
	FailedJobs        []string `json:"failed_jobs,omitempty"`
}

const cleanupReason = "closed by admin cleanup after inactivity"

// Run resolves disputes untouched for olderThan in the employer's favour and cancels posted
// jobs whose deadline passed more than olderThan ago. Each job is closed in its own
// transaction; jobs that fail are counted and skipped.
func (s *Cleanup) Run(ctx context.Context, actor domain.Actor, olderThan time.Duration) (*CleanupSummary, error) {
	if err := actor.Require(domain.RoleAdmin); err != nil {
		return nil, err
	}
	if olderThan <= 0 {
		return nil, domain.Invalid("olderThan must be positive")
	}
	cutoff := s.now().Add(-olderThan)

	var disputed, stale []string
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		disputed, stale = nil, nil
		active, err := tx.Jobs().List(ctx, domain.JobFilter{Status: domain.JobStatusInProgress})
		if err != nil {
			return err
		}
		for _, job := range active {
			if job.SubmissionStatus == domain.SubmissionDisputed && job.UpdatedAt.Before(cutoff) {
				disputed = append(disputed, job.ID)
			}
		}
		posted, err := tx.Jobs().List(ctx, domain.JobFilter{Status: domain.JobStatusPosted})
		if err != nil {
			return err
		}
		for _, job := range posted {
			if job.Deadline != nil && job.Deadline.Before(cutoff) {
				stale = append(stale, job.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sum := &CleanupSummary{}
	for _, id := range disputed {
		var v *Verdict
		err := s.store.InTx(ctx, func(tx domain.Tx) error {
			var err error
			v, err = s.resolveDisputeTx(ctx, tx, actor, id, string(WinnerEmployer), cleanupReason)
			return err
		})
		if err != nil {
			s.fail(sum, id, err)
			continue
		}
		if v.Refunded > 0 {
			sum.Refunded++
			sum.RefundedGold += v.Refunded
		}
		sum.Cancelled++
		sum.AnomaliesResolved += v.AnomaliesResolved
	}
	for _, id := range stale {
		var resolved int
		err := s.store.InTx(ctx, func(tx domain.Tx) error {
			job, err := loadJob(ctx, tx, id)
			if err != nil {
				return err
			}
			if err := s.setJobStatus(ctx, tx, job, domain.JobStatusCancelled, actor.ID, cleanupReason); err != nil {
				return err
			}
			resolved, err = s.resolveJobAnomalies(ctx, tx, id, actor.ID, cleanupReason)
			return err
		})
		if err != nil {
			s.fail(sum, id, err)
			continue
		}
		sum.Cancelled++
		sum.AnomaliesResolved += resolved
	}

	s.log.Info().
		Str("actor_id", actor.ID).
		Int("refunded", sum.Refunded).
		Int("cancelled", sum.Cancelled).
		Int("anomalies_resolved", sum.AnomaliesResolved).
		Int("failed", sum.Failed).
		Msg("cleanup finished")
	return sum, nil
}

func (s *Cleanup) fail(sum *CleanupSummary, jobID string, err error) {
	s.log.Error().Err(err).Str("job_id", jobID).Msg("cleanup could not close job")
	sum.Failed++
	sum.FailedJobs = append(sum.FailedJobs, jobID)
}
