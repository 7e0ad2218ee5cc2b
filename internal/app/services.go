// Package app implements the job, application, escrow, submission, anomaly and dispute
// operations. Each exported operation runs inside one domain.Store transaction and
// re-validates the calling actor's role and ownership.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"goldwork/internal/domain"
)

// DefaultPenaltyPercent is the share of the reward destroyed when a student abandons a job.
const DefaultPenaltyPercent = 50

// Options configures the service set.
type Options struct {
	Logger         zerolog.Logger
	Now            func() time.Time
	PenaltyPercent int
	Rules          DetectionRules
}

type core struct {
	store          domain.Store
	log            zerolog.Logger
	now            func() time.Time
	penaltyPercent int64
	rules          DetectionRules
}

// Services bundles every component sharing one store.
type Services struct {
	Ledger       *Ledger
	Jobs         *Jobs
	Applications *Applications
	Escrow       *Escrow
	Submissions  *Submissions
	Anomalies    *Anomalies
	Disputes     *Disputes
	Cleanup      *Cleanup
}

// New wires the services over store.
func New(store domain.Store, opts Options) *Services {
	c := &core{
		store:          store,
		log:            opts.Logger,
		now:            opts.Now,
		penaltyPercent: int64(opts.PenaltyPercent),
		rules:          opts.Rules,
	}
	if c.now == nil {
		c.now = func() time.Time { return time.Now().UTC() }
	}
	if c.penaltyPercent <= 0 || c.penaltyPercent > 100 {
		c.penaltyPercent = DefaultPenaltyPercent
	}
	if c.rules == (DetectionRules{}) {
		c.rules = DefaultRules()
	}
	return &Services{
		Ledger:       &Ledger{c},
		Jobs:         &Jobs{c},
		Applications: &Applications{c},
		Escrow:       &Escrow{c},
		Submissions:  &Submissions{c},
		Anomalies:    &Anomalies{c},
		Disputes:     &Disputes{c},
		Cleanup:      &Cleanup{c},
	}
}

func newID() string { return uuid.NewString() }

func strPtr(s string) *string { return &s }

// loadJob reads a job, translating a missing row into a NotFound error naming the job.
func loadJob(ctx context.Context, tx domain.Tx, id string) (*domain.Job, error) {
	job, err := tx.Jobs().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domainNotFound("job", id)
		}
		return nil, err
	}
	return job, nil
}

func isNotFound(err error) bool { return errors.Is(err, domain.ErrNotFound) }

func domainNotFound(kind, id string) error {
	return &notFoundError{kind: kind, id: id}
}

type notFoundError struct {
	kind string
	id   string
}

func (e *notFoundError) Error() string { return e.kind + " " + e.id + " not found" }

func (e *notFoundError) Unwrap() error { return domain.ErrNotFound }

// setJobStatus applies a normal-path job transition and records it.
func (c *core) setJobStatus(ctx context.Context, tx domain.Tx, job *domain.Job, to domain.JobStatus, actorID, reason string) error {
	if !domain.CanMoveJob(job.Status, to) {
		return domain.IllegalMove("job", string(job.Status), string(to))
	}
	return c.writeJobStatus(ctx, tx, job, to, actorID, reason)
}

func (c *core) writeJobStatus(ctx context.Context, tx domain.Tx, job *domain.Job, to domain.JobStatus, actorID, reason string) error {
	from := job.Status
	job.Status = to
	job.UpdatedAt = c.now()
	if err := tx.Jobs().Update(ctx, job); err != nil {
		return err
	}
	return c.recordEvent(ctx, tx, job.ID, "status", string(from), string(to), actorID, reason)
}

// setSubmission applies a normal-path submission transition and records it.
func (c *core) setSubmission(ctx context.Context, tx domain.Tx, job *domain.Job, to domain.SubmissionStatus, actorID, reason string) error {
	if !domain.CanMoveSubmission(job.SubmissionStatus, to) {
		return domain.IllegalMove("submission", string(job.SubmissionStatus), string(to))
	}
	return c.writeSubmission(ctx, tx, job, to, actorID, reason)
}

func (c *core) writeSubmission(ctx context.Context, tx domain.Tx, job *domain.Job, to domain.SubmissionStatus, actorID, reason string) error {
	from := job.SubmissionStatus
	job.SubmissionStatus = to
	job.UpdatedAt = c.now()
	if err := tx.Jobs().Update(ctx, job); err != nil {
		return err
	}
	return c.recordEvent(ctx, tx, job.ID, "submission", string(from), string(to), actorID, reason)
}

func (c *core) recordEvent(ctx context.Context, tx domain.Tx, jobID, field, from, to, actorID, reason string) error {
	return tx.Events().Append(ctx, &domain.JobEvent{
		JobID:     jobID,
		Field:     field,
		From:      from,
		To:        to,
		Reason:    reason,
		ActorID:   actorID,
		CreatedAt: c.now(),
	})
}
