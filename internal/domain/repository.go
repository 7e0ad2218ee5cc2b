package domain

import (
	"context"
	"time"
)

// Store opens transaction scopes. Every core operation runs inside exactly one InTx call;
// when fn returns an error nothing it wrote is kept.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx exposes the repositories bound to one transaction.
type Tx interface {
	Jobs() JobRepository
	Applications() ApplicationRepository
	Payments() PaymentRepository
	Accounts() AccountRepository
	Anomalies() AnomalyRepository
	Events() EventRepository
	Renames() CompanyRenameRepository
}

// JobRepository persists jobs. Update is an optimistic write: it succeeds only when the stored
// version equals job.Version, then increments job.Version.
type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, id string) (*Job, error)
	List(ctx context.Context, filter JobFilter) ([]Job, error)
	Update(ctx context.Context, job *Job) error
	// LockToStudent is a compare-and-set on the accepted student. It fails with
	// ErrJobAlreadyLocked when a student is already set and ErrJobNotOpen when the job is not posted.
	LockToStudent(ctx context.Context, jobID, studentID string, at time.Time) (*Job, error)
}

// ApplicationRepository persists applications.
type ApplicationRepository interface {
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id string) (*Application, error)
	// FindActive returns the non-rejected application for (job, student), or ErrNotFound.
	FindActive(ctx context.Context, jobID, studentID string) (*Application, error)
	ListByJob(ctx context.Context, jobID string) ([]Application, error)
	ListUndecided(ctx context.Context) ([]Application, error)
	Update(ctx context.Context, app *Application) error
}

// PaymentRepository persists escrow payments.
type PaymentRepository interface {
	Create(ctx context.Context, p *EscrowPayment) error
	GetByID(ctx context.Context, id string) (*EscrowPayment, error)
	// GetActiveByJob returns the job's non-refunded payment, or ErrNotFound.
	GetActiveByJob(ctx context.Context, jobID string) (*EscrowPayment, error)
	Update(ctx context.Context, p *EscrowPayment) error
	SumEscrowed(ctx context.Context) (int64, error)
}

// AccountRepository holds balances. Adjust is the only balance mutator.
type AccountRepository interface {
	Get(ctx context.Context, actorID string) (*Account, error)
	// Adjust adds delta to the balance. A debit that would leave the balance negative fails
	// with ErrInsufficientFunds unless allowNegative is set.
	Adjust(ctx context.Context, actorID string, delta int64, allowNegative bool) (int64, error)
	AppendEntry(ctx context.Context, entry *LedgerEntry) error
	ListEntries(ctx context.Context, actorID string, limit int) ([]LedgerEntry, error)
	SumBalances(ctx context.Context) (int64, error)
}

// AnomalyRepository persists anomalies.
type AnomalyRepository interface {
	Create(ctx context.Context, a *Anomaly) error
	GetByID(ctx context.Context, id string) (*Anomaly, error)
	// FindActive returns the open or investigating anomaly for (type, subject), or ErrNotFound.
	FindActive(ctx context.Context, t AnomalyType, subject string) (*Anomaly, error)
	List(ctx context.Context, filter AnomalyFilter) ([]Anomaly, error)
	Update(ctx context.Context, a *Anomaly) error
}

// EventRepository is the append-only job event trail.
type EventRepository interface {
	Append(ctx context.Context, e *JobEvent) error
	ListSince(ctx context.Context, jobID string, since int64, limit int) ([]JobEvent, error)
}

// CompanyRenameRepository stores company name changes fed by the profile layer.
type CompanyRenameRepository interface {
	Create(ctx context.Context, r *CompanyRename) error
	ListSince(ctx context.Context, since time.Time) ([]CompanyRename, error)
}
