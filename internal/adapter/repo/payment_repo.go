package repo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"goldwork/internal/domain"
	"goldwork/internal/infra"
	"goldwork/internal/sqlinline"
)

// PaymentRepositoryPG implements domain.PaymentRepository over escrow_payments.
type PaymentRepositoryPG struct {
	q infra.SQLExecutor
}

// Create inserts a payment. At most one non-refunded payment may exist per job.
func (r *PaymentRepositoryPG) Create(ctx context.Context, p *domain.EscrowPayment) error {
	_, err := r.q.Exec(ctx, sqlinline.QInsertPayment,
		p.ID, p.JobID, p.EmployerID, p.StudentID, p.Amount, string(p.Status),
		p.EscrowedAt, p.ReleasedAt, p.RefundedAt, p.CreatedAt)
	if err != nil {
		return mapError(err)
	}
	p.Version = 1
	return nil
}

func (r *PaymentRepositoryPG) GetByID(ctx context.Context, id string) (*domain.EscrowPayment, error) {
	p, err := scanPayment(r.q.QueryRow(ctx, sqlinline.QSelectPaymentByID, id))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (r *PaymentRepositoryPG) GetActiveByJob(ctx context.Context, jobID string) (*domain.EscrowPayment, error) {
	p, err := scanPayment(r.q.QueryRow(ctx, sqlinline.QSelectActivePaymentByJob, jobID))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (r *PaymentRepositoryPG) Update(ctx context.Context, p *domain.EscrowPayment) error {
	tag, err := r.q.Exec(ctx, sqlinline.QUpdatePayment,
		p.ID, p.Version, p.StudentID, p.Amount, string(p.Status),
		p.EscrowedAt, p.ReleasedAt, p.RefundedAt, p.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		_, getErr := r.GetByID(ctx, p.ID)
		return staleOrMissing(getErr)
	}
	p.Version++
	return nil
}

// SumEscrowed totals gold currently held in escrow.
func (r *PaymentRepositoryPG) SumEscrowed(ctx context.Context) (int64, error) {
	var total int64
	err := r.q.QueryRow(ctx, sqlinline.QSumEscrowed).Scan(&total)
	return total, err
}

func scanPayment(row pgx.Row) (*domain.EscrowPayment, error) {
	var p domain.EscrowPayment
	if err := row.Scan(
		&p.ID,
		&p.JobID,
		&p.EmployerID,
		&p.StudentID,
		&p.Amount,
		&p.Status,
		&p.EscrowedAt,
		&p.ReleasedAt,
		&p.RefundedAt,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
