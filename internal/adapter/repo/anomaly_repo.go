package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"goldwork/internal/domain"
	"goldwork/internal/infra"
	"goldwork/internal/sqlinline"
)

// AnomalyRepositoryPG implements domain.AnomalyRepository.
type AnomalyRepositoryPG struct {
	q infra.SQLExecutor
}

// Create inserts an anomaly. The partial unique index on active (type, subject) pairs
// reports a concurrent duplicate as domain.ErrConflict.
func (r *AnomalyRepositoryPG) Create(ctx context.Context, a *domain.Anomaly) error {
	_, err := r.q.Exec(ctx, sqlinline.QInsertAnomaly,
		a.ID, string(a.Type), string(a.Severity), string(a.Status), a.Subject,
		a.JobID, a.EmployerID, a.StudentID, a.Notes, a.ResolvedBy, a.ResolvedAt, a.CreatedAt)
	if err != nil {
		return mapError(err)
	}
	a.Version = 1
	return nil
}

func (r *AnomalyRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Anomaly, error) {
	a, err := scanAnomaly(r.q.QueryRow(ctx, sqlinline.QSelectAnomalyByID, id))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (r *AnomalyRepositoryPG) FindActive(ctx context.Context, t domain.AnomalyType, subject string) (*domain.Anomaly, error) {
	a, err := scanAnomaly(r.q.QueryRow(ctx, sqlinline.QSelectActiveAnomaly, string(t), subject))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (r *AnomalyRepositoryPG) List(ctx context.Context, f domain.AnomalyFilter) ([]domain.Anomaly, error) {
	rows, err := r.q.Query(ctx, sqlinline.QListAnomalies, string(f.Status), string(f.Type), f.JobID, f.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Anomaly
	for rows.Next() {
		a, err := scanAnomaly(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

func (r *AnomalyRepositoryPG) Update(ctx context.Context, a *domain.Anomaly) error {
	tag, err := r.q.Exec(ctx, sqlinline.QUpdateAnomaly,
		a.ID, a.Version, string(a.Severity), string(a.Status), a.EmployerID, a.StudentID,
		a.Notes, a.ResolvedBy, a.ResolvedAt, a.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		_, getErr := r.GetByID(ctx, a.ID)
		return staleOrMissing(getErr)
	}
	a.Version++
	return nil
}

func scanAnomaly(row pgx.Row) (*domain.Anomaly, error) {
	var a domain.Anomaly
	if err := row.Scan(
		&a.ID,
		&a.Type,
		&a.Severity,
		&a.Status,
		&a.Subject,
		&a.JobID,
		&a.EmployerID,
		&a.StudentID,
		&a.Notes,
		&a.ResolvedBy,
		&a.ResolvedAt,
		&a.Version,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

// CompanyRenameRepositoryPG implements domain.CompanyRenameRepository.
type CompanyRenameRepositoryPG struct {
	q infra.SQLExecutor
}

func (r *CompanyRenameRepositoryPG) Create(ctx context.Context, rn *domain.CompanyRename) error {
	_, err := r.q.Exec(ctx, sqlinline.QInsertCompanyRename, rn.ID, rn.EmployerID, rn.OldName, rn.NewName, rn.CreatedAt)
	return mapError(err)
}

func (r *CompanyRenameRepositoryPG) ListSince(ctx context.Context, since time.Time) ([]domain.CompanyRename, error) {
	rows, err := r.q.Query(ctx, sqlinline.QListCompanyRenamesSince, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CompanyRename
	for rows.Next() {
		var rn domain.CompanyRename
		if err := rows.Scan(&rn.ID, &rn.EmployerID, &rn.OldName, &rn.NewName, &rn.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, rn)
	}
	return items, rows.Err()
}
