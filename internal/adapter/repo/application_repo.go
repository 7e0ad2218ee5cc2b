package repo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"goldwork/internal/domain"
	"goldwork/internal/infra"
	"goldwork/internal/sqlinline"
)

// ApplicationRepositoryPG implements domain.ApplicationRepository.
type ApplicationRepositoryPG struct {
	q infra.SQLExecutor
}

// Create inserts an application. The partial unique index on (job, student) turns a
// second active application into domain.ErrDuplicateApplication.
func (r *ApplicationRepositoryPG) Create(ctx context.Context, app *domain.Application) error {
	_, err := r.q.Exec(ctx, sqlinline.QInsertApplication,
		app.ID, app.JobID, app.StudentID, string(app.Status), app.RejectionReason, app.CreatedAt)
	if err != nil {
		return mapError(err)
	}
	app.Version = 1
	return nil
}

func (r *ApplicationRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	app, err := scanApplication(r.q.QueryRow(ctx, sqlinline.QSelectApplicationByID, id))
	if err != nil {
		return nil, notFound(err)
	}
	return app, nil
}

func (r *ApplicationRepositoryPG) FindActive(ctx context.Context, jobID, studentID string) (*domain.Application, error) {
	app, err := scanApplication(r.q.QueryRow(ctx, sqlinline.QSelectActiveApplication, jobID, studentID))
	if err != nil {
		return nil, notFound(err)
	}
	return app, nil
}

func (r *ApplicationRepositoryPG) ListByJob(ctx context.Context, jobID string) ([]domain.Application, error) {
	return r.list(ctx, sqlinline.QListApplicationsByJob, jobID)
}

func (r *ApplicationRepositoryPG) ListUndecided(ctx context.Context) ([]domain.Application, error) {
	return r.list(ctx, sqlinline.QListUndecidedApplications)
}

func (r *ApplicationRepositoryPG) list(ctx context.Context, query string, args ...any) ([]domain.Application, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *app)
	}
	return items, rows.Err()
}

// Update writes status changes guarded by the version. A lost race against another
// decision on an already decided application reports domain.ErrAlreadyDecided.
func (r *ApplicationRepositoryPG) Update(ctx context.Context, app *domain.Application) error {
	tag, err := r.q.Exec(ctx, sqlinline.QUpdateApplication,
		app.ID, app.Version, string(app.Status), app.RejectionReason, app.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		current, getErr := r.GetByID(ctx, app.ID)
		if getErr == nil && current.Status.Decided() {
			return domain.ErrAlreadyDecided
		}
		return staleOrMissing(getErr)
	}
	app.Version++
	return nil
}

func scanApplication(row pgx.Row) (*domain.Application, error) {
	var app domain.Application
	if err := row.Scan(
		&app.ID,
		&app.JobID,
		&app.StudentID,
		&app.Status,
		&app.RejectionReason,
		&app.Version,
		&app.CreatedAt,
		&app.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &app, nil
}
