package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"goldwork/internal/domain"
	"goldwork/internal/infra"
	"goldwork/internal/sqlinline"
)

// JobRepositoryPG implements domain.JobRepository.
type JobRepositoryPG struct {
	q infra.SQLExecutor
}

// Create inserts a new job record.
func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.Job) error {
	_, err := r.q.Exec(ctx, sqlinline.QInsertJob,
		job.ID,
		job.EmployerID,
		job.Title,
		job.GoldReward,
		string(job.Priority),
		job.Deadline,
		string(job.Status),
		job.AcceptedStudentID,
		job.AcceptedAt,
		string(job.SubmissionStatus),
		job.Report,
		job.SubmittedAt,
		job.RejectionReason,
		job.CreatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	job.Version = 1
	return nil
}

// GetByID fetches a job by its identifier.
func (r *JobRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	job, err := scanJob(r.q.QueryRow(ctx, sqlinline.QSelectJobByID, id))
	if err != nil {
		return nil, notFound(err)
	}
	return job, nil
}

// List returns jobs matching the filter, newest first.
func (r *JobRepositoryPG) List(ctx context.Context, f domain.JobFilter) ([]domain.Job, error) {
	rows, err := r.q.Query(ctx, sqlinline.QListJobs, string(f.Status), f.EmployerID, f.StudentID, f.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update writes the job if its version still matches and bumps job.Version.
func (r *JobRepositoryPG) Update(ctx context.Context, job *domain.Job) error {
	tag, err := r.q.Exec(ctx, sqlinline.QUpdateJob,
		job.ID,
		job.Version,
		job.Title,
		job.GoldReward,
		string(job.Priority),
		job.Deadline,
		string(job.Status),
		job.AcceptedStudentID,
		job.AcceptedAt,
		string(job.SubmissionStatus),
		job.Report,
		job.SubmittedAt,
		job.RejectionReason,
		job.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		_, getErr := r.GetByID(ctx, job.ID)
		return staleOrMissing(getErr)
	}
	job.Version++
	return nil
}

// LockToStudent assigns the job to studentID only while it is posted and unassigned.
func (r *JobRepositoryPG) LockToStudent(ctx context.Context, jobID, studentID string, at time.Time) (*domain.Job, error) {
	job, err := scanJob(r.q.QueryRow(ctx, sqlinline.QLockJobToStudent, jobID, studentID, at))
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, mapError(err)
	}
	current, err := r.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if current.AcceptedStudentID != nil {
		return nil, domain.ErrJobAlreadyLocked
	}
	return nil, domain.ErrJobNotOpen
}

func scanJob(row pgx.Row) (*domain.Job, error) {
	var job domain.Job
	if err := row.Scan(
		&job.ID,
		&job.EmployerID,
		&job.Title,
		&job.GoldReward,
		&job.Priority,
		&job.Deadline,
		&job.Status,
		&job.AcceptedStudentID,
		&job.AcceptedAt,
		&job.SubmissionStatus,
		&job.Report,
		&job.SubmittedAt,
		&job.RejectionReason,
		&job.Version,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &job, nil
}
