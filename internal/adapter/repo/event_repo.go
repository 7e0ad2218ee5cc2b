package repo

import (
	"context"

	"goldwork/internal/domain"
	"goldwork/internal/infra"
	"goldwork/internal/sqlinline"
)

// EventRepositoryPG implements domain.EventRepository over the append-only job_events table.
type EventRepositoryPG struct {
	q infra.SQLExecutor
}

// Append stores the event and sets its sequence number.
func (r *EventRepositoryPG) Append(ctx context.Context, e *domain.JobEvent) error {
	return r.q.QueryRow(ctx, sqlinline.QInsertJobEvent,
		e.JobID, e.Field, e.From, e.To, e.Reason, e.ActorID, e.CreatedAt).Scan(&e.Seq)
}

// ListSince returns events of the job with a sequence above since, oldest first.
func (r *EventRepositoryPG) ListSince(ctx context.Context, jobID string, since int64, limit int) ([]domain.JobEvent, error) {
	rows, err := r.q.Query(ctx, sqlinline.QListJobEventsSince, jobID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.JobEvent
	for rows.Next() {
		var e domain.JobEvent
		if err := rows.Scan(&e.Seq, &e.JobID, &e.Field, &e.From, &e.To, &e.Reason, &e.ActorID, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
