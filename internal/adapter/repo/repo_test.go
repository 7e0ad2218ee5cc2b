package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goldwork/internal/domain"
	"goldwork/internal/sqlinline"
)

type simpleRow struct {
	scan func(dest ...any) error
}

func (r simpleRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

// fakeSQL answers QueryRow calls from per-query queues and Exec calls with fixed tags.
type fakeSQL struct {
	rows  map[string][]pgx.Row
	tags  map[string]pgconn.CommandTag
	execs []string
	args  [][]any
}

func newFakeSQL() *fakeSQL {
	return &fakeSQL{rows: map[string][]pgx.Row{}, tags: map[string]pgconn.CommandTag{}}
}

func (f *fakeSQL) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, query)
	f.args = append(f.args, args)
	return f.tags[query], nil
}

func (f *fakeSQL) QueryRow(_ context.Context, query string, _ ...any) pgx.Row {
	queue := f.rows[query]
	if len(queue) == 0 {
		return simpleRow{}
	}
	f.rows[query] = queue[1:]
	return queue[0]
}

func (f *fakeSQL) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, fmt.Errorf("query not supported in fake")
}

func jobRow(job domain.Job) pgx.Row {
	return simpleRow{scan: func(dest ...any) error {
		*dest[0].(*string) = job.ID
		*dest[1].(*string) = job.EmployerID
		*dest[6].(*domain.JobStatus) = job.Status
		*dest[7].(**string) = job.AcceptedStudentID
		*dest[9].(*domain.SubmissionStatus) = job.SubmissionStatus
		*dest[13].(*int64) = job.Version
		return nil
	}}
}

func TestLockToStudentReportsWhyNothingMatched(t *testing.T) {
	ctx := context.Background()
	sid := "student-1"

	f := newFakeSQL()
	f.rows[sqlinline.QSelectJobByID] = []pgx.Row{jobRow(domain.Job{ID: "j1", Status: domain.JobStatusInProgress, AcceptedStudentID: &sid})}
	_, err := (&JobRepositoryPG{q: f}).LockToStudent(ctx, "j1", "student-2", time.Now())
	assert.ErrorIs(t, err, domain.ErrJobAlreadyLocked)

	f = newFakeSQL()
	f.rows[sqlinline.QSelectJobByID] = []pgx.Row{jobRow(domain.Job{ID: "j1", Status: domain.JobStatusCancelled})}
	_, err = (&JobRepositoryPG{q: f}).LockToStudent(ctx, "j1", "student-2", time.Now())
	assert.ErrorIs(t, err, domain.ErrJobNotOpen)

	f = newFakeSQL()
	_, err = (&JobRepositoryPG{q: f}).LockToStudent(ctx, "missing", "student-2", time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	f = newFakeSQL()
	f.rows[sqlinline.QLockJobToStudent] = []pgx.Row{jobRow(domain.Job{ID: "j1", Status: domain.JobStatusInProgress, AcceptedStudentID: &sid, Version: 2})}
	job, err := (&JobRepositoryPG{q: f}).LockToStudent(ctx, "j1", sid, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), job.Version)
}

func TestJobUpdateVersioning(t *testing.T) {
	ctx := context.Background()
	f := newFakeSQL()
	f.tags[sqlinline.QUpdateJob] = pgconn.NewCommandTag("UPDATE 1")
	job := &domain.Job{ID: "j1", Version: 3}
	require.NoError(t, (&JobRepositoryPG{q: f}).Update(ctx, job))
	assert.Equal(t, int64(4), job.Version)
	assert.Equal(t, int64(3), f.args[0][1], "the stored version is the optimistic guard")

	f = newFakeSQL()
	f.tags[sqlinline.QUpdateJob] = pgconn.NewCommandTag("UPDATE 0")
	f.rows[sqlinline.QSelectJobByID] = []pgx.Row{jobRow(domain.Job{ID: "j1", Version: 5})}
	err := (&JobRepositoryPG{q: f}).Update(ctx, &domain.Job{ID: "j1", Version: 3})
	assert.ErrorIs(t, err, domain.ErrConflict)

	f = newFakeSQL()
	f.tags[sqlinline.QUpdateJob] = pgconn.NewCommandTag("UPDATE 0")
	err = (&JobRepositoryPG{q: f}).Update(ctx, &domain.Job{ID: "gone", Version: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustRefusesOverdraft(t *testing.T) {
	ctx := context.Background()
	f := newFakeSQL()
	f.rows[sqlinline.QSelectAccountForUpdate] = []pgx.Row{simpleRow{scan: func(dest ...any) error {
		*dest[0].(*string) = "employer-1"
		*dest[1].(*int64) = 100
		return nil
	}}}
	_, err := (&AccountRepositoryPG{q: f}).Adjust(ctx, "employer-1", -500, false)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Empty(t, f.execs)

	balance, err := (&AccountRepositoryPG{q: f}).Adjust(ctx, "student-1", -500, true)
	require.NoError(t, err)
	assert.Equal(t, int64(-500), balance)
	require.Len(t, f.execs, 1)
	assert.Equal(t, sqlinline.QUpsertAccountBalance, f.execs[0])
}

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError(nil))

	serialization := &pgconn.PgError{Code: pgSerializationFailure}
	assert.ErrorIs(t, mapError(fmt.Errorf("commit tx: %w", serialization)), domain.ErrConflict)

	dup := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "applications_active_uidx"}
	assert.ErrorIs(t, mapError(dup), domain.ErrDuplicateApplication)

	other := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "anomalies_active_uidx"}
	assert.ErrorIs(t, mapError(other), domain.ErrConflict)

	badUUID := &pgconn.PgError{Code: pgInvalidTextRepr, Message: `invalid input syntax for type uuid: "abc"`}
	assert.ErrorIs(t, mapError(badUUID), domain.ErrNotFound)

	plain := errors.New("boom")
	assert.Equal(t, plain, mapError(plain))
}

func TestGetByIDMalformedIDIsNotFound(t *testing.T) {
	f := newFakeSQL()
	f.rows[sqlinline.QSelectJobByID] = []pgx.Row{simpleRow{scan: func(...any) error {
		return &pgconn.PgError{Code: pgInvalidTextRepr}
	}}}
	_, err := (&JobRepositoryPG{q: f}).GetByID(context.Background(), "abc")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
