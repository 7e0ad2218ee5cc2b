// Package repo implements domain.Store on PostgreSQL through the audited infra.SQLRunner.
package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"goldwork/internal/domain"
	"goldwork/internal/infra"
)

// Postgres error codes the store translates into domain errors.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgInvalidTextRepr      = "22P02"
)

// Store runs every domain transaction as one serializable Postgres transaction.
type Store struct {
	runner *infra.SQLRunner
}

// NewStore creates a Postgres-backed store.
func NewStore(runner *infra.SQLRunner) *Store {
	return &Store{runner: runner}
}

// InTx runs fn in a serializable transaction. Serialization failures surface as
// domain.ErrConflict so callers can retry.
func (s *Store) InTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	err := s.runner.InTx(ctx, func(r *infra.SQLRunner) error {
		return fn(&pgTx{q: r})
	})
	return mapError(err)
}

type pgTx struct {
	q infra.SQLExecutor
}

func (t *pgTx) Jobs() domain.JobRepository                 { return &JobRepositoryPG{q: t.q} }
func (t *pgTx) Applications() domain.ApplicationRepository { return &ApplicationRepositoryPG{q: t.q} }
func (t *pgTx) Payments() domain.PaymentRepository         { return &PaymentRepositoryPG{q: t.q} }
func (t *pgTx) Accounts() domain.AccountRepository         { return &AccountRepositoryPG{q: t.q} }
func (t *pgTx) Anomalies() domain.AnomalyRepository        { return &AnomalyRepositoryPG{q: t.q} }
func (t *pgTx) Events() domain.EventRepository             { return &EventRepositoryPG{q: t.q} }
func (t *pgTx) Renames() domain.CompanyRenameRepository    { return &CompanyRenameRepositoryPG{q: t.q} }

func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected:
			return errors.Join(domain.ErrConflict, err)
		case pgUniqueViolation:
			if pgErr.ConstraintName == "applications_active_uidx" {
				return domain.ErrDuplicateApplication
			}
			return errors.Join(domain.ErrConflict, err)
		case pgInvalidTextRepr:
			// malformed uuid in a lookup; no row can carry it
			return domain.ErrNotFound
		}
	}
	return err
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return mapError(err)
}

// staleOrMissing reports why a versioned update matched no row.
func staleOrMissing(getErr error) error {
	if getErr != nil {
		return getErr
	}
	return domain.ErrConflict
}

var _ domain.Store = (*Store)(nil)
