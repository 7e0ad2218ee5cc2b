package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"goldwork/internal/domain"
	"goldwork/internal/infra"
	"goldwork/internal/sqlinline"
)

// AccountRepositoryPG implements domain.AccountRepository over accounts and ledger_entries.
type AccountRepositoryPG struct {
	q infra.SQLExecutor
}

// Get returns the account, or a zero balance for actors that never held gold.
func (r *AccountRepositoryPG) Get(ctx context.Context, actorID string) (*domain.Account, error) {
	acc := domain.Account{ActorID: actorID}
	err := r.q.QueryRow(ctx, sqlinline.QSelectAccountForUpdate, actorID).
		Scan(&acc.ActorID, &acc.Balance, &acc.Version, &acc.UpdatedAt)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return &acc, nil
}

// Adjust locks the account row, applies delta and returns the new balance.
func (r *AccountRepositoryPG) Adjust(ctx context.Context, actorID string, delta int64, allowNegative bool) (int64, error) {
	acc, err := r.Get(ctx, actorID)
	if err != nil {
		return 0, err
	}
	next := acc.Balance + delta
	if delta < 0 && next < 0 && !allowNegative {
		return acc.Balance, domain.ErrInsufficientFunds
	}
	if _, err := r.q.Exec(ctx, sqlinline.QUpsertAccountBalance, actorID, next); err != nil {
		return 0, mapError(err)
	}
	return next, nil
}

func (r *AccountRepositoryPG) AppendEntry(ctx context.Context, e *domain.LedgerEntry) error {
	_, err := r.q.Exec(ctx, sqlinline.QInsertLedgerEntry,
		e.ID, e.ActorID, string(e.Kind), e.Amount, e.BalanceAfter, e.JobID, e.PaymentID, e.CreatedAt)
	return mapError(err)
}

// ListEntries returns the actor's entries, newest first.
func (r *AccountRepositoryPG) ListEntries(ctx context.Context, actorID string, limit int) ([]domain.LedgerEntry, error) {
	rows, err := r.q.Query(ctx, sqlinline.QListLedgerEntries, actorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Kind, &e.Amount, &e.BalanceAfter, &e.JobID, &e.PaymentID, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (r *AccountRepositoryPG) SumBalances(ctx context.Context) (int64, error) {
	var total int64
	err := r.q.QueryRow(ctx, sqlinline.QSumBalances).Scan(&total)
	return total, err
}
