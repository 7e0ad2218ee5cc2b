package app

import (
	"context"
	"errors"
	"fmt"

	"goldwork/internal/domain"
)

// Ledger exposes balances. Balances change only through post, inside a transaction.
type Ledger struct{ *core }

// Balance returns the actor's account. Actors other than admins may only read their own.
func (l *Ledger) Balance(ctx context.Context, actor domain.Actor, actorID string) (*domain.Account, error) {
	if actor.ID != actorID && !actor.IsAdmin() {
		return nil, domain.Forbidden("cannot read another actor's balance")
	}
	var acc *domain.Account
	err := l.store.InTx(ctx, func(tx domain.Tx) error {
		var err error
		acc, err = tx.Accounts().Get(ctx, actorID)
		return err
	})
	return acc, err
}

// Entries lists the newest ledger entries for the actor.
func (l *Ledger) Entries(ctx context.Context, actor domain.Actor, actorID string, limit int) ([]domain.LedgerEntry, error) {
	if actor.ID != actorID && !actor.IsAdmin() {
		return nil, domain.Forbidden("cannot read another actor's ledger")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []domain.LedgerEntry
	err := l.store.InTx(ctx, func(tx domain.Tx) error {
		var err error
		out, err = tx.Accounts().ListEntries(ctx, actorID, limit)
		return err
	})
	return out, err
}

// Grant credits gold to an actor from outside the ledger (admin top-up).
func (l *Ledger) Grant(ctx context.Context, actor domain.Actor, actorID string, amount int64) (int64, error) {
	if err := actor.Require(domain.RoleAdmin); err != nil {
		return 0, err
	}
	if actorID == "" {
		return 0, domain.Invalid("account id is required")
	}
	if amount <= 0 {
		return 0, domain.Invalid("amount must be positive")
	}
	var balance int64
	err := l.store.InTx(ctx, func(tx domain.Tx) error {
		var err error
		balance, err = l.post(ctx, tx, actorID, amount, domain.EntryGrant, nil, nil, false)
		return err
	})
	if err != nil {
		return 0, err
	}
	l.log.Info().Str("actor_id", actorID).Int64("amount", amount).Str("by", actor.ID).Msg("ledger grant")
	return balance, nil
}

// Totals sums spendable balances and escrowed gold.
func (l *Ledger) Totals(ctx context.Context, actor domain.Actor) (domain.LedgerTotals, error) {
	var totals domain.LedgerTotals
	if err := actor.Require(domain.RoleAdmin); err != nil {
		return totals, err
	}
	err := l.store.InTx(ctx, func(tx domain.Tx) error {
		balances, err := tx.Accounts().SumBalances(ctx)
		if err != nil {
			return err
		}
		escrow, err := tx.Payments().SumEscrowed(ctx)
		if err != nil {
			return err
		}
		totals = domain.LedgerTotals{Balances: balances, Escrow: escrow, Total: balances + escrow}
		return nil
	})
	return totals, err
}

// post moves amount (signed) on the actor's balance and appends the matching entry.
func (c *core) post(ctx context.Context, tx domain.Tx, actorID string, amount int64, kind domain.EntryKind, jobID, paymentID *string, allowNegative bool) (int64, error) {
	balance, err := tx.Accounts().Adjust(ctx, actorID, amount, allowNegative)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) {
			return 0, err
		}
		c.log.Error().Err(err).Str("actor_id", actorID).Str("kind", string(kind)).Msg("ledger adjust failed")
		return 0, fmt.Errorf("ledger %s: %w", kind, err)
	}
	entry := &domain.LedgerEntry{
		ID:           newID(),
		ActorID:      actorID,
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: balance,
		JobID:        jobID,
		PaymentID:    paymentID,
		CreatedAt:    c.now(),
	}
	if err := tx.Accounts().AppendEntry(ctx, entry); err != nil {
		return 0, fmt.Errorf("ledger entry: %w", err)
	}
	return balance, nil
}
