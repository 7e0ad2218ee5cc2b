// Package memstore is an in-memory domain.Store. Transactions run one at a time against a
// private copy of the state which replaces the shared state only when the callback succeeds.
package memstore

import (
	"context"
	"sync"

	"goldwork/internal/domain"
)

type state struct {
	jobs      map[string]domain.Job
	apps      map[string]domain.Application
	payments  map[string]domain.EscrowPayment
	accounts  map[string]domain.Account
	entries   []domain.LedgerEntry
	anomalies map[string]domain.Anomaly
	events    []domain.JobEvent
	renames   []domain.CompanyRename
	seq       int64
}

func newState() *state {
	return &state{
		jobs:      map[string]domain.Job{},
		apps:      map[string]domain.Application{},
		payments:  map[string]domain.EscrowPayment{},
		accounts:  map[string]domain.Account{},
		anomalies: map[string]domain.Anomaly{},
	}
}

func (s *state) clone() *state {
	c := &state{
		jobs:      make(map[string]domain.Job, len(s.jobs)),
		apps:      make(map[string]domain.Application, len(s.apps)),
		payments:  make(map[string]domain.EscrowPayment, len(s.payments)),
		accounts:  make(map[string]domain.Account, len(s.accounts)),
		anomalies: make(map[string]domain.Anomaly, len(s.anomalies)),
		entries:   append([]domain.LedgerEntry(nil), s.entries...),
		events:    append([]domain.JobEvent(nil), s.events...),
		renames:   append([]domain.CompanyRename(nil), s.renames...),
		seq:       s.seq,
	}
	for k, v := range s.jobs {
		c.jobs[k] = v
	}
	for k, v := range s.apps {
		c.apps[k] = v
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.anomalies {
		c.anomalies[k] = v
	}
	return c
}

// Store implements domain.Store in memory.
type Store struct {
	mu    sync.Mutex
	state *state
}

// New returns an empty store.
func New() *Store {
	return &Store{state: newState()}
}

// InTx runs fn against a snapshot and commits it when fn returns nil.
func (s *Store) InTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(&tx{s: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = work
	return nil
}

type tx struct {
	s *state
}

func (t *tx) Jobs() domain.JobRepository                 { return jobRepo{t.s} }
func (t *tx) Applications() domain.ApplicationRepository { return appRepo{t.s} }
func (t *tx) Payments() domain.PaymentRepository         { return paymentRepo{t.s} }
func (t *tx) Accounts() domain.AccountRepository         { return accountRepo{t.s} }
func (t *tx) Anomalies() domain.AnomalyRepository        { return anomalyRepo{t.s} }
func (t *tx) Events() domain.EventRepository             { return eventRepo{t.s} }
func (t *tx) Renames() domain.CompanyRenameRepository    { return renameRepo{t.s} }

var _ domain.Store = (*Store)(nil)
