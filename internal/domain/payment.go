package domain

import "time"

// PaymentStatus enumerates escrow payment states.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentEscrowed PaymentStatus = "escrowed"
	PaymentReleased PaymentStatus = "released"
	// PaymentRefunded is reachable only through an employer dispute verdict or a cancellation.
	PaymentRefunded PaymentStatus = "refunded"
)

// EscrowPayment holds funded gold for an in-progress job.
type EscrowPayment struct {
	ID         string        `json:"id"`
	JobID      string        `json:"job_id"`
	EmployerID string        `json:"employer_id"`
	StudentID  string        `json:"student_id"`
	Amount     int64         `json:"amount"`
	Status     PaymentStatus `json:"status"`
	EscrowedAt *time.Time    `json:"escrowed_at,omitempty"`
	ReleasedAt *time.Time    `json:"released_at,omitempty"`
	RefundedAt *time.Time    `json:"refunded_at,omitempty"`
	Version    int64         `json:"version"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// EntryKind is the business reason for a ledger movement.
type EntryKind string

const (
	EntryGrant   EntryKind = "grant"
	EntryFund    EntryKind = "fund"
	EntryRelease EntryKind = "release"
	EntryRefund  EntryKind = "refund"
	EntryPenalty EntryKind = "penalty"
)

// Account is an actor's spendable gold balance.
type Account struct {
	ActorID   string    `json:"actor_id"`
	Balance   int64     `json:"balance"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LedgerEntry records one balance movement; Amount is signed.
type LedgerEntry struct {
	ID           string    `json:"id"`
	ActorID      string    `json:"actor_id"`
	Kind         EntryKind `json:"kind"`
	Amount       int64     `json:"amount"`
	BalanceAfter int64     `json:"balance_after"`
	JobID        *string   `json:"job_id,omitempty"`
	PaymentID    *string   `json:"payment_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// LedgerTotals summarizes all tracked gold.
type LedgerTotals struct {
	Balances int64 `json:"balances"`
	Escrow   int64 `json:"escrow"`
	Total    int64 `json:"total"`
}
