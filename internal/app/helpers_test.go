package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"goldwork/internal/adapter/memstore"
	"goldwork/internal/app"
	"goldwork/internal/domain"
)

var (
	admin    = domain.Admin("admin-1")
	employer = domain.Employer("employer-1")
	student  = domain.Student("student-1")
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type harness struct {
	svc   *app.Services
	store *memstore.Store
	clock *clock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clk := &clock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	store := memstore.New()
	svc := app.New(store, app.Options{Logger: zerolog.Nop(), Now: clk.Now})
	return &harness{svc: svc, store: store, clock: clk}
}

func (h *harness) grant(t *testing.T, actorID string, amount int64) {
	t.Helper()
	_, err := h.svc.Ledger.Grant(context.Background(), admin, actorID, amount)
	require.NoError(t, err)
}

func (h *harness) balance(t *testing.T, actorID string) int64 {
	t.Helper()
	acc, err := h.svc.Ledger.Balance(context.Background(), admin, actorID)
	require.NoError(t, err)
	return acc.Balance
}

func (h *harness) job(t *testing.T, jobID string) *domain.Job {
	t.Helper()
	job, err := h.svc.Jobs.Get(context.Background(), admin, jobID)
	require.NoError(t, err)
	return job
}

func (h *harness) postJob(t *testing.T, reward int64) *domain.Job {
	t.Helper()
	deadline := h.clock.Now().Add(10 * 24 * time.Hour)
	job, err := h.svc.Jobs.Post(context.Background(), employer, app.PostJobInput{
		Title:      "Translate onboarding guide",
		GoldReward: reward,
		Priority:   "high",
		Deadline:   &deadline,
	})
	require.NoError(t, err)
	return job
}

// acceptedJob posts a job and accepts student's application.
func (h *harness) acceptedJob(t *testing.T, reward int64) *domain.Job {
	t.Helper()
	ctx := context.Background()
	job := h.postJob(t, reward)
	application, err := h.svc.Applications.Apply(ctx, student, job.ID)
	require.NoError(t, err)
	_, err = h.svc.Applications.Decide(ctx, employer, application.ID, "accepted", "")
	require.NoError(t, err)
	return h.job(t, job.ID)
}

// submittedJob returns a funded job whose submission awaits review.
func (h *harness) submittedJob(t *testing.T, reward int64) (*domain.Job, *domain.EscrowPayment) {
	t.Helper()
	ctx := context.Background()
	h.grant(t, employer.ID, reward)
	job := h.acceptedJob(t, reward)
	payment, err := h.svc.Escrow.Fund(ctx, employer, job.ID)
	require.NoError(t, err)
	_, err = h.svc.Submissions.Submit(ctx, student, job.ID, app.SubmitInput{
		ProofURL: "https://files.example.com/guide.pdf",
		Notes:    "translated all chapters",
	})
	require.NoError(t, err)
	return h.job(t, job.ID), payment
}

// disputedJob returns a funded job whose rejection the student contested.
func (h *harness) disputedJob(t *testing.T, reward int64) (*domain.Job, *domain.Anomaly) {
	t.Helper()
	ctx := context.Background()
	job, _ := h.submittedJob(t, reward)
	_, err := h.svc.Submissions.Reject(ctx, employer, job.ID, "missing required files")
	require.NoError(t, err)
	anomaly, err := h.svc.Submissions.ReportRejection(ctx, student, job.ID)
	require.NoError(t, err)
	return h.job(t, job.ID), anomaly
}

func (h *harness) totals(t *testing.T) domain.LedgerTotals {
	t.Helper()
	totals, err := h.svc.Ledger.Totals(context.Background(), admin)
	require.NoError(t, err)
	return totals
}
