package domain

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestJobTransitionsAreForwardOnly(t *testing.T) {
	all := []JobStatus{JobStatusPosted, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled}
	legal := map[[2]JobStatus]bool{
		{JobStatusPosted, JobStatusInProgress}:    true,
		{JobStatusPosted, JobStatusCancelled}:     true,
		{JobStatusInProgress, JobStatusCompleted}: true,
		{JobStatusInProgress, JobStatusCancelled}: true,
	}
	for _, from := range all {
		for _, to := range all {
			if got := CanMoveJob(from, to); got != legal[[2]JobStatus{from, to}] {
				t.Fatalf("CanMoveJob(%s, %s) = %v", from, to, got)
			}
		}
	}
}

func TestSubmissionTransitions(t *testing.T) {
	all := []SubmissionStatus{SubmissionNone, SubmissionPending, SubmissionSubmitted, SubmissionConfirmed, SubmissionRejected, SubmissionDisputed}
	legal := map[[2]SubmissionStatus]bool{
		{SubmissionNone, SubmissionPending}:        true,
		{SubmissionPending, SubmissionSubmitted}:   true,
		{SubmissionSubmitted, SubmissionConfirmed}: true,
		{SubmissionSubmitted, SubmissionRejected}:  true,
		{SubmissionRejected, SubmissionDisputed}:   true,
	}
	override := map[[2]SubmissionStatus]bool{
		{SubmissionRejected, SubmissionConfirmed}: true,
		{SubmissionDisputed, SubmissionConfirmed}: true,
		{SubmissionDisputed, SubmissionRejected}:  true,
	}
	for _, from := range all {
		for _, to := range all {
			key := [2]SubmissionStatus{from, to}
			if got := CanMoveSubmission(from, to); got != legal[key] {
				t.Fatalf("CanMoveSubmission(%s, %s) = %v", from, to, got)
			}
			if got := CanOverrideSubmission(from, to); got != override[key] {
				t.Fatalf("CanOverrideSubmission(%s, %s) = %v", from, to, got)
			}
			if legal[key] && override[key] {
				t.Fatalf("%s -> %s is in both tables", from, to)
			}
		}
	}
	for _, s := range all {
		want := s == SubmissionRejected || s == SubmissionDisputed
		if Disputable(s) != want {
			t.Fatalf("Disputable(%s) = %v", s, !want)
		}
	}
}

func TestPaymentTransitions(t *testing.T) {
	all := []PaymentStatus{PaymentPending, PaymentEscrowed, PaymentReleased, PaymentRefunded}
	for _, from := range all {
		for _, to := range all {
			want := (from == PaymentPending && to == PaymentEscrowed) || (from == PaymentEscrowed && to == PaymentReleased)
			if got := CanMovePayment(from, to); got != want {
				t.Fatalf("CanMovePayment(%s, %s) = %v", from, to, got)
			}
		}
		if got := CanRefund(from); got != (from == PaymentEscrowed) {
			t.Fatalf("CanRefund(%s) = %v", from, got)
		}
	}
}

func TestApplicationTransitions(t *testing.T) {
	cases := []struct {
		from, to ApplicationStatus
		want     bool
	}{
		{ApplicationApplied, ApplicationEvaluating, true},
		{ApplicationApplied, ApplicationAccepted, true},
		{ApplicationEvaluating, ApplicationRejected, true},
		{ApplicationEvaluating, ApplicationApplied, false},
		{ApplicationAccepted, ApplicationRejected, false},
		{ApplicationRejected, ApplicationAccepted, false},
	}
	for _, c := range cases {
		if got := CanMoveApplication(c.from, c.to); got != c.want {
			t.Fatalf("CanMoveApplication(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestValidateReason(t *testing.T) {
	if _, err := ValidateReason("  too short "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	got, err := ValidateReason("  missing required files ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "missing required files" {
		t.Fatalf("reason not trimmed: %q", got)
	}
}

func TestActorRequire(t *testing.T) {
	if err := Student("s1").Require(RoleEmployer, RoleAdmin); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("student passed employer check: %v", err)
	}
	if err := (Actor{Role: RoleAdmin}).Require(RoleAdmin); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("actor without id passed: %v", err)
	}
	if err := Admin("a1").Require(RoleAdmin); err != nil {
		t.Fatalf("admin rejected: %v", err)
	}
	if _, ok := ParseRole(" Employer "); !ok {
		t.Fatal("ParseRole should accept mixed case")
	}
}

func TestAnomalyLabel(t *testing.T) {
	if got := AnomalyCompanyNameChange.Label(); got != "Company Name Change" {
		t.Fatalf("Label() = %q", got)
	}
}

func TestAnomalyLabelConcurrent(t *testing.T) {
	types := []AnomalyType{
		AnomalyEmployerInactivity, AnomalyStudentOverwork, AnomalyMissedDeadline,
		AnomalyDelayedPayment, AnomalyTaskStalled, AnomalyCompanyNameChange,
	}
	want := make(map[AnomalyType]string, len(types))
	for _, typ := range types {
		want[typ] = typ.Label()
	}

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(typ AnomalyType) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if got := typ.Label(); got != want[typ] {
					errs <- got
					return
				}
			}
		}(types[i%len(types)])
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Fatalf("concurrent Label() returned %q", got)
	}
}

func TestJobParticipantView(t *testing.T) {
	sid := "student-1"
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	job := Job{
		ID:                "j1",
		EmployerID:        "employer-1",
		Status:            JobStatusInProgress,
		AcceptedStudentID: &sid,
		AcceptedAt:        &now,
		SubmissionStatus:  SubmissionRejected,
		Report:            &SubmissionReport{Notes: "done"},
		SubmittedAt:       &now,
		RejectionReason:   "missing required files",
	}

	for _, a := range []Actor{Admin("admin-1"), Employer("employer-1"), Student("student-1")} {
		if !job.VisibleTo(a) {
			t.Fatalf("%+v should see the full job", a)
		}
	}
	for _, a := range []Actor{Employer("employer-2"), Student("student-2")} {
		if job.VisibleTo(a) {
			t.Fatalf("%+v should not see the full job", a)
		}
	}

	pub := job.Public()
	if pub.Report != nil || pub.RejectionReason != "" || pub.AcceptedStudentID != nil || pub.SubmittedAt != nil || pub.AcceptedAt != nil {
		t.Fatalf("Public() leaked participant fields: %+v", pub)
	}
	if pub.Title != job.Title || pub.Status != job.Status {
		t.Fatalf("Public() dropped listing fields: %+v", pub)
	}
	if job.Report == nil {
		t.Fatal("Public() must not modify the receiver")
	}
}
