package domain

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AnomalyType enumerates detectable rule violations.
type AnomalyType string

const (
	AnomalyEmployerInactivity AnomalyType = "employer_inactivity"
	AnomalyStudentOverwork    AnomalyType = "student_overwork"
	AnomalyMissedDeadline     AnomalyType = "missed_deadline"
	AnomalyDelayedPayment     AnomalyType = "delayed_payment"
	AnomalyTaskStalled        AnomalyType = "task_stalled"
	AnomalyCompanyNameChange  AnomalyType = "company_name_change"
)

// Label renders the type for admin-facing notes, e.g. "Delayed Payment". A Caser is
// stateful, so each call builds its own.
func (t AnomalyType) Label() string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(t), "_", " "))
}

// Severity orders anomalies for triage.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AnomalyStatus enumerates admin handling states.
type AnomalyStatus string

const (
	AnomalyOpen          AnomalyStatus = "open"
	AnomalyInvestigating AnomalyStatus = "investigating"
	AnomalyResolved      AnomalyStatus = "resolved"
	AnomalyDismissed     AnomalyStatus = "dismissed"
)

// Active reports whether the anomaly still needs attention.
func (s AnomalyStatus) Active() bool {
	return s == AnomalyOpen || s == AnomalyInvestigating
}

// Anomaly is a detected or reported irregularity.
type Anomaly struct {
	ID       string        `json:"id"`
	Type     AnomalyType   `json:"type"`
	Severity Severity      `json:"severity"`
	Status   AnomalyStatus `json:"status"`
	// Subject is the dedupe key for active anomalies of the same type, e.g. "job:<id>".
	Subject    string     `json:"subject"`
	JobID      *string    `json:"job_id,omitempty"`
	EmployerID *string    `json:"employer_id,omitempty"`
	StudentID  *string    `json:"student_id,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	ResolvedBy *string    `json:"resolved_by,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	Version    int64      `json:"version"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func JobSubject(id string) string      { return "job:" + id }
func EmployerSubject(id string) string { return "employer:" + id }
func StudentSubject(id string) string  { return "student:" + id }

// AnomalyFilter narrows anomaly listings.
type AnomalyFilter struct {
	Status AnomalyStatus
	Type   AnomalyType
	JobID  string
	Limit  int
}

// CompanyRename records an employer changing the displayed company name.
type CompanyRename struct {
	ID         string    `json:"id"`
	EmployerID string    `json:"employer_id"`
	OldName    string    `json:"old_name"`
	NewName    string    `json:"new_name"`
	CreatedAt  time.Time `json:"created_at"`
}
