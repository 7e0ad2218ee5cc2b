package domain

import "time"

// ApplicationStatus enumerates a student's application states.
type ApplicationStatus string

const (
	ApplicationApplied    ApplicationStatus = "applied"
	ApplicationEvaluating ApplicationStatus = "evaluating"
	ApplicationAccepted   ApplicationStatus = "accepted"
	ApplicationRejected   ApplicationStatus = "rejected"
)

// Decided reports whether the employer has made a final decision.
func (s ApplicationStatus) Decided() bool {
	return s == ApplicationAccepted || s == ApplicationRejected
}

// Application is a student's request to be assigned a job.
type Application struct {
	ID              string            `json:"id"`
	JobID           string            `json:"job_id"`
	StudentID       string            `json:"student_id"`
	Status          ApplicationStatus `json:"status"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	Version         int64             `json:"version"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}
