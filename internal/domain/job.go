package domain

import (
	"strings"
	"time"
)

// JobStatus enumerates job lifecycle states.
type JobStatus string

const (
	JobStatusPosted     JobStatus = "posted"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// SubmissionStatus tracks the accepted student's completion submission.
type SubmissionStatus string

const (
	SubmissionNone      SubmissionStatus = "none"
	SubmissionPending   SubmissionStatus = "pending"
	SubmissionSubmitted SubmissionStatus = "submitted"
	SubmissionConfirmed SubmissionStatus = "confirmed"
	SubmissionRejected  SubmissionStatus = "rejected"
	SubmissionDisputed  SubmissionStatus = "disputed"
)

// Priority is the employer-assigned urgency tier.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority defaults an empty value to medium.
func ParsePriority(v string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(v)))
	switch p {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	default:
		return "", Invalid("priority must be low, medium or high")
	}
}

// MinReasonLength is the shortest accepted rejection reason.
const MinReasonLength = 10

// SubmissionReport is what the student declares on submit.
type SubmissionReport struct {
	ProofURL  string        `json:"proof_url,omitempty"`
	Notes     string        `json:"completion_notes,omitempty"`
	TimeTaken time.Duration `json:"time_taken_ns"`
}

// Job is a posted micro-internship task.
type Job struct {
	ID                string            `json:"id"`
	EmployerID        string            `json:"employer_id"`
	Title             string            `json:"title"`
	GoldReward        int64             `json:"gold_reward"`
	Priority          Priority          `json:"priority"`
	Deadline          *time.Time        `json:"deadline,omitempty"`
	Status            JobStatus         `json:"status"`
	AcceptedStudentID *string           `json:"accepted_student_id,omitempty"`
	AcceptedAt        *time.Time        `json:"accepted_at,omitempty"`
	SubmissionStatus  SubmissionStatus  `json:"submission_status"`
	Report            *SubmissionReport `json:"report,omitempty"`
	SubmittedAt       *time.Time        `json:"submitted_at,omitempty"`
	RejectionReason   string            `json:"rejection_reason,omitempty"`
	// Version increments on every write and guards read-check-write sequences.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAcceptedStudent reports whether studentID holds the job.
func (j Job) IsAcceptedStudent(studentID string) bool {
	return j.AcceptedStudentID != nil && *j.AcceptedStudentID == studentID
}

// VisibleTo reports whether the actor may read the submission and acceptance details.
func (j Job) VisibleTo(a Actor) bool {
	return a.IsAdmin() || a.Owns(RoleEmployer, j.EmployerID) || (a.Role == RoleStudent && j.IsAcceptedStudent(a.ID))
}

// Public returns a copy without the fields reserved for participants.
func (j Job) Public() Job {
	j.AcceptedStudentID = nil
	j.AcceptedAt = nil
	j.Report = nil
	j.SubmittedAt = nil
	j.RejectionReason = ""
	return j
}

// Terminal reports whether no further status transition is possible.
func (j Job) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusCancelled
}

// JobFilter narrows job listings.
type JobFilter struct {
	Status     JobStatus
	EmployerID string
	StudentID  string
	Limit      int
}

// JobEvent is an append-only record of a job or submission status change.
type JobEvent struct {
	Seq       int64     `json:"seq"`
	JobID     string    `json:"job_id"`
	Field     string    `json:"field"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Reason    string    `json:"reason,omitempty"`
	ActorID   string    `json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidateReason enforces the minimum rejection reason length.
func ValidateReason(reason string) (string, error) {
	r := strings.TrimSpace(reason)
	if len([]rune(r)) < MinReasonLength {
		return "", Invalid("reason must be at least %d characters", MinReasonLength)
	}
	return r, nil
}
