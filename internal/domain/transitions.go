package domain

// Normal-path transition tables. Anything absent is rejected with ErrInvalidTransition.
var (
	jobTransitions = map[JobStatus][]JobStatus{
		JobStatusPosted:     {JobStatusInProgress, JobStatusCancelled},
		JobStatusInProgress: {JobStatusCompleted, JobStatusCancelled},
	}

	submissionTransitions = map[SubmissionStatus][]SubmissionStatus{
		SubmissionNone:      {SubmissionPending},
		SubmissionPending:   {SubmissionSubmitted},
		SubmissionSubmitted: {SubmissionConfirmed, SubmissionRejected},
		SubmissionRejected:  {SubmissionDisputed},
	}

	applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
		ApplicationApplied:    {ApplicationEvaluating, ApplicationAccepted, ApplicationRejected},
		ApplicationEvaluating: {ApplicationAccepted, ApplicationRejected},
	}

	paymentTransitions = map[PaymentStatus][]PaymentStatus{
		PaymentPending:  {PaymentEscrowed},
		PaymentEscrowed: {PaymentReleased},
	}

	anomalyTransitions = map[AnomalyStatus][]AnomalyStatus{
		AnomalyOpen:          {AnomalyInvestigating, AnomalyResolved, AnomalyDismissed},
		AnomalyInvestigating: {AnomalyResolved, AnomalyDismissed},
	}
)

// Privileged transitions used only by the dispute resolver and cancellation refunds.
// They are disjoint from the normal tables above.
var (
	overrideSubmissionTransitions = map[SubmissionStatus][]SubmissionStatus{
		SubmissionRejected: {SubmissionConfirmed},
		SubmissionDisputed: {SubmissionConfirmed, SubmissionRejected},
	}

	refundTransitions = map[PaymentStatus][]PaymentStatus{
		PaymentEscrowed: {PaymentRefunded},
	}
)

func allowed[S comparable](table map[S][]S, from, to S) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

func CanMoveJob(from, to JobStatus) bool { return allowed(jobTransitions, from, to) }

func CanMoveSubmission(from, to SubmissionStatus) bool {
	return allowed(submissionTransitions, from, to)
}

func CanMoveApplication(from, to ApplicationStatus) bool {
	return allowed(applicationTransitions, from, to)
}

func CanMovePayment(from, to PaymentStatus) bool { return allowed(paymentTransitions, from, to) }

func CanMoveAnomaly(from, to AnomalyStatus) bool { return allowed(anomalyTransitions, from, to) }

// CanOverrideSubmission reports whether an admin verdict may move the submission.
func CanOverrideSubmission(from, to SubmissionStatus) bool {
	return allowed(overrideSubmissionTransitions, from, to)
}

// Disputable reports whether the override table has any entry for the submission state.
func Disputable(s SubmissionStatus) bool {
	_, ok := overrideSubmissionTransitions[s]
	return ok
}

func CanRefund(from PaymentStatus) bool { return allowed(refundTransitions, from, PaymentRefunded) }
