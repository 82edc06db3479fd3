// Package job exposes the job runner (SPEC_FULL §4.B) as a control
// surface: submit a subscription's fetch job out of band from the
// scheduler's own tick, or cancel every job owned by a given owner.
package job

import "feedcore/internal/usecase/update"

// SubmitRequest is the request body for POST /jobs.
type SubmitRequest struct {
	SubscriptionID string `json:"subscription_id"`
}

// SubmitResponse acknowledges a submitted job; it does not wait for the
// job to complete since that happens asynchronously on the runner.
type SubmitResponse struct {
	JobID          uint64 `json:"job_id"`
	Owner          string `json:"owner"`
	SubscriptionID string `json:"subscription_id"`
}

// OutcomeDTO reports the result of a completed fetch, logged rather than
// returned synchronously since the submitting request has already
// responded by the time a job finishes.
type OutcomeDTO struct {
	SubscriptionID string `json:"subscription_id"`
	NewCount       int    `json:"new_count"`
	UpdatedCount   int    `json:"updated_count"`
	Retryable      bool   `json:"retryable"`
}

func outcomeFromUpdate(subID string, o update.Outcome) OutcomeDTO {
	return OutcomeDTO{
		SubscriptionID: subID,
		NewCount:       o.NewCount,
		UpdatedCount:   o.UpdatedCount,
		Retryable:      o.Retryable,
	}
}
