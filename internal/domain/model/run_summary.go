//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

// AccountOutcome is the terminal state of one account within a dispatch run.
type AccountOutcome string

const (
	AccountOutcomeSkippedFiltered        AccountOutcome = "skipped_filtered"
	AccountOutcomeSkippedInactive        AccountOutcome = "skipped_inactive"
	AccountOutcomeSkippedAlreadyNotified AccountOutcome = "skipped_already_notified"
	AccountOutcomeResolutionFailed       AccountOutcome = "resolution_failed"
	AccountOutcomeSent                   AccountOutcome = "sent"
	AccountOutcomeDeliveryFailed         AccountOutcome = "delivery_failed"
	// AccountOutcomeStoreError is used when the gate itself could not be read or written.
	AccountOutcomeStoreError AccountOutcome = "store_error"
)

// RunSummary reports what a single dispatch run did.
type RunSummary struct {
	RunID     string                 `json:"run_id"`
	StartedAt time.Time              `json:"started_at"`
	Duration  time.Duration          `json:"duration"`
	Listed    int                    `json:"listed"`
	Outcomes  map[AccountOutcome]int `json:"outcomes"`
}

// Count returns the number of accounts that ended in outcome.
func (s *RunSummary) Count(outcome AccountOutcome) int {
	if s == nil {
		return 0
	}
	return s.Outcomes[outcome]
}

// Record increments the counter for outcome.
func (s *RunSummary) Record(outcome AccountOutcome) {
	if s.Outcomes == nil {
		s.Outcomes = make(map[AccountOutcome]int)
	}
	s.Outcomes[outcome]++
}
