//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"fmt"
	"time"
)

// DispatchStatus is the persisted outcome of a welcome dispatch attempt.
type DispatchStatus string

const (
	// DispatchStatusSent marks an account whose welcome email was accepted by the provider.
	DispatchStatusSent DispatchStatus = "sent"
	// DispatchStatusFailed marks an account whose resolution or delivery failed.
	DispatchStatusFailed DispatchStatus = "failed"
)

// Valid reports whether s is a known status.
func (s DispatchStatus) Valid() bool {
	switch s {
	case DispatchStatusSent, DispatchStatusFailed:
		return true
	default:
		return false
	}
}

// ParseDispatchStatus converts a stored string into a DispatchStatus.
func ParseDispatchStatus(s string) (DispatchStatus, error) {
	status := DispatchStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown dispatch status %q", s)
	}
	return status, nil
}

// DispatchRecord is the durable idempotency marker kept per account DID.
type DispatchRecord struct {
	Status DispatchStatus `json:"status"`
	At     time.Time      `json:"at"`
	Reason string         `json:"reason,omitempty"`
}

// DispatchRecordEntry pairs a record with the DID it belongs to (admin listings).
type DispatchRecordEntry struct {
	DID    string         `json:"did"`
	Record DispatchRecord `json:"record"`
}

// DispatchRecordListOptions bounds admin record listings.
type DispatchRecordListOptions struct {
	Status DispatchStatus
	Limit  int
}
