package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tophhie/pds-welcomer/internal/core"
	"github.com/tophhie/pds-welcomer/internal/domain/model"
)

// RetryPolicy controls which existing records stop another welcome email.
type RetryPolicy string

const (
	// RetryNever treats any record, sent or failed, as already notified.
	RetryNever RetryPolicy = "never"
	// RetryFailed lets an account with a failed record be attempted again on a later run.
	RetryFailed RetryPolicy = "failed"
)

// DispatchGateOptions groups dependencies for DispatchGate.
type DispatchGateOptions struct {
	Repo   core.DispatchRecordRepository // Required: durable record store
	Clock  core.Clock                    // Required: stamps recorded outcomes
	Policy RetryPolicy                   // Optional: defaults to RetryNever
}

// DispatchGate is the idempotency check in front of every send.
//
// HasBeenNotified and RecordOutcome are separate store round trips. Two processes
// running against the same store can both see "no record" for a new account and
// both send before either writes; that window is accepted. Within one process runs
// never overlap, so a single instance sends at most once per account.
type DispatchGate struct {
	repo   core.DispatchRecordRepository
	clock  core.Clock
	policy RetryPolicy
}

// NewDispatchGate constructs a DispatchGate.
func NewDispatchGate(opts DispatchGateOptions) (*DispatchGate, error) {
	if opts.Repo == nil {
		return nil, errors.New("DispatchRecordRepository is required")
	}
	if opts.Clock == nil {
		return nil, errors.New("Clock is required")
	}
	policy := opts.Policy
	switch policy {
	case "":
		policy = RetryNever
	case RetryNever, RetryFailed:
	default:
		return nil, fmt.Errorf("unknown retry policy %q", policy)
	}
	return &DispatchGate{repo: opts.Repo, clock: opts.Clock, policy: policy}, nil
}

// HasBeenNotified reports whether did must be skipped. It always consults the store.
func (g *DispatchGate) HasBeenNotified(ctx context.Context, did string) (bool, error) {
	record, err := g.repo.Get(ctx, did)
	if err != nil {
		return false, fmt.Errorf("read dispatch record %s: %w", did, err)
	}
	if record == nil {
		return false, nil
	}
	if g.policy == RetryFailed && record.Status == model.DispatchStatusFailed {
		return false, nil
	}
	return true, nil
}

// RecordOutcome overwrites the record for did, stamped with the current time.
func (g *DispatchGate) RecordOutcome(ctx context.Context, did string, status model.DispatchStatus, reason string) error {
	record := model.DispatchRecord{
		Status: status,
		At:     g.clock.Now().UTC(),
		Reason: reason,
	}
	if err := g.repo.Put(ctx, did, record); err != nil {
		return fmt.Errorf("write dispatch record %s: %w", did, err)
	}
	return nil
}

// Policy returns the effective retry policy.
func (g *DispatchGate) Policy() RetryPolicy {
	return g.policy
}
