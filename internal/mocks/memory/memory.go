// Package memory contains simple hand-written test doubles for the dispatch ports.
// These are lightweight and suitable for unit tests without codegen.
package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/tophhie/pds-welcomer/internal/core"
	"github.com/tophhie/pds-welcomer/internal/domain/model"
)

// Ensure compile-time conformance to core ports.
var (
	_ core.DispatchRecordAdmin = (*DispatchRecordStore)(nil)
	_ core.SecretProvider      = StaticSecrets(nil)
)

// ErrNotFound is returned by StaticSecrets for unknown names.
var ErrNotFound = errors.New("not found")

// DispatchRecordStore is an in-memory dispatch record store for unit tests.
// GetErr and PutErr, when set, are returned for the matching DID.
type DispatchRecordStore struct {
	mu      sync.Mutex
	records map[string]model.DispatchRecord
	puts    []string

	GetErr map[string]error
	PutErr map[string]error
}

// NewDispatchRecordStore creates an empty store.
func NewDispatchRecordStore() *DispatchRecordStore {
	return &DispatchRecordStore{
		records: make(map[string]model.DispatchRecord),
		GetErr:  make(map[string]error),
		PutErr:  make(map[string]error),
	}
}

func (m *DispatchRecordStore) Get(_ context.Context, did string) (*model.DispatchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.GetErr[did]; err != nil {
		return nil, err
	}
	rec, ok := m.records[did]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *DispatchRecordStore) Put(_ context.Context, did string, record model.DispatchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.PutErr[did]; err != nil {
		return err
	}
	if !record.Status.Valid() {
		return fmt.Errorf("invalid dispatch status %q", record.Status)
	}
	m.records[did] = record
	m.puts = append(m.puts, did)
	return nil
}

func (m *DispatchRecordStore) Delete(_ context.Context, did string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[did]
	delete(m.records, did)
	return ok, nil
}

// List returns records newest first, filtered and limited like the real stores.
func (m *DispatchRecordStore) List(
	_ context.Context,
	opts model.DispatchRecordListOptions,
) ([]model.DispatchRecordEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.DispatchRecordEntry, 0, len(m.records))
	for did, rec := range m.records {
		if opts.Status != "" && rec.Status != opts.Status {
			continue
		}
		out = append(out, model.DispatchRecordEntry{DID: did, Record: rec})
	}
	slices.SortFunc(out, func(a, b model.DispatchRecordEntry) int {
		if c := b.Record.At.Compare(a.Record.At); c != 0 {
			return c
		}
		if a.DID < b.DID {
			return -1
		}
		if a.DID > b.DID {
			return 1
		}
		return 0
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// Seed stores a record without counting it as a write.
func (m *DispatchRecordStore) Seed(did string, record model.DispatchRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[did] = record
}

// Record returns the stored record for did, if any.
func (m *DispatchRecordStore) Record(did string) (model.DispatchRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[did]
	return rec, ok
}

// Puts returns the DIDs written through Put, in order.
func (m *DispatchRecordStore) Puts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.puts)
}

// StaticSecrets serves secrets from a fixed map.
type StaticSecrets map[string]string

func (s StaticSecrets) GetSecret(_ context.Context, name string) (string, error) {
	v, ok := s[name]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return v, nil
}
