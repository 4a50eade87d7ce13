//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDispatchStatus(t *testing.T) {
	status, err := ParseDispatchStatus("sent")
	require.NoError(t, err)
	assert.Equal(t, DispatchStatusSent, status)

	status, err = ParseDispatchStatus("failed")
	require.NoError(t, err)
	assert.Equal(t, DispatchStatusFailed, status)

	_, err = ParseDispatchStatus("pending")
	require.Error(t, err)
}

func TestDispatchRecord_JSONShape(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	raw, err := json.Marshal(DispatchRecord{Status: DispatchStatusSent, At: at})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"sent","at":"2025-03-01T12:00:00Z"}`, string(raw))

	raw, err = json.Marshal(DispatchRecord{Status: DispatchStatusFailed, At: at, Reason: "boom"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"failed","at":"2025-03-01T12:00:00Z","reason":"boom"}`, string(raw))
}

func TestContactIdentity_DecodeAdminResponse(t *testing.T) {
	body := `{
		"did": "did:plc:abc",
		"handle": "alice.test",
		"email": "alice@example.com",
		"indexedAt": "2025-01-02T03:04:05.000Z"
	}`

	var identity ContactIdentity
	require.NoError(t, json.Unmarshal([]byte(body), &identity))

	assert.Equal(t, "did:plc:abc", identity.DID)
	assert.Equal(t, "alice.test", identity.Handle)
	assert.Equal(t, "alice@example.com", identity.Email)
	indexed, ok := identity.IndexedTime()
	require.True(t, ok)
	assert.Equal(t, 2025, indexed.Year())
	assert.False(t, identity.EmailConfirmed())
}

func TestContactIdentity_LenientTimestamps(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		wantConfirmed bool
		wantIndexed   bool
	}{
		{
			name: "empty confirmation",
			body: `{"did":"did:plc:a","handle":"a.test","email":"a@example.com","emailConfirmedAt":""}`,
		},
		{
			name:          "numeric offset",
			body:          `{"did":"did:plc:a","indexedAt":"2025-01-02T03:04:05.000+0000","emailConfirmedAt":"2025-01-02T04:00:00+0000"}`,
			wantConfirmed: true,
			wantIndexed:   true,
		},
		{
			name:          "garbage values",
			body:          `{"did":"did:plc:a","indexedAt":"yesterday","emailConfirmedAt":"soon"}`,
			wantConfirmed: true,
		},
		{
			name: "null values",
			body: `{"did":"did:plc:a","indexedAt":null,"emailConfirmedAt":null}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var identity ContactIdentity
			require.NoError(t, json.Unmarshal([]byte(tt.body), &identity))
			assert.Equal(t, "did:plc:a", identity.DID)
			assert.Equal(t, tt.wantConfirmed, identity.EmailConfirmed())

			indexed, ok := identity.IndexedTime()
			assert.Equal(t, tt.wantIndexed, ok)
			if tt.wantIndexed {
				assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), indexed)
			}
		})
	}
}

func TestRunSummary_Record(t *testing.T) {
	var summary RunSummary
	summary.Record(AccountOutcomeSent)
	summary.Record(AccountOutcomeSent)
	summary.Record(AccountOutcomeSkippedInactive)

	assert.Equal(t, 2, summary.Count(AccountOutcomeSent))
	assert.Equal(t, 1, summary.Count(AccountOutcomeSkippedInactive))
	assert.Zero(t, summary.Count(AccountOutcomeDeliveryFailed))

	var nilSummary *RunSummary
	assert.Zero(t, nilSummary.Count(AccountOutcomeSent))
}
