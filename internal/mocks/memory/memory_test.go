package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tophhie/pds-welcomer/internal/domain/model"
)

func TestDispatchRecordStore_GetPut(t *testing.T) {
	ctx := context.Background()
	store := NewDispatchRecordStore()

	rec, err := store.Get(ctx, "did:plc:a")
	require.NoError(t, err)
	assert.Nil(t, rec, "absent record must be nil without error")

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Put(ctx, "did:plc:a", model.DispatchRecord{Status: model.DispatchStatusSent, At: at}))

	rec, err = store.Get(ctx, "did:plc:a")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, model.DispatchStatusSent, rec.Status)
	assert.Equal(t, []string{"did:plc:a"}, store.Puts())

	assert.Error(t, store.Put(ctx, "did:plc:b", model.DispatchRecord{Status: "queued"}))
}

func TestDispatchRecordStore_InjectedErrors(t *testing.T) {
	ctx := context.Background()
	store := NewDispatchRecordStore()
	boom := errors.New("boom")
	store.GetErr["did:plc:a"] = boom
	store.PutErr["did:plc:b"] = boom

	_, err := store.Get(ctx, "did:plc:a")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, store.Put(ctx, "did:plc:b", model.DispatchRecord{Status: model.DispatchStatusSent}), boom)
	assert.Empty(t, store.Puts())
}

func TestDispatchRecordStore_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewDispatchRecordStore()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.Seed("did:plc:old", model.DispatchRecord{Status: model.DispatchStatusSent, At: base})
	store.Seed("did:plc:new", model.DispatchRecord{Status: model.DispatchStatusFailed, At: base.Add(time.Hour), Reason: "x"})

	all, err := store.List(ctx, model.DispatchRecordListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "did:plc:new", all[0].DID)

	failed, err := store.List(ctx, model.DispatchRecordListOptions{Status: model.DispatchStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)

	limited, err := store.List(ctx, model.DispatchRecordListOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	removed, err := store.Delete(ctx, "did:plc:old")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = store.Delete(ctx, "did:plc:old")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestStaticSecrets(t *testing.T) {
	secrets := StaticSecrets{"ADMIN_PWD": "hunter2"}

	v, err := secrets.GetSecret(context.Background(), "ADMIN_PWD")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", v)

	_, err = secrets.GetSecret(context.Background(), "ACS_ACCESS_KEY")
	assert.ErrorIs(t, err, ErrNotFound)
}
