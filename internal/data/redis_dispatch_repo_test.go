package data

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tophhie/pds-welcomer/internal/domain/model"
	"github.com/tophhie/pds-welcomer/internal/testutil"
)

// setupTestRedis creates a Redis client for testing.
// Tests will be skipped if Redis is not available.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	return testutil.SetupTestRedis(t)
}

func TestRedisDispatchRecordRepo_GetPutDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := setupTestRedis(t)
	defer client.Close()

	repo := NewRedisDispatchRecordRepo(client, "welcome:")
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("missing record is nil", func(t *testing.T) {
		rec, err := repo.Get(ctx, "did:plc:missing")
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("put then get", func(t *testing.T) {
		err := repo.Put(ctx, "did:plc:abc", model.DispatchRecord{Status: model.DispatchStatusSent, At: at})
		require.NoError(t, err)

		rec, err := repo.Get(ctx, "did:plc:abc")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, model.DispatchStatusSent, rec.Status)
		assert.True(t, rec.At.Equal(at))

		raw, err := client.Get(ctx, "welcome:did:plc:abc").Result()
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"sent","at":"2025-03-01T12:00:00Z"}`, raw)

		ttl := client.TTL(ctx, "welcome:did:plc:abc").Val()
		assert.Equal(t, time.Duration(-1), ttl)
	})

	t.Run("put overwrites", func(t *testing.T) {
		err := repo.Put(ctx, "did:plc:abc", model.DispatchRecord{
			Status: model.DispatchStatusFailed,
			At:     at.Add(time.Hour),
			Reason: "send email: unexpected status 500",
		})
		require.NoError(t, err)

		rec, err := repo.Get(ctx, "did:plc:abc")
		require.NoError(t, err)
		assert.Equal(t, model.DispatchStatusFailed, rec.Status)
		assert.Equal(t, "send email: unexpected status 500", rec.Reason)
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		err := repo.Put(ctx, "did:plc:abc", model.DispatchRecord{Status: "pending", At: at})
		require.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("delete", func(t *testing.T) {
		deleted, err := repo.Delete(ctx, "did:plc:abc")
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(ctx, "did:plc:abc")
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("empty did", func(t *testing.T) {
		_, err := repo.Get(ctx, "")
		require.ErrorIs(t, err, ErrDIDRequired)
	})
}

func TestRedisDispatchRecordRepo_List(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := setupTestRedis(t)
	defer client.Close()

	repo := NewRedisDispatchRecordRepo(client, "welcome:")
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Put(ctx, "did:plc:one", model.DispatchRecord{Status: model.DispatchStatusSent, At: base}))
	require.NoError(t, repo.Put(ctx, "did:plc:two", model.DispatchRecord{
		Status: model.DispatchStatusFailed,
		At:     base.Add(time.Minute),
		Reason: "boom",
	}))
	require.NoError(t, repo.Put(ctx, "did:plc:three", model.DispatchRecord{
		Status: model.DispatchStatusSent,
		At:     base.Add(2 * time.Minute),
	}))
	require.NoError(t, client.Set(ctx, "unrelated:key", "x", 0).Err())
	require.NoError(t, client.Set(ctx, "welcome:did:plc:garbage", "not json", 0).Err())

	all, err := repo.List(ctx, model.DispatchRecordListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "did:plc:three", all[0].DID)
	assert.Equal(t, "did:plc:one", all[2].DID)

	failed, err := repo.List(ctx, model.DispatchRecordListOptions{Status: model.DispatchStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "did:plc:two", failed[0].DID)

	limited, err := repo.List(ctx, model.DispatchRecordListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
