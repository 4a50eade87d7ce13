package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tophhie/pds-welcomer/internal/errors"
	"github.com/tophhie/pds-welcomer/internal/domain/model"
	"github.com/tophhie/pds-welcomer/internal/testutil"
)

func TestPostgresDispatchRecordRepo(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewPostgresDispatchRecordRepo(db)
		ctx := context.Background()
		at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

		rec, err := repo.Get(ctx, "did:plc:missing")
		require.NoError(t, err)
		assert.Nil(t, rec)

		require.NoError(t, repo.Put(ctx, "did:plc:abc", model.DispatchRecord{Status: model.DispatchStatusSent, At: at}))

		rec, err = repo.Get(ctx, "did:plc:abc")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, model.DispatchStatusSent, rec.Status)
		assert.Empty(t, rec.Reason)
		assert.True(t, rec.At.Equal(at))

		require.NoError(t, repo.Put(ctx, "did:plc:abc", model.DispatchRecord{
			Status: model.DispatchStatusFailed,
			At:     at.Add(time.Hour),
			Reason: "resolve did:plc:abc: unexpected status 404",
		}))
		rec, err = repo.Get(ctx, "did:plc:abc")
		require.NoError(t, err)
		assert.Equal(t, model.DispatchStatusFailed, rec.Status)
		assert.Equal(t, "resolve did:plc:abc: unexpected status 404", rec.Reason)

		require.NoError(t, repo.Put(ctx, "did:plc:def", model.DispatchRecord{Status: model.DispatchStatusSent, At: at}))

		entries, err := repo.List(ctx, model.DispatchRecordListOptions{})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "did:plc:abc", entries[0].DID)

		entries, err = repo.List(ctx, model.DispatchRecordListOptions{Status: model.DispatchStatusSent, Limit: 10})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "did:plc:def", entries[0].DID)

		err = repo.Put(ctx, "did:plc:def", model.DispatchRecord{Status: "pending", At: at})
		assert.True(t, apperrors.IsValidation(err))

		deleted, err := repo.Delete(ctx, "did:plc:def")
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(ctx, "did:plc:def")
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}
