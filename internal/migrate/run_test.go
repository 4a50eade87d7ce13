package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersions(t *testing.T) {
	versions, err := Versions()
	require.NoError(t, err)
	require.NotEmpty(t, versions)
	assert.Equal(t, "0001_welcome_dispatches", versions[0])
	assert.IsNonDecreasing(t, versions)
}

func TestMigrationCreatesDispatchTable(t *testing.T) {
	raw, err := migrationsFS.ReadFile("migrations/0001_welcome_dispatches.sql")
	require.NoError(t, err)

	sql := string(raw)
	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS welcome_dispatches")
	assert.Contains(t, sql, "did           TEXT PRIMARY KEY")
	assert.Contains(t, sql, "CHECK (status IN ('sent', 'failed'))")
}
