package database

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// SetupTestDB opens a migrated in-memory sqlite database that is closed when
// the test ends
func SetupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := Open(&Config{Driver: DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err, "Failed to create test database")

	t.Cleanup(func() {
		require.NoError(t, db.Close(), "Failed to close test database")
	})

	return db
}
