package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestMigrations verifies that migrations run successfully
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", "reports").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count, "table reports not found")

	// Migrations can run again on an existing database.
	require.NoError(t, db.RunMigrations())
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.db")

	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	require.FileExists(t, path)
}

func TestFilePath(t *testing.T) {
	require.Equal(t, "", filePath(":memory:"))
	require.Equal(t, "", filePath("file::memory:?cache=shared"))
	require.Equal(t, "data/cache.db", filePath("file:data/cache.db?_pragma=busy_timeout(5000)"))
	require.Equal(t, "/tmp/x.db", filePath("/tmp/x.db"))
}
