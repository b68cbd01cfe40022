package database

import (
	"path/filepath"
	"testing"
)

// SetupTestSQLite opens a fresh SQLite database in a per-test directory and
// closes it when the test finishes
func SetupTestSQLite(t *testing.T) *SQLiteDB {
	t.Helper()

	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "ratings.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("warning: failed to close test database: %v", err)
		}
	})

	return db
}
