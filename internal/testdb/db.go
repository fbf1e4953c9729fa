package testdb

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tactics-srs/internal/config"
	"github.com/phrazzld/tactics-srs/internal/platform/sqlstore"
	"github.com/stretchr/testify/require"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 5 * time.Second

// Open returns a migrated SQLite database that is closed when the test ends.
func Open(t *testing.T) *sqlx.DB {
	t.Helper()
	db, _ := OpenWithPath(t)
	return db
}

// OpenWithPath is Open that also returns the database file path.
func OpenWithPath(t *testing.T) (*sqlx.DB, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.sqlite3")
	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := sqlstore.Open(ctx, config.DatabaseConfig{Driver: sqlstore.DriverSQLite, Path: path})
	require.NoError(t, err, "Failed to open test database")
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
	})

	require.NoError(t, sqlstore.Migrate(ctx, db, nil), "Failed to run migrations")
	return db, path
}

// WithTx executes a test function within a transaction, automatically rolling back
// after the test completes.
func WithTx(t *testing.T, db *sqlx.DB, fn func(t *testing.T, tx *sqlx.Tx)) {
	t.Helper()

	tx, err := db.Beginx()
	require.NoError(t, err, "Failed to begin transaction")

	defer func() {
		err := tx.Rollback()
		if err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("Warning: failed to rollback transaction: %v", err)
		}
	}()

	fn(t, tx)
}

// InsertRawAttempt stores an attempt row verbatim for the local user,
// bypassing validation. It is how tests plant malformed history.
func InsertRawAttempt(t *testing.T, db *sqlx.DB, puzzleID, attemptedAt, result string) {
	t.Helper()

	_, err := db.Exec(
		db.Rebind(`INSERT INTO attempts (user_id, puzzle_id, attempted_at, result, source) VALUES (1, ?, ?, ?, 'lichess')`),
		puzzleID,
		attemptedAt,
		result,
	)
	require.NoError(t, err, "Failed to insert raw attempt")
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()

	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM "+table))
	return n
}
