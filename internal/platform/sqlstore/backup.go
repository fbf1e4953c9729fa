package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrBackupUnsupported is returned when backing up a non-SQLite database.
var ErrBackupUnsupported = errors.New("backup is only supported for sqlite databases")

// Backup writes a consistent copy of the SQLite database behind db into dir.
// The file is named after the database file with a timestamp suffix, for
// example lichess_puzzles-20240102-150405.sqlite3. It returns the path written.
func Backup(ctx context.Context, db *sqlx.DB, dbPath, dir string, now time.Time) (string, error) {
	if IsPostgres(db.DriverName()) {
		return "", ErrBackupUnsupported
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	base := filepath.Base(dbPath)
	ext := filepath.Ext(base)
	name := fmt.Sprintf("%s-%s%s", strings.TrimSuffix(base, ext), now.Format("20060102-150405"), ext)
	target := filepath.Join(dir, name)

	if _, err := os.Stat(target); err == nil {
		return "", fmt.Errorf("backup %s already exists", target)
	}

	// VACUUM INTO reads through the connection, so pages still in the WAL
	// are included.
	if _, err := db.ExecContext(ctx, `VACUUM INTO ?`, target); err != nil {
		return "", fmt.Errorf("failed to back up database: %w", err)
	}
	return target, nil
}
