package sqlstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // registers the "postgres" driver
	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver
	"github.com/phrazzld/tactics-srs/internal/config"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPGX      = "pgx"
	DriverPostgres = "postgres"
)

// sqlitePragmas makes every transaction take the write lock up front
// (BEGIN IMMEDIATE), so a per-puzzle read-modify-write cannot interleave
// with another writer.
const sqlitePragmas = "_txlock=immediate&_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on&_synchronous=NORMAL"

// IsPostgres reports whether driver talks to PostgreSQL.
func IsPostgres(driver string) bool {
	return driver == DriverPGX || driver == DriverPostgres
}

// SQLiteDSN returns the connection string used for the SQLite file at path.
func SQLiteDSN(path string) string {
	return "file:" + path + "?" + sqlitePragmas
}

// Open connects to the configured database and verifies the connection.
// SQLite databases are limited to a single connection and their parent
// directory is created when missing.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch cfg.Driver {
	case DriverSQLite:
		if dir := filepath.Dir(cfg.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		db, err = sqlx.Open(DriverSQLite, SQLiteDSN(cfg.Path))
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		db.SetMaxOpenConns(1)
	case DriverPGX, DriverPostgres:
		db, err = sqlx.Open(cfg.Driver, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres database: %w", err)
		}
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
