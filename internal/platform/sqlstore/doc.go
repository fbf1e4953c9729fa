// Package sqlstore implements the store interfaces on top of database/sql
// through sqlx. The same queries serve SQLite (mattn/go-sqlite3) and
// PostgreSQL (pgx or lib/pq): they are written with ? placeholders, rebound
// per driver, and keep timestamps and dates as fixed-width text so that
// ordering and range filters behave identically on both.
package sqlstore
