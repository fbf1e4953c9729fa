// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the scheduling and sync logic, so that the same code runs against
// SQLite and PostgreSQL.
package store
