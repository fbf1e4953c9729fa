// Package testdb provides utilities specifically for database testing.
// Every helper opens a fresh, fully migrated SQLite database inside the
// test's temporary directory, so tests never share state.
package testdb
