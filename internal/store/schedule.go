package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tactics-srs/internal/domain"
)

// DueFilter selects schedule entries by due date.
type DueFilter struct {
	// From and To bound the due date, both inclusive. Nil means unbounded.
	From *domain.Date
	To   *domain.Date

	// AttemptedSince hides puzzles with an attempt at or after this instant.
	// The zero value hides nothing.
	AttemptedSince time.Time

	// Limit caps the number of rows. Zero or less means no cap.
	Limit int
}

// DueItem is a schedule entry joined with its puzzle metadata and attempt
// history, as shown in queues and reports.
type DueItem struct {
	PuzzleID      string
	Themes        []string
	Rating        *int
	DueDate       domain.Date
	IntervalDays  int
	SuccessStreak int
	LastResult    domain.Result
	Attempts      int
	LastAttemptAt time.Time
}

// URL returns the Lichess training page of the puzzle.
func (d DueItem) URL() string {
	return domain.PuzzleURL(d.PuzzleID)
}

// ScheduleStore defines the interface for schedule entry persistence.
type ScheduleStore interface {
	// Get retrieves the entry of puzzleID for the local user.
	// Returns ErrScheduleNotFound if the puzzle is not scheduled.
	// NOTE: This method does NOT provide any row locking.
	Get(ctx context.Context, puzzleID string) (*domain.ScheduleEntry, error)

	// GetForUpdate retrieves the entry with a row-level lock where the
	// backend supports one. Must be called within a transaction.
	// Returns ErrScheduleNotFound if the puzzle is not scheduled.
	GetForUpdate(ctx context.Context, puzzleID string) (*domain.ScheduleEntry, error)

	// Upsert inserts or replaces the entry keyed by user and puzzle.
	// Returns ErrInvalidEntity if the entry fails validation.
	Upsert(ctx context.Context, entry *domain.ScheduleEntry) error

	// Delete removes the entry of puzzleID. Deleting a missing entry is not an error.
	Delete(ctx context.Context, puzzleID string) error

	// Due lists entries matching the filter, ordered by due date then puzzle id.
	Due(ctx context.Context, filter DueFilter) ([]DueItem, error)

	// Count returns the number of scheduled puzzles.
	Count(ctx context.Context) (int, error)

	// WithTx returns a new ScheduleStore instance that uses the provided transaction.
	WithTx(tx *sqlx.Tx) ScheduleStore
}
