package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tactics-srs/internal/domain"
)

// LatestAttempt is the newest stored attempt of a puzzle as it sits in the
// database. AttemptedAt is left as raw text so that callers decide how to
// treat a value that does not parse.
type LatestAttempt struct {
	PuzzleID    string `db:"puzzle_id"`
	Result      string `db:"result"`
	AttemptedAt string `db:"attempted_at"`
}

// AttemptStore defines the interface for attempt history persistence.
// Attempts are append-only.
type AttemptStore interface {
	// Create inserts the attempt unless an attempt with the same user,
	// puzzle and instant already exists. It reports whether a row was added.
	Create(ctx context.Context, attempt *domain.Attempt) (bool, error)

	// Latest returns the newest attempt of puzzleID for the local user.
	// Ties on the instant are broken by insertion order.
	// Returns ErrAttemptNotFound if the puzzle was never attempted.
	Latest(ctx context.Context, puzzleID string) (*LatestAttempt, error)

	// PuzzleIDs lists every puzzle with at least one attempt, sorted by id.
	PuzzleIDs(ctx context.Context) ([]string, error)

	// LatestInstant returns the newest attempt instant across all puzzles
	// for the given source, or the zero time when there is none.
	LatestInstant(ctx context.Context, source string) (time.Time, error)

	// LatestSame returns the instant of the newest attempt of puzzleID with
	// the given result, or the zero time when there is none.
	LatestSame(ctx context.Context, puzzleID string, result domain.Result) (time.Time, error)

	// WithTx returns a new AttemptStore instance that uses the provided transaction.
	WithTx(tx *sqlx.Tx) AttemptStore
}
