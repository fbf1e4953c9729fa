package store

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tactics-srs/internal/domain"
)

// PuzzleStore defines the interface for the local puzzle catalogue.
type PuzzleStore interface {
	// UpsertBatch inserts or replaces every puzzle in the batch.
	// IMPORTANT: This method should be run within a transaction so that a
	// batch is applied as a whole.
	UpsertBatch(ctx context.Context, puzzles []domain.Puzzle) error

	// Get retrieves a puzzle by id.
	// Returns ErrPuzzleNotFound if the puzzle is not in the catalogue.
	Get(ctx context.Context, id string) (*domain.Puzzle, error)

	// Count returns the number of catalogued puzzles.
	Count(ctx context.Context) (int, error)

	// WithTx returns a new PuzzleStore instance that uses the provided transaction.
	WithTx(tx *sqlx.Tx) PuzzleStore
}
