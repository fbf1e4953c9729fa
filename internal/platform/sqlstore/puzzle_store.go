package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tactics-srs/internal/domain"
	"github.com/phrazzld/tactics-srs/internal/platform/logger"
	"github.com/phrazzld/tactics-srs/internal/store"
)

// PuzzleStore implements the store.PuzzleStore interface.
type PuzzleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPuzzleStore creates a new PuzzleStore.
// If logger is nil, a default logger will be used.
func NewPuzzleStore(db store.DBTX, logger *slog.Logger) *PuzzleStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PuzzleStore{
		db:     db,
		logger: logger.With(slog.String("component", "puzzle_store")),
	}
}

// Ensure PuzzleStore implements store.PuzzleStore interface
var _ store.PuzzleStore = (*PuzzleStore)(nil)

type puzzleRow struct {
	ID              string `db:"puzzle_id"`
	Rating          *int   `db:"rating"`
	RatingDeviation *int   `db:"rating_deviation"`
	Popularity      *int   `db:"popularity"`
	NbPlays         *int   `db:"nb_plays"`
	Themes          string `db:"themes"`
	GameURL         string `db:"game_url"`
	FEN             string `db:"fen"`
	Moves           string `db:"moves"`
}

// UpsertBatch implements store.PuzzleStore.UpsertBatch
func (s *PuzzleStore) UpsertBatch(ctx context.Context, puzzles []domain.Puzzle) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`
		INSERT INTO puzzles (puzzle_id, rating, rating_deviation, popularity, nb_plays, themes, game_url, fen, moves)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (puzzle_id) DO UPDATE SET
			rating = excluded.rating,
			rating_deviation = excluded.rating_deviation,
			popularity = excluded.popularity,
			nb_plays = excluded.nb_plays,
			themes = excluded.themes,
			game_url = excluded.game_url,
			fen = excluded.fen,
			moves = excluded.moves
	`)
	for _, p := range puzzles {
		_, err := s.db.ExecContext(
			ctx,
			query,
			p.ID,
			p.Rating,
			p.RatingDeviation,
			p.Popularity,
			p.NbPlays,
			domain.JoinThemes(p.Themes),
			p.GameURL,
			p.FEN,
			p.Moves,
		)
		if err != nil {
			log.Error("failed to upsert puzzle",
				slog.String("error", err.Error()),
				slog.String("puzzle_id", p.ID))
			return MapError(err)
		}
	}

	log.Debug("puzzle batch saved", slog.Int("count", len(puzzles)))
	return nil
}

// Get implements store.PuzzleStore.Get
func (s *PuzzleStore) Get(ctx context.Context, id string) (*domain.Puzzle, error) {
	query := s.db.Rebind(`
		SELECT puzzle_id, rating, rating_deviation, popularity, nb_plays, themes, game_url, fen, moves
		FROM puzzles
		WHERE puzzle_id = ?
	`)

	var row puzzleRow
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPuzzleNotFound
		}
		return nil, MapError(err)
	}

	return &domain.Puzzle{
		ID:              row.ID,
		Rating:          row.Rating,
		RatingDeviation: row.RatingDeviation,
		Popularity:      row.Popularity,
		NbPlays:         row.NbPlays,
		Themes:          domain.SplitThemes(row.Themes),
		GameURL:         row.GameURL,
		FEN:             row.FEN,
		Moves:           row.Moves,
	}, nil
}

// Count implements store.PuzzleStore.Count
func (s *PuzzleStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM puzzles`); err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

// WithTx implements store.PuzzleStore.WithTx
func (s *PuzzleStore) WithTx(tx *sqlx.Tx) store.PuzzleStore {
	return &PuzzleStore{db: tx, logger: s.logger}
}
