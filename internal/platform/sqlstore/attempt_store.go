package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tactics-srs/internal/domain"
	"github.com/phrazzld/tactics-srs/internal/platform/logger"
	"github.com/phrazzld/tactics-srs/internal/store"
)

// AttemptStore implements the store.AttemptStore interface.
type AttemptStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewAttemptStore creates a new AttemptStore.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewAttemptStore(db store.DBTX, logger *slog.Logger) *AttemptStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AttemptStore{
		db:     db,
		logger: logger.With(slog.String("component", "attempt_store")),
	}
}

// Ensure AttemptStore implements store.AttemptStore interface
var _ store.AttemptStore = (*AttemptStore)(nil)

// Create implements store.AttemptStore.Create
func (s *AttemptStore) Create(ctx context.Context, a *domain.Attempt) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := a.Validate(); err != nil {
		log.Warn("attempt validation failed during create",
			slog.String("error", err.Error()),
			slog.String("puzzle_id", a.PuzzleID))
		return false, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	userID := a.UserID
	if userID == 0 {
		userID = domain.LocalUserID
	}

	query := s.db.Rebind(`
		INSERT INTO attempts (user_id, puzzle_id, attempted_at, result, time_ms, puzzle_rating_after, source)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, puzzle_id, attempted_at) DO NOTHING
	`)
	res, err := s.db.ExecContext(
		ctx,
		query,
		userID,
		a.PuzzleID,
		domain.FormatInstant(a.AttemptedAt),
		string(a.Result),
		a.TimeMS,
		a.PuzzleRatingAfter,
		a.Source,
	)
	if err != nil {
		log.Error("failed to create attempt",
			slog.String("error", err.Error()),
			slog.String("puzzle_id", a.PuzzleID))
		return false, MapError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		log.Debug("attempt already recorded",
			slog.String("puzzle_id", a.PuzzleID),
			slog.Time("attempted_at", a.AttemptedAt))
	}
	return n > 0, nil
}

// Latest implements store.AttemptStore.Latest
func (s *AttemptStore) Latest(ctx context.Context, puzzleID string) (*store.LatestAttempt, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`
		SELECT puzzle_id, result, attempted_at
		FROM attempts
		WHERE user_id = ? AND puzzle_id = ?
		ORDER BY attempted_at DESC, id DESC
		LIMIT 1
	`)

	var latest store.LatestAttempt
	if err := s.db.GetContext(ctx, &latest, query, domain.LocalUserID, puzzleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAttemptNotFound
		}
		log.Error("failed to read latest attempt",
			slog.String("error", err.Error()),
			slog.String("puzzle_id", puzzleID))
		return nil, MapError(err)
	}
	return &latest, nil
}

// PuzzleIDs implements store.AttemptStore.PuzzleIDs
func (s *AttemptStore) PuzzleIDs(ctx context.Context) ([]string, error) {
	query := s.db.Rebind(`
		SELECT DISTINCT puzzle_id
		FROM attempts
		WHERE user_id = ?
		ORDER BY puzzle_id
	`)

	var ids []string
	if err := s.db.SelectContext(ctx, &ids, query, domain.LocalUserID); err != nil {
		return nil, MapError(err)
	}
	return ids, nil
}

// LatestInstant implements store.AttemptStore.LatestInstant
func (s *AttemptStore) LatestInstant(ctx context.Context, source string) (time.Time, error) {
	query := s.db.Rebind(`
		SELECT attempted_at
		FROM attempts
		WHERE user_id = ? AND source = ?
		ORDER BY attempted_at DESC
		LIMIT 1
	`)
	return s.instant(ctx, query, domain.LocalUserID, source)
}

// LatestSame implements store.AttemptStore.LatestSame
func (s *AttemptStore) LatestSame(ctx context.Context, puzzleID string, result domain.Result) (time.Time, error) {
	query := s.db.Rebind(`
		SELECT attempted_at
		FROM attempts
		WHERE user_id = ? AND puzzle_id = ? AND result = ?
		ORDER BY attempted_at DESC
		LIMIT 1
	`)
	return s.instant(ctx, query, domain.LocalUserID, puzzleID, string(result))
}

func (s *AttemptStore) instant(ctx context.Context, query string, args ...any) (time.Time, error) {
	var raw string
	if err := s.db.GetContext(ctx, &raw, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, MapError(err)
	}
	t, err := domain.ParseInstant(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: stored attempt time: %w", store.ErrInvalidEntity, err)
	}
	return t, nil
}

// WithTx implements store.AttemptStore.WithTx
func (s *AttemptStore) WithTx(tx *sqlx.Tx) store.AttemptStore {
	return &AttemptStore{db: tx, logger: s.logger}
}
