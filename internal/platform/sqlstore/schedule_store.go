package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tactics-srs/internal/domain"
	"github.com/phrazzld/tactics-srs/internal/platform/logger"
	"github.com/phrazzld/tactics-srs/internal/store"
)

// ScheduleStore implements the store.ScheduleStore interface on the srs table.
type ScheduleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewScheduleStore creates a new ScheduleStore.
// If logger is nil, a default logger will be used.
func NewScheduleStore(db store.DBTX, logger *slog.Logger) *ScheduleStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleStore{
		db:     db,
		logger: logger.With(slog.String("component", "schedule_store")),
	}
}

// Ensure ScheduleStore implements store.ScheduleStore interface
var _ store.ScheduleStore = (*ScheduleStore)(nil)

type scheduleRow struct {
	UserID          int64  `db:"user_id"`
	PuzzleID        string `db:"puzzle_id"`
	LastResult      string `db:"last_result"`
	SuccessStreak   int    `db:"success_streak"`
	IntervalDays    int    `db:"interval_days"`
	LastReviewed    string `db:"last_reviewed"`
	DueDate         string `db:"due_date"`
	SourceAttemptAt string `db:"source_attempt_at"`
}

func (r scheduleRow) toDomain() (*domain.ScheduleEntry, error) {
	lastReviewed, err := domain.ParseDate(r.LastReviewed)
	if err != nil {
		return nil, fmt.Errorf("%w: last_reviewed: %w", store.ErrInvalidEntity, err)
	}
	due, err := domain.ParseDate(r.DueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: due_date: %w", store.ErrInvalidEntity, err)
	}

	entry := &domain.ScheduleEntry{
		UserID:        r.UserID,
		PuzzleID:      r.PuzzleID,
		SuccessStreak: r.SuccessStreak,
		IntervalDays:  r.IntervalDays,
		LastResult:    domain.ResultFromStored(r.LastResult),
		LastReviewed:  lastReviewed,
		DueDate:       due,
	}
	// Rows written before source tracking carry an empty marker; they are
	// simply never recognised as already applied.
	if r.SourceAttemptAt != "" {
		if at, err := domain.ParseInstant(r.SourceAttemptAt); err == nil {
			entry.SourceAttemptAt = at
		}
	}
	return entry, nil
}

const scheduleColumns = `user_id, puzzle_id, last_result, success_streak, interval_days, last_reviewed, due_date, source_attempt_at`

// Get implements store.ScheduleStore.Get
func (s *ScheduleStore) Get(ctx context.Context, puzzleID string) (*domain.ScheduleEntry, error) {
	return s.get(ctx, puzzleID, false)
}

// GetForUpdate implements store.ScheduleStore.GetForUpdate
// SQLite has no row locks; there the surrounding transaction already holds
// the database write lock because it was started with BEGIN IMMEDIATE.
func (s *ScheduleStore) GetForUpdate(ctx context.Context, puzzleID string) (*domain.ScheduleEntry, error) {
	return s.get(ctx, puzzleID, IsPostgres(s.db.DriverName()))
}

func (s *ScheduleStore) get(ctx context.Context, puzzleID string, lock bool) (*domain.ScheduleEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + scheduleColumns + ` FROM srs WHERE user_id = ? AND puzzle_id = ?`
	if lock {
		query += ` FOR UPDATE`
	}

	var row scheduleRow
	if err := s.db.GetContext(ctx, &row, s.db.Rebind(query), domain.LocalUserID, puzzleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrScheduleNotFound
		}
		log.Error("failed to read schedule entry",
			slog.String("error", err.Error()),
			slog.String("puzzle_id", puzzleID))
		return nil, MapError(err)
	}
	return row.toDomain()
}

// Upsert implements store.ScheduleStore.Upsert
func (s *ScheduleStore) Upsert(ctx context.Context, e *domain.ScheduleEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := e.Validate(); err != nil {
		log.Warn("schedule entry validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("puzzle_id", e.PuzzleID))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	userID := e.UserID
	if userID == 0 {
		userID = domain.LocalUserID
	}
	// The marker keeps full precision so it always equals the instant
	// parsed from the attempt row, however finely that row was written.
	sourceAt := ""
	if !e.SourceAttemptAt.IsZero() {
		sourceAt = e.SourceAttemptAt.UTC().Format(time.RFC3339Nano)
	}

	query := s.db.Rebind(`
		INSERT INTO srs (` + scheduleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, puzzle_id) DO UPDATE SET
			last_result = excluded.last_result,
			success_streak = excluded.success_streak,
			interval_days = excluded.interval_days,
			last_reviewed = excluded.last_reviewed,
			due_date = excluded.due_date,
			source_attempt_at = excluded.source_attempt_at
	`)
	_, err := s.db.ExecContext(
		ctx,
		query,
		userID,
		e.PuzzleID,
		string(e.LastResult),
		e.SuccessStreak,
		e.IntervalDays,
		e.LastReviewed.String(),
		e.DueDate.String(),
		sourceAt,
	)
	if err != nil {
		log.Error("failed to upsert schedule entry",
			slog.String("error", err.Error()),
			slog.String("puzzle_id", e.PuzzleID))
		return MapError(err)
	}

	log.Debug("schedule entry saved",
		slog.String("puzzle_id", e.PuzzleID),
		slog.Int("interval_days", e.IntervalDays),
		slog.String("due_date", e.DueDate.String()))
	return nil
}

// Delete implements store.ScheduleStore.Delete
func (s *ScheduleStore) Delete(ctx context.Context, puzzleID string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`DELETE FROM srs WHERE user_id = ? AND puzzle_id = ?`)
	if _, err := s.db.ExecContext(ctx, query, domain.LocalUserID, puzzleID); err != nil {
		log.Error("failed to delete schedule entry",
			slog.String("error", err.Error()),
			slog.String("puzzle_id", puzzleID))
		return MapError(err)
	}
	return nil
}

type dueRow struct {
	PuzzleID      string         `db:"puzzle_id"`
	Themes        string         `db:"themes"`
	Rating        *int           `db:"rating"`
	DueDate       string         `db:"due_date"`
	IntervalDays  int            `db:"interval_days"`
	SuccessStreak int            `db:"success_streak"`
	LastResult    string         `db:"last_result"`
	AttemptCount  int            `db:"attempt_count"`
	LastAttemptAt sql.NullString `db:"last_attempt_at"`
}

// Due implements store.ScheduleStore.Due
func (s *ScheduleStore) Due(ctx context.Context, f store.DueFilter) ([]store.DueItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		b    strings.Builder
		args = []any{domain.LocalUserID}
	)
	b.WriteString(`
		SELECT s.puzzle_id,
		       COALESCE(p.themes, '') AS themes,
		       p.rating,
		       s.due_date,
		       s.interval_days,
		       s.success_streak,
		       s.last_result,
		       (SELECT COUNT(*) FROM attempts a
		         WHERE a.user_id = s.user_id AND a.puzzle_id = s.puzzle_id) AS attempt_count,
		       (SELECT MAX(a.attempted_at) FROM attempts a
		         WHERE a.user_id = s.user_id AND a.puzzle_id = s.puzzle_id) AS last_attempt_at
		FROM srs s
		LEFT JOIN puzzles p ON p.puzzle_id = s.puzzle_id
		WHERE s.user_id = ?`)
	if f.From != nil {
		b.WriteString(` AND s.due_date >= ?`)
		args = append(args, f.From.String())
	}
	if f.To != nil {
		b.WriteString(` AND s.due_date <= ?`)
		args = append(args, f.To.String())
	}
	if !f.AttemptedSince.IsZero() {
		b.WriteString(`
		  AND NOT EXISTS (SELECT 1 FROM attempts a
		                   WHERE a.user_id = s.user_id AND a.puzzle_id = s.puzzle_id
		                     AND a.attempted_at >= ?)`)
		args = append(args, domain.FormatInstant(f.AttemptedSince))
	}
	b.WriteString(`
		ORDER BY s.due_date, s.puzzle_id`)
	if f.Limit > 0 {
		b.WriteString(` LIMIT ?`)
		args = append(args, f.Limit)
	}

	var rows []dueRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(b.String()), args...); err != nil {
		log.Error("failed to list due entries", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	items := make([]store.DueItem, 0, len(rows))
	for _, r := range rows {
		due, err := domain.ParseDate(r.DueDate)
		if err != nil {
			log.Warn("skipping schedule entry with malformed due date",
				slog.String("puzzle_id", r.PuzzleID),
				slog.String("due_date", r.DueDate))
			continue
		}
		item := store.DueItem{
			PuzzleID:      r.PuzzleID,
			Themes:        domain.SplitThemes(r.Themes),
			Rating:        r.Rating,
			DueDate:       due,
			IntervalDays:  r.IntervalDays,
			SuccessStreak: r.SuccessStreak,
			LastResult:    domain.ResultFromStored(r.LastResult),
			Attempts:      r.AttemptCount,
		}
		if r.LastAttemptAt.Valid {
			if at, err := domain.ParseInstant(r.LastAttemptAt.String); err == nil {
				item.LastAttemptAt = at
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// Count implements store.ScheduleStore.Count
func (s *ScheduleStore) Count(ctx context.Context) (int, error) {
	var n int
	query := s.db.Rebind(`SELECT COUNT(*) FROM srs WHERE user_id = ?`)
	if err := s.db.GetContext(ctx, &n, query, domain.LocalUserID); err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

// WithTx implements store.ScheduleStore.WithTx
func (s *ScheduleStore) WithTx(tx *sqlx.Tx) store.ScheduleStore {
	return &ScheduleStore{db: tx, logger: s.logger}
}
