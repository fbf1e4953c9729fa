package sqlstore

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/tactics-srs/internal/domain"
	"github.com/phrazzld/tactics-srs/internal/platform/logger"
	"github.com/phrazzld/tactics-srs/internal/store"
)

// StatsStore implements the store.StatsStore interface.
type StatsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewStatsStore creates a new StatsStore.
// If logger is nil, a default logger will be used.
func NewStatsStore(db store.DBTX, logger *slog.Logger) *StatsStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsStore{
		db:     db,
		logger: logger.With(slog.String("component", "stats_store")),
	}
}

// Ensure StatsStore implements store.StatsStore interface
var _ store.StatsStore = (*StatsStore)(nil)

// sinceArg returns the lower bound for attempted_at; the empty string sorts
// before every stored instant.
func sinceArg(since time.Time) string {
	if since.IsZero() {
		return ""
	}
	return domain.FormatInstant(since)
}

// Summary implements store.StatsStore.Summary
func (s *StatsStore) Summary(ctx context.Context, since time.Time) (store.Summary, error) {
	query := s.db.Rebind(`
		SELECT COUNT(*) AS attempts,
		       COALESCE(SUM(CASE WHEN result = 'win' THEN 1 ELSE 0 END), 0) AS wins
		FROM attempts
		WHERE user_id = ? AND attempted_at >= ?
	`)

	var sum store.Summary
	if err := s.db.GetContext(ctx, &sum, query, domain.LocalUserID, sinceArg(since)); err != nil {
		return store.Summary{}, MapError(err)
	}
	return sum, nil
}

type attemptViewRow struct {
	PuzzleID      string `db:"puzzle_id"`
	Themes        string `db:"themes"`
	Rating        *int   `db:"rating"`
	AttemptedAt   string `db:"attempted_at"`
	Result        string `db:"result"`
	Source        string `db:"source"`
	TotalAttempts int    `db:"total_attempts"`
}

const attemptViewSelect = `
	SELECT a.puzzle_id,
	       COALESCE(p.themes, '') AS themes,
	       p.rating,
	       a.attempted_at,
	       a.result,
	       a.source,
	       (SELECT COUNT(*) FROM attempts t
	         WHERE t.user_id = a.user_id AND t.puzzle_id = a.puzzle_id) AS total_attempts
	FROM attempts a
	LEFT JOIN puzzles p ON p.puzzle_id = a.puzzle_id
`

// Recent implements store.StatsStore.Recent
func (s *StatsStore) Recent(ctx context.Context, limit int) ([]store.AttemptView, error) {
	query := s.db.Rebind(attemptViewSelect + `
		WHERE a.user_id = ?
		ORDER BY a.attempted_at DESC, a.id DESC
		LIMIT ?
	`)
	return s.views(ctx, query, domain.LocalUserID, limit)
}

// Misses implements store.StatsStore.Misses
func (s *StatsStore) Misses(ctx context.Context, since time.Time, limit int) ([]store.AttemptView, error) {
	query := s.db.Rebind(attemptViewSelect + `
		WHERE a.user_id = ? AND a.result <> 'win' AND a.attempted_at >= ?
		ORDER BY a.attempted_at DESC, a.id DESC
		LIMIT ?
	`)
	return s.views(ctx, query, domain.LocalUserID, sinceArg(since), limit)
}

func (s *StatsStore) views(ctx context.Context, query string, args ...any) ([]store.AttemptView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var rows []attemptViewRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		log.Error("failed to list attempts", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	views := make([]store.AttemptView, 0, len(rows))
	for _, r := range rows {
		at, err := domain.ParseInstant(r.AttemptedAt)
		if err != nil {
			log.Warn("skipping attempt with malformed timestamp",
				slog.String("puzzle_id", r.PuzzleID),
				slog.String("attempted_at", r.AttemptedAt))
			continue
		}
		views = append(views, store.AttemptView{
			PuzzleID:      r.PuzzleID,
			Themes:        domain.SplitThemes(r.Themes),
			Rating:        r.Rating,
			AttemptedAt:   at,
			Result:        domain.ResultFromStored(r.Result),
			Source:        r.Source,
			TotalAttempts: r.TotalAttempts,
		})
	}
	return views, nil
}

// ThemeAttempts implements store.StatsStore.ThemeAttempts
func (s *StatsStore) ThemeAttempts(ctx context.Context, since time.Time) ([]store.ThemeAttempt, error) {
	query := s.db.Rebind(`
		SELECT COALESCE(p.themes, '') AS themes, a.result
		FROM attempts a
		LEFT JOIN puzzles p ON p.puzzle_id = a.puzzle_id
		WHERE a.user_id = ? AND a.attempted_at >= ?
	`)

	var rows []struct {
		Themes string `db:"themes"`
		Result string `db:"result"`
	}
	if err := s.db.SelectContext(ctx, &rows, query, domain.LocalUserID, sinceArg(since)); err != nil {
		return nil, MapError(err)
	}

	out := make([]store.ThemeAttempt, 0, len(rows))
	for _, r := range rows {
		out = append(out, store.ThemeAttempt{
			Themes: domain.SplitThemes(r.Themes),
			Result: domain.ResultFromStored(r.Result),
		})
	}
	return out, nil
}
