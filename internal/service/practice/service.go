package practice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/tactics-srs/internal/domain"
	"github.com/phrazzld/tactics-srs/internal/platform/logger"
	"github.com/phrazzld/tactics-srs/internal/service/recompute"
	"github.com/phrazzld/tactics-srs/internal/store"
)

// Common errors
var (
	// ErrInvalidInput indicates a missing puzzle id or a result other than win/loss.
	ErrInvalidInput = errors.New("need puzzle_id and result=win|loss")
)

// Recomputer reschedules a set of puzzles from their attempt history.
type Recomputer interface {
	Puzzles(ctx context.Context, ids []string) (recompute.Result, error)
}

// Options configures queue selection and attempt logging.
type Options struct {
	IncludeOverdue bool
	HideTodayDone  bool
	// QueueLimit caps the queue; it is expected to be clamped already.
	QueueLimit int
	// DedupWindow ignores a repeat of the same puzzle and result logged
	// within this window. Zero disables deduplication.
	DedupWindow time.Duration
}

// TodayStats counts attempts made on the current local day.
type TodayStats struct {
	Date     domain.Date `json:"date"`
	Attempts int         `json:"attempts"`
	Wins     int         `json:"wins"`
	Losses   int         `json:"losses"`
}

// Queue is the list of puzzles to review now.
type Queue struct {
	Today          domain.Date     `json:"today"`
	IncludeOverdue bool            `json:"include_overdue"`
	Items          []store.DueItem `json:"items"`
	Stats          TodayStats      `json:"stats"`
}

// LogResult describes what LogAttempt did.
type LogResult struct {
	PuzzleID string        `json:"puzzle_id"`
	Result   domain.Result `json:"result"`
	// Deduplicated is set when the attempt repeated a recent one and was
	// not stored.
	Deduplicated bool `json:"deduplicated,omitempty"`
}

// Service implements the review loop on top of the stores.
type Service struct {
	attempts   store.AttemptStore
	schedule   store.ScheduleStore
	stats      store.StatsStore
	recomputer Recomputer
	opts       Options
	loc        *time.Location
	now        func() time.Time
	logger     *slog.Logger
}

// NewService creates a practice Service. A nil loc means time.Local and a
// nil now means time.Now. If logger is nil, a default logger will be used.
func NewService(
	attempts store.AttemptStore,
	schedule store.ScheduleStore,
	stats store.StatsStore,
	recomputer Recomputer,
	opts Options,
	loc *time.Location,
	now func() time.Time,
	logger *slog.Logger,
) *Service {
	if attempts == nil {
		panic("attempts cannot be nil")
	}
	if schedule == nil {
		panic("schedule cannot be nil")
	}
	if stats == nil {
		panic("stats cannot be nil")
	}
	if recomputer == nil {
		panic("recomputer cannot be nil")
	}
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		attempts:   attempts,
		schedule:   schedule,
		stats:      stats,
		recomputer: recomputer,
		opts:       opts,
		loc:        loc,
		now:        now,
		logger:     logger.With(slog.String("component", "practice_service")),
	}
}

// Today returns the current local date.
func (s *Service) Today() domain.Date {
	return domain.LocalDateOf(s.now(), s.loc)
}

// LogAttempt records a local attempt at the current second and reschedules
// the puzzle. resultRaw must be "win" or "loss" in any case.
func (s *Service) LogAttempt(ctx context.Context, puzzleID, resultRaw string) (*LogResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	puzzleID = strings.TrimSpace(puzzleID)
	result, err := domain.ParseResult(resultRaw)
	if puzzleID == "" || err != nil {
		return nil, ErrInvalidInput
	}

	now := s.now().UTC().Truncate(time.Second)
	out := &LogResult{PuzzleID: puzzleID, Result: result}

	if s.opts.DedupWindow > 0 {
		last, err := s.attempts.LatestSame(ctx, puzzleID, result)
		if err != nil {
			return nil, fmt.Errorf("failed to check recent attempts: %w", err)
		}
		if !last.IsZero() && now.Sub(last) < s.opts.DedupWindow {
			log.Info("ignoring repeated attempt",
				slog.String("puzzle_id", puzzleID),
				slog.String("result", string(result)),
				slog.Time("previous", last))
			out.Deduplicated = true
			return out, nil
		}
	}

	attempt, err := domain.NewAttempt(puzzleID, now, result, domain.SourceLocal)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	inserted, err := s.attempts.Create(ctx, attempt)
	if err != nil {
		return nil, fmt.Errorf("failed to record attempt: %w", err)
	}
	if !inserted {
		out.Deduplicated = true
		return out, nil
	}

	res, err := s.recomputer.Puzzles(ctx, []string{puzzleID})
	if err != nil {
		return nil, fmt.Errorf("failed to reschedule puzzle: %w", err)
	}

	log.Info("attempt logged",
		slog.String("puzzle_id", puzzleID),
		slog.String("result", string(result)),
		slog.Any("recompute", res))
	return out, nil
}

// DueQueue returns the puzzles to review today.
func (s *Service) DueQueue(ctx context.Context) (*Queue, error) {
	today := s.Today()

	filter := store.DueFilter{To: &today, Limit: s.opts.QueueLimit}
	if !s.opts.IncludeOverdue {
		filter.From = &today
	}
	if s.opts.HideTodayDone {
		filter.AttemptedSince = today.StartIn(s.loc)
	}

	items, err := s.schedule.Due(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load due queue: %w", err)
	}

	stats, err := s.TodayStats(ctx)
	if err != nil {
		return nil, err
	}

	return &Queue{
		Today:          today,
		IncludeOverdue: s.opts.IncludeOverdue,
		Items:          items,
		Stats:          stats,
	}, nil
}

// TodayStats counts attempts from the start of the current local day.
func (s *Service) TodayStats(ctx context.Context) (TodayStats, error) {
	today := s.Today()

	sum, err := s.stats.Summary(ctx, today.StartIn(s.loc))
	if err != nil {
		return TodayStats{}, fmt.Errorf("failed to load today's stats: %w", err)
	}
	return TodayStats{
		Date:     today,
		Attempts: sum.Attempts,
		Wins:     sum.Wins,
		Losses:   sum.Losses(),
	}, nil
}
