package store

import (
	"context"
	"time"

	"github.com/phrazzld/tactics-srs/internal/domain"
)

// Summary counts attempts and wins over a window.
type Summary struct {
	Attempts int `db:"attempts"`
	Wins     int `db:"wins"`
}

// Losses returns the number of attempts that were not wins.
func (s Summary) Losses() int {
	return s.Attempts - s.Wins
}

// Accuracy returns the win share in [0,1], or 0 for an empty window.
func (s Summary) Accuracy() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Attempts)
}

// AttemptView is an attempt joined with puzzle metadata for display.
type AttemptView struct {
	PuzzleID      string
	Themes        []string
	Rating        *int
	AttemptedAt   time.Time
	Result        domain.Result
	Source        string
	TotalAttempts int
}

// URL returns the Lichess training page of the puzzle.
func (a AttemptView) URL() string {
	return domain.PuzzleURL(a.PuzzleID)
}

// ThemeAttempt is one attempt reduced to what theme statistics need.
type ThemeAttempt struct {
	Themes []string
	Result domain.Result
}

// StatsStore defines read-only aggregate queries over the attempt history.
// A zero since means the whole history.
type StatsStore interface {
	// Summary counts attempts and wins at or after since.
	Summary(ctx context.Context, since time.Time) (Summary, error)

	// Recent returns the newest attempts, newest first.
	Recent(ctx context.Context, limit int) ([]AttemptView, error)

	// Misses returns losses at or after since, newest first.
	Misses(ctx context.Context, since time.Time, limit int) ([]AttemptView, error)

	// ThemeAttempts returns every attempt at or after since with its puzzle themes.
	ThemeAttempts(ctx context.Context, since time.Time) ([]ThemeAttempt, error)
}
