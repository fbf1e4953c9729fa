package sqlstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/tactics-srs/internal/domain"
	"github.com/stretchr/testify/require"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func mustAttempt(t *testing.T, puzzleID, at string, result domain.Result) *domain.Attempt {
	t.Helper()
	a, err := domain.NewAttempt(puzzleID, ts(at), result, domain.SourceLichess)
	require.NoError(t, err)
	return a
}

func entry(puzzleID string, reviewed domain.Date, interval, streak int, result domain.Result) *domain.ScheduleEntry {
	return &domain.ScheduleEntry{
		UserID:        domain.LocalUserID,
		PuzzleID:      puzzleID,
		SuccessStreak: streak,
		IntervalDays:  interval,
		LastResult:    result,
		LastReviewed:  reviewed,
		DueDate:       reviewed.AddDays(interval),
	}
}

func intPtr(v int) *int { return &v }

var ctx = context.Background()
