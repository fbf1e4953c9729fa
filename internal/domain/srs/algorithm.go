package srs

import (
	"github.com/phrazzld/tactics-srs/internal/domain"
)

// cadenceInterval looks up the interval for a streak in a cadence table.
//
// Streaks are 1-based: streak s uses cadence[s-1]. Streaks below 1 use the
// first entry and streaks beyond the table use the last one, so a long run
// of successes settles on the longest interval instead of failing.
//
// Parameters:
//   - cadence: a non-empty table of positive day counts
//   - streak: the streak after applying the current attempt
//
// Returns:
//   - The interval in days, always at least 1 for a valid table
func cadenceInterval(cadence []int, streak int) int {
	idx := max(streak, 1) - 1
	if idx > len(cadence)-1 {
		idx = len(cadence) - 1
	}
	return cadence[idx]
}

// streakAfterLoss applies a loss to the current streak.
func streakAfterLoss(streak int, resetOnFail bool) int {
	if resetOnFail {
		return 0
	}
	return max(streak-1, 0)
}

// decide computes the schedule action for a puzzle from its latest attempt
// and the row currently stored for it, if any.
//
// The rules are applied in order:
//  1. A win while wins are not tracked removes the row, or does nothing when
//     there is none. No other field is consulted.
//  2. A row produced by this same attempt is left alone, so applying an
//     attempt twice never drifts the streak.
//  3. Without a row, a tracked win starts a streak of 1 on the win cadence
//     and a loss starts a streak of 0 on the seed interval.
//  4. With a row, a tracked win increments the streak and uses the win
//     cadence; a loss resets or decrements the streak and uses the loss
//     cadence at max(streak,1).
//
// LastReviewed is the attempt's local date and DueDate is LastReviewed plus
// the interval in calendar days.
func decide(latest domain.LatestAttempt, existing *domain.ScheduleEntry, params *Params) Decision {
	isWin := latest.Result.IsWin()

	if isWin && !params.TrackWins {
		if existing != nil {
			return Delete(latest.PuzzleID)
		}
		return NoOp(latest.PuzzleID)
	}

	if existing != nil && !existing.SourceAttemptAt.IsZero() &&
		existing.SourceAttemptAt.Equal(latest.AttemptedAt) {
		return NoOp(latest.PuzzleID)
	}

	var streak, interval int
	switch {
	case existing == nil && isWin:
		streak = 1
		interval = cadenceInterval(params.WinCadence, streak)
	case existing == nil:
		streak = 0
		interval = params.seedInterval(latest.PuzzleID)
	case isWin:
		streak = max(existing.SuccessStreak, 0) + 1
		interval = cadenceInterval(params.WinCadence, streak)
	default:
		streak = streakAfterLoss(max(existing.SuccessStreak, 0), params.ResetOnFail)
		interval = cadenceInterval(params.LossCadence, streak)
	}

	userID := domain.LocalUserID
	if existing != nil && existing.UserID != 0 {
		userID = existing.UserID
	}

	return Upsert(&domain.ScheduleEntry{
		UserID:          userID,
		PuzzleID:        latest.PuzzleID,
		SuccessStreak:   streak,
		IntervalDays:    interval,
		LastResult:      latest.Result,
		LastReviewed:    latest.LocalDate,
		DueDate:         latest.LocalDate.AddDays(interval),
		SourceAttemptAt: latest.AttemptedAt,
	})
}
