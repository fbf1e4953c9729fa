package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEntry() ScheduleEntry {
	reviewed := NewDate(2024, 1, 1)
	return ScheduleEntry{
		UserID:          LocalUserID,
		PuzzleID:        "abc12",
		SuccessStreak:   0,
		IntervalDays:    1,
		LastResult:      ResultLoss,
		LastReviewed:    reviewed,
		DueDate:         reviewed.AddDays(1),
		SourceAttemptAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestScheduleEntryValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(e *ScheduleEntry)
		wantErr error
	}{
		{name: "valid", mutate: func(e *ScheduleEntry) {}},
		{name: "empty puzzle", mutate: func(e *ScheduleEntry) { e.PuzzleID = "" }, wantErr: ErrEmptyPuzzleID},
		{name: "zero interval", mutate: func(e *ScheduleEntry) { e.IntervalDays = 0 }, wantErr: ErrInvalidInterval},
		{name: "negative streak", mutate: func(e *ScheduleEntry) { e.SuccessStreak = -1 }, wantErr: ErrNegativeStreak},
		{name: "missing review day", mutate: func(e *ScheduleEntry) { e.LastReviewed = Date{} }, wantErr: ErrMissingReviewDay},
		{name: "due mismatch", mutate: func(e *ScheduleEntry) { e.DueDate = e.DueDate.AddDays(1) }, wantErr: ErrDueDateMismatch},
		{name: "bad result", mutate: func(e *ScheduleEntry) { e.LastResult = "draw" }, wantErr: ErrInvalidResult},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			e := validEntry()
			tc.mutate(&e)
			err := e.Validate()
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrValidation)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestScheduleEntryIsDue(t *testing.T) {
	t.Parallel()

	e := validEntry()
	due := e.DueDate

	assert.True(t, e.IsDue(due, false))
	assert.False(t, e.IsDue(due.AddDays(-1), true))
	assert.False(t, e.IsDue(due.AddDays(1), false))
	assert.True(t, e.IsDue(due.AddDays(1), true))
}

func TestNewAttempt(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	a, err := NewAttempt("abc12", at, ResultWin, SourceLocal)
	require.NoError(t, err)
	assert.Equal(t, LocalUserID, a.UserID)
	assert.Equal(t, time.UTC, a.AttemptedAt.Location())

	_, err = NewAttempt("", at, ResultWin, SourceLocal)
	assert.ErrorIs(t, err, ErrEmptyPuzzleID)

	_, err = NewAttempt("abc12", time.Time{}, ResultWin, SourceLocal)
	assert.ErrorIs(t, err, ErrZeroAttemptTime)

	_, err = NewAttempt("abc12", at, Result("draw"), SourceLocal)
	assert.ErrorIs(t, err, ErrInvalidResult)
}

func TestNewLatestAttemptUsesLocation(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)
	east := time.FixedZone("east", 2*3600)

	latest := NewLatestAttempt("abc12", ResultLoss, at, east)
	assert.Equal(t, NewDate(2024, 1, 2), latest.LocalDate)
	assert.True(t, at.Equal(latest.AttemptedAt))
}
