package domain

import (
	"errors"
	"fmt"
	"time"
)

// Validation errors for ScheduleEntry.
var (
	ErrInvalidInterval  = errors.New("interval must be at least 1 day")
	ErrNegativeStreak   = errors.New("success streak cannot be negative")
	ErrDueDateMismatch  = errors.New("due date must equal last reviewed plus interval")
	ErrMissingReviewDay = errors.New("last reviewed date cannot be empty")
)

// ScheduleEntry is the review state of one puzzle for one user.
//
// DueDate is always LastReviewed advanced by IntervalDays calendar days.
// SourceAttemptAt records the attempt the entry was derived from, so that
// reapplying the same attempt can be recognised and skipped.
type ScheduleEntry struct {
	UserID          int64     `json:"-"`
	PuzzleID        string    `json:"puzzle_id"`
	SuccessStreak   int       `json:"success_streak"`
	IntervalDays    int       `json:"interval_days"`
	LastResult      Result    `json:"last_result"`
	LastReviewed    Date      `json:"last_reviewed"`
	DueDate         Date      `json:"due_date"`
	SourceAttemptAt time.Time `json:"source_attempt_at"`
}

// Validate checks the entry invariants.
func (e *ScheduleEntry) Validate() error {
	if e.PuzzleID == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyPuzzleID)
	}
	if e.IntervalDays < 1 {
		return fmt.Errorf("%w: %w", ErrValidation, ErrInvalidInterval)
	}
	if e.SuccessStreak < 0 {
		return fmt.Errorf("%w: %w", ErrValidation, ErrNegativeStreak)
	}
	if e.LastReviewed.IsZero() {
		return fmt.Errorf("%w: %w", ErrValidation, ErrMissingReviewDay)
	}
	if e.DueDate != e.LastReviewed.AddDays(e.IntervalDays) {
		return fmt.Errorf("%w: %w", ErrValidation, ErrDueDateMismatch)
	}
	if !e.LastResult.IsValid() {
		return fmt.Errorf("%w: %w", ErrValidation, ErrInvalidResult)
	}
	return nil
}

// IsDue reports whether the entry should be reviewed on day today.
// Overdue entries count only when includeOverdue is set.
func (e *ScheduleEntry) IsDue(today Date, includeOverdue bool) bool {
	if e.DueDate == today {
		return true
	}
	return includeOverdue && e.DueDate.Before(today)
}
