package domain

import (
	"errors"
	"fmt"
	"time"
)

// Attempt sources.
const (
	SourceLichess = "lichess"
	SourceLocal   = "local"
)

// LocalUserID is the single user the trainer keeps history for.
const LocalUserID int64 = 1

// ErrZeroAttemptTime is returned when an attempt has no timestamp.
var ErrZeroAttemptTime = errors.New("attempt time cannot be zero")

// Attempt is one immutable try at a puzzle.
type Attempt struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"user_id"`
	PuzzleID          string    `json:"puzzle_id"`
	AttemptedAt       time.Time `json:"attempted_at"`
	Result            Result    `json:"result"`
	TimeMS            *int64    `json:"time_ms,omitempty"`
	PuzzleRatingAfter *int      `json:"puzzle_rating_after,omitempty"`
	Source            string    `json:"source"`
}

// NewAttempt builds a validated attempt for the local user.
func NewAttempt(puzzleID string, at time.Time, result Result, source string) (*Attempt, error) {
	a := &Attempt{
		UserID:      LocalUserID,
		PuzzleID:    puzzleID,
		AttemptedAt: at.UTC(),
		Result:      result,
		Source:      source,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks the attempt's required fields.
func (a *Attempt) Validate() error {
	if a.PuzzleID == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyPuzzleID)
	}
	if a.AttemptedAt.IsZero() {
		return fmt.Errorf("%w: %w", ErrValidation, ErrZeroAttemptTime)
	}
	if !a.Result.IsValid() {
		return fmt.Errorf("%w: %w", ErrValidation, ErrInvalidResult)
	}
	return nil
}

// LatestAttempt is the most recent attempt of a puzzle, already converted to
// the user's local calendar. It is the only attempt the scheduler looks at.
type LatestAttempt struct {
	PuzzleID    string
	Result      Result
	AttemptedAt time.Time
	LocalDate   Date
}

// NewLatestAttempt converts the attempt instant into a local date using loc.
func NewLatestAttempt(puzzleID string, result Result, at time.Time, loc *time.Location) LatestAttempt {
	return LatestAttempt{
		PuzzleID:    puzzleID,
		Result:      result,
		AttemptedAt: at.UTC(),
		LocalDate:   LocalDateOf(at, loc),
	}
}
