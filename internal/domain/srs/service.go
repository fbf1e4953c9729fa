package srs

import (
	"errors"
	"fmt"

	"github.com/phrazzld/tactics-srs/internal/domain"
)

// Common errors
var (
	ErrNilParams        = errors.New("srs params cannot be nil")
	ErrEmptyPuzzleID    = errors.New("latest attempt has no puzzle ID")
	ErrInvalidResult    = errors.New("latest attempt has an invalid result")
	ErrMissingLocalDate = errors.New("latest attempt has no local date")
	ErrPuzzleMismatch   = errors.New("existing entry belongs to another puzzle")
)

// Service defines the interface for schedule decisions
type Service interface {
	// Decide computes the schedule action for a puzzle given its latest
	// attempt and its current schedule entry (nil when there is none).
	// It has no side effects.
	Decide(latest domain.LatestAttempt, existing *domain.ScheduleEntry) (Decision, error)

	// Params returns a copy of the parameters the service was built with.
	Params() Params
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() (Service, error) {
	return NewServiceWithParams(NewDefaultParams())
}

// NewServiceWithParams creates a new SRS service with custom parameters.
// The parameters are copied, so later changes by the caller have no effect.
func NewServiceWithParams(params *Params) (Service, error) {
	if params == nil {
		return nil, ErrNilParams
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &defaultService{params: cloneParams(params)}, nil
}

// Decide implements the Service interface.
func (s *defaultService) Decide(
	latest domain.LatestAttempt,
	existing *domain.ScheduleEntry,
) (Decision, error) {
	if latest.PuzzleID == "" {
		return Decision{}, ErrEmptyPuzzleID
	}
	if !latest.Result.IsValid() {
		return Decision{}, fmt.Errorf("%w: %q", ErrInvalidResult, latest.Result)
	}
	if latest.LocalDate.IsZero() {
		return Decision{}, ErrMissingLocalDate
	}
	if existing != nil && existing.PuzzleID != latest.PuzzleID {
		return Decision{}, fmt.Errorf("%w: %s != %s", ErrPuzzleMismatch, existing.PuzzleID, latest.PuzzleID)
	}

	return decide(latest, existing, s.params), nil
}

// Params implements the Service interface.
func (s *defaultService) Params() Params {
	return *cloneParams(s.params)
}

func cloneParams(p *Params) *Params {
	c := *p
	c.LossCadence = append([]int(nil), p.LossCadence...)
	c.WinCadence = append([]int(nil), p.WinCadence...)
	return &c
}
