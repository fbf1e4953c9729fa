package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidResult is returned when an attempt result is neither win nor loss.
	ErrInvalidResult = errors.New("invalid attempt result")

	// ErrInvalidTimestamp is returned when an attempt timestamp cannot be parsed.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrInvalidDate is returned when a calendar date cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")

	// ErrEmptyPuzzleID is returned when an entity has no puzzle identifier.
	ErrEmptyPuzzleID = errors.New("puzzle ID cannot be empty")
)
