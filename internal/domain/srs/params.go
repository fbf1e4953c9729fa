package srs

import (
	"errors"
	"fmt"
)

// Default engine settings.
const (
	DefaultStaggerBuckets = 7
	DefaultSeedMode       = SeedTomorrow
)

var (
	defaultLossCadence = []int{1, 2, 4, 7, 14, 30, 60, 90}
	defaultWinCadence  = []int{2, 4, 7, 14, 30, 60, 90}
)

// Parameter errors.
var (
	ErrEmptyCadence      = errors.New("cadence must contain at least one interval")
	ErrNonPositiveStep   = errors.New("cadence intervals must be positive")
	ErrInvalidBuckets    = errors.New("stagger buckets must be at least 1")
	ErrUnknownSeedMode   = errors.New("unknown seed mode")
	ErrInvalidParameters = errors.New("invalid srs parameters")
)

// DefaultLossCadence returns a copy of the built-in loss cadence.
func DefaultLossCadence() []int { return append([]int(nil), defaultLossCadence...) }

// DefaultWinCadence returns a copy of the built-in win cadence.
func DefaultWinCadence() []int { return append([]int(nil), defaultWinCadence...) }

// Params is the complete, immutable configuration of the scheduling engine.
// It is built once at startup and handed to the service; the engine never
// reads configuration from anywhere else.
type Params struct {
	// TrackWins keeps won puzzles on the schedule using WinCadence.
	// When false a win removes the puzzle from the schedule.
	TrackWins bool

	// LossCadence holds intervals after losses, indexed by max(streak,1).
	LossCadence []int

	// WinCadence holds intervals after tracked wins, indexed by streak.
	WinCadence []int

	// ResetOnFail drops the streak to zero on a loss; otherwise a loss
	// decrements it, floored at zero.
	ResetOnFail bool

	// SeedMode picks the first interval of a puzzle failed for the first time.
	SeedMode SeedMode

	// StaggerBuckets is the bucket count used by SeedStagger.
	StaggerBuckets int
}

// ParamsConfig carries raw overrides. Empty cadences and non-positive bucket
// counts mean "use the default"; non-positive cadence steps are dropped.
// Booleans are taken as given.
type ParamsConfig struct {
	TrackWins      bool
	LossCadence    []int
	WinCadence     []int
	ResetOnFail    bool
	SeedMode       SeedMode
	StaggerBuckets int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		TrackWins:      false,
		LossCadence:    DefaultLossCadence(),
		WinCadence:     DefaultWinCadence(),
		ResetOnFail:    true,
		SeedMode:       DefaultSeedMode,
		StaggerBuckets: DefaultStaggerBuckets,
	}
}

// NewParams creates a Params instance from config, falling back to the
// defaults for every value that is missing or unusable. The result always
// passes Validate.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()
	params.TrackWins = config.TrackWins
	params.ResetOnFail = config.ResetOnFail

	if steps := positiveSteps(config.LossCadence); len(steps) > 0 {
		params.LossCadence = steps
	}
	if steps := positiveSteps(config.WinCadence); len(steps) > 0 {
		params.WinCadence = steps
	}
	if config.SeedMode.IsValid() {
		params.SeedMode = config.SeedMode
	}
	if config.StaggerBuckets > 0 {
		params.StaggerBuckets = config.StaggerBuckets
	}

	return params
}

// Validate reports every problem with p. Params built by NewParams are
// always valid; hand-built values may not be.
func (p *Params) Validate() error {
	var errs []error
	if err := validateCadence("loss", p.LossCadence); err != nil {
		errs = append(errs, err)
	}
	if err := validateCadence("win", p.WinCadence); err != nil {
		errs = append(errs, err)
	}
	if p.StaggerBuckets < 1 {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrInvalidBuckets, p.StaggerBuckets))
	}
	if !p.SeedMode.IsValid() {
		errs = append(errs, fmt.Errorf("%w: %d", ErrUnknownSeedMode, int(p.SeedMode)))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidParameters, errors.Join(errs...))
}

func validateCadence(name string, cadence []int) error {
	if len(cadence) == 0 {
		return fmt.Errorf("%s %w", name, ErrEmptyCadence)
	}
	for i, step := range cadence {
		if step < 1 {
			return fmt.Errorf("%s cadence[%d]=%d: %w", name, i, step, ErrNonPositiveStep)
		}
	}
	return nil
}

func positiveSteps(in []int) []int {
	var out []int
	for _, step := range in {
		if step > 0 {
			out = append(out, step)
		}
	}
	return out
}
