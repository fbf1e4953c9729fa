package srs

import (
	"fmt"
	"strings"
)

// SeedMode selects how the first interval of a newly failed puzzle is chosen.
type SeedMode int

// Seed modes. The zero value is SeedTomorrow.
const (
	// SeedTomorrow schedules every newly failed puzzle for the next day.
	SeedTomorrow SeedMode = iota
	// SeedStagger spreads newly failed puzzles over StaggerBuckets days
	// using a hash of the puzzle identifier.
	SeedStagger

	seedModeCount
)

var seedModeNames = [...]string{
	SeedTomorrow: "tomorrow",
	SeedStagger:  "stagger",
}

// String returns the configuration spelling of m.
func (m SeedMode) String() string {
	if !m.IsValid() {
		return fmt.Sprintf("SeedMode(%d)", int(m))
	}
	return seedModeNames[m]
}

// IsValid reports whether m is a known mode.
func (m SeedMode) IsValid() bool {
	return m >= 0 && m < seedModeCount
}

// ParseSeedMode parses a configured seed mode, ignoring case and surrounding
// space. An empty string selects the default. Unrecognised values return
// SeedTomorrow together with ErrUnknownSeedMode, so callers can keep running
// on the fallback while reporting the typo.
func ParseSeedMode(s string) (SeedMode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return DefaultSeedMode, nil
	}
	for mode, modeName := range seedModeNames {
		if name == modeName {
			return SeedMode(mode), nil
		}
	}
	return DefaultSeedMode, fmt.Errorf("%w: %q", ErrUnknownSeedMode, s)
}

// seedInterval returns the first interval for a puzzle that has never been
// scheduled and has just been failed. The loss cadence is not consulted.
func (p *Params) seedInterval(puzzleID string) int {
	switch p.SeedMode {
	case SeedStagger:
		return staggerInterval(puzzleID, p.StaggerBuckets)
	case SeedTomorrow:
		return 1
	default:
		return 1
	}
}

// staggerInterval hashes the code points of id into [1, buckets-1], with
// bucket 0 remapped to 1 so a puzzle is never due on the day it was failed.
// With a single bucket every puzzle gets 1.
func staggerInterval(id string, buckets int) int {
	if buckets < 1 {
		buckets = 1
	}
	var h int64
	for _, r := range id {
		h = (h*131 + int64(r)) & 0x7fffffff
	}
	if bucket := int(h % int64(buckets)); bucket != 0 {
		return bucket
	}
	return 1
}
