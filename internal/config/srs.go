package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phrazzld/tactics-srs/internal/domain/srs"
	"github.com/spf13/viper"
)

// parseSRS builds the engine parameters from the srs.* keys. Values that
// cannot be used fall back to their defaults and produce a warning.
func parseSRS(v *viper.Viper) (srs.Params, []string) {
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}
	defaults := srs.NewDefaultParams()

	trackWins, ok := lenientBool(v.Get("srs.track_wins"), defaults.TrackWins)
	if !ok {
		warn("srs.track_wins: %v is not a boolean, using %t", v.Get("srs.track_wins"), trackWins)
	}
	resetOnFail, ok := lenientBool(v.Get("srs.reset_on_fail"), defaults.ResetOnFail)
	if !ok {
		warn("srs.reset_on_fail: %v is not a boolean, using %t", v.Get("srs.reset_on_fail"), resetOnFail)
	}

	lossCadence, dropped := cadence(v.Get("srs.loss_cadence"))
	if len(dropped) > 0 {
		warn("srs.loss_cadence: ignored entries %v", dropped)
	}
	winCadence, dropped := cadence(v.Get("srs.win_cadence"))
	if len(dropped) > 0 {
		warn("srs.win_cadence: ignored entries %v", dropped)
	}

	seedMode, err := srs.ParseSeedMode(fmt.Sprint(v.Get("srs.seed_mode")))
	if err != nil {
		warn("srs.seed_mode: %v, using %s", err, seedMode)
	}

	buckets, ok := lenientInt(v.Get("srs.stagger_buckets"))
	switch {
	case !ok:
		warn("srs.stagger_buckets: %v is not an integer, using %d",
			v.Get("srs.stagger_buckets"), defaults.StaggerBuckets)
		buckets = 0
	case buckets < 1:
		warn("srs.stagger_buckets: %d is below 1, using 1", buckets)
		buckets = 1
	}

	params := srs.NewParams(srs.ParamsConfig{
		TrackWins:      trackWins,
		LossCadence:    lossCadence,
		WinCadence:     winCadence,
		ResetOnFail:    resetOnFail,
		SeedMode:       seedMode,
		StaggerBuckets: buckets,
	})
	return *params, warnings
}

// lenientBool accepts 1/true/yes/on and 0/false/no/off in any case. Empty
// values yield def; anything else yields def and false.
func lenientBool(raw any, def bool) (bool, bool) {
	switch val := raw.(type) {
	case nil:
		return def, true
	case bool:
		return val, true
	case int:
		return val != 0, true
	}
	switch strings.ToLower(strings.TrimSpace(fmt.Sprint(raw))) {
	case "":
		return def, true
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return def, false
	}
}

// lenientInt parses an integer, ignoring an inline "#" comment.
func lenientInt(raw any) (int, bool) {
	switch val := raw.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		return int(val), val == float64(int(val))
	}
	s, _, _ := strings.Cut(fmt.Sprint(raw), "#")
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

// cadence reads a comma separated string or a list. Entries that are not
// positive integers are returned in dropped. An empty result makes the
// engine use its default table.
func cadence(raw any) (steps []int, dropped []string) {
	var parts []string
	switch val := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		for _, item := range val {
			parts = append(parts, fmt.Sprint(item))
		}
	case []int:
		for _, item := range val {
			parts = append(parts, strconv.Itoa(item))
		}
	case []string:
		parts = val
	default:
		parts = strings.Split(fmt.Sprint(raw), ",")
	}

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			dropped = append(dropped, part)
			continue
		}
		steps = append(steps, n)
	}
	return steps, dropped
}
