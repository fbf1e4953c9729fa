package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// legacyEnv lists the environment names used by earlier releases, bound in
// addition to the derived SECTION_KEY names. Earlier names win.
var legacyEnv = map[string][]string{
	"database.path":           {"DB_PATH"},
	"lichess.username":        {"LICHESS_USERNAME"},
	"lichess.token":           {"LICHESS_TOKEN"},
	"lichess.puzzle_csv_url":  {"PUZZLE_CSV_URL"},
	"lichess.max_attempts":    {"ATTEMPTS_MAX"},
	"server.port":             {"LOCAL_LOG_PORT"},
	"queue.include_overdue":   {"INCLUDE_OVERDUE"},
	"queue.cap":               {"QUEUE_CAP"},
	"queue.hide_today_done":   {"HIDE_TODAY_DONE"},
	"queue.log_dedup_seconds": {"LOCAL_LOG_DEDUP_SECONDS"},
	"report.html":             {"REPORT_HTML"},
}

// Switches and counts that earlier releases read leniently. Unusable values
// fall back to the listed default with a warning instead of failing Load.
var (
	lenientBools = []struct {
		key string
		def bool
	}{
		{"queue.include_overdue", true},
		{"queue.hide_today_done", true},
		{"report.html", true},
		{"report.xlsx", false},
		{"update.backup", true},
	}
	lenientInts = []struct {
		key string
		def int
	}{
		{"queue.cap", 60},
		{"queue.log_dedup_seconds", 2},
		{"lichess.max_attempts", 1_000_000},
	}
)

// setDefaults registers every key so that AutomaticEnv can see it during
// Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8765)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.path", "./db/lichess_puzzles.sqlite3")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 0)

	v.SetDefault("lichess.username", "me")
	v.SetDefault("lichess.token", "")
	v.SetDefault("lichess.base_url", "https://lichess.org")
	v.SetDefault("lichess.puzzle_csv_url", "")
	v.SetDefault("lichess.batch_size", 5000)
	v.SetDefault("lichess.timeout", "60s")

	for _, b := range lenientBools {
		v.SetDefault(b.key, b.def)
	}
	for _, n := range lenientInts {
		v.SetDefault(n.key, n.def)
	}

	v.SetDefault("report.output_dir", "reports")
	v.SetDefault("report.recent_limit", 100)

	v.SetDefault("update.interval", "0s")
	v.SetDefault("update.backup_dir", "backups")

	v.SetDefault("timezone", "")

	v.SetDefault("srs.track_wins", "false")
	v.SetDefault("srs.reset_on_fail", "true")
	v.SetDefault("srs.loss_cadence", "")
	v.SetDefault("srs.win_cadence", "")
	v.SetDefault("srs.seed_mode", "tomorrow")
	v.SetDefault("srs.stagger_buckets", "7")
}

// Load reads configuration from defaults, the optional configFile and the
// environment, in increasing order of precedence. Structured sections are
// validated; the srs section never fails and reports replaced values in
// Config.Warnings instead.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		derived := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		args := append([]string{key, derived}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	warnings := normalizeLenient(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var srsWarnings []string
	cfg.SRS, srsWarnings = parseSRS(v)
	cfg.Warnings = append(warnings, srsWarnings...)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// normalizeLenient rewrites the lenient keys to typed values so Unmarshal
// never sees "yes" or "abc" where it expects a bool or an int.
func normalizeLenient(v *viper.Viper) []string {
	var warnings []string
	for _, b := range lenientBools {
		raw := v.Get(b.key)
		val, ok := lenientBool(raw, b.def)
		if !ok {
			warnings = append(warnings,
				fmt.Sprintf("%s: %v is not a boolean, using %t", b.key, raw, val))
		}
		v.Set(b.key, val)
	}
	for _, n := range lenientInts {
		raw := v.Get(n.key)
		val, ok := lenientInt(raw)
		if !ok {
			if raw != nil && strings.TrimSpace(fmt.Sprint(raw)) != "" {
				warnings = append(warnings,
					fmt.Sprintf("%s: %v is not an integer, using %d", n.key, raw, n.def))
			}
			val = n.def
		}
		v.Set(n.key, val)
	}
	return warnings
}
