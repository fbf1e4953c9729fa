package config

import (
	"time"

	"github.com/phrazzld/tactics-srs/internal/domain/srs"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Lichess  LichessConfig  `mapstructure:"lichess" validate:"required"`
	Queue    QueueConfig    `mapstructure:"queue" validate:"required"`
	Report   ReportConfig   `mapstructure:"report" validate:"required"`
	Update   UpdateConfig   `mapstructure:"update" validate:"required"`

	// Timezone names the IANA zone used to turn attempt instants into
	// calendar dates. Empty means the process local zone.
	Timezone string `mapstructure:"timezone" validate:"omitempty,timezone"`

	// SRS is parsed leniently from the srs.* keys and is always usable.
	SRS srs.Params `mapstructure:"-"`

	// Warnings lists configuration values that were replaced by defaults.
	// They are collected here because logging is not set up yet when
	// configuration is loaded.
	Warnings []string `mapstructure:"-"`
}

// ServerConfig contains the review server and logging settings.
type ServerConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel  string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"required,oneof=json text"`
}

// DatabaseConfig selects and locates the database.
type DatabaseConfig struct {
	// Driver is sqlite3 (default), pgx or postgres (lib/pq).
	Driver string `mapstructure:"driver" validate:"required,oneof=sqlite3 pgx postgres"`
	// Path is the SQLite database file.
	Path string `mapstructure:"path" validate:"required_if=Driver sqlite3"`
	// URL is the PostgreSQL connection string.
	URL          string `mapstructure:"url" validate:"required_unless=Driver sqlite3"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
}

// LichessConfig contains the data sync settings.
type LichessConfig struct {
	Username string `mapstructure:"username" validate:"required"`
	Token    string `mapstructure:"token"`
	// BaseURL is the API root; the activity feed lives under /api/puzzle/activity.
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	// PuzzleCSVURL is a file://, http:// or https:// location of the
	// zstd-compressed puzzle dump. Empty skips the puzzle import.
	PuzzleCSVURL string        `mapstructure:"puzzle_csv_url"`
	MaxAttempts  int           `mapstructure:"max_attempts" validate:"gt=0"`
	BatchSize    int           `mapstructure:"batch_size" validate:"gt=0"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// QueueConfig controls the review queue and attempt logging.
type QueueConfig struct {
	IncludeOverdue  bool `mapstructure:"include_overdue"`
	Cap             int  `mapstructure:"cap"`
	HideTodayDone   bool `mapstructure:"hide_today_done"`
	LogDedupSeconds int  `mapstructure:"log_dedup_seconds" validate:"gte=0"`
}

// ReportConfig controls report generation.
type ReportConfig struct {
	OutputDir   string `mapstructure:"output_dir" validate:"required"`
	HTML        bool   `mapstructure:"html"`
	XLSX        bool   `mapstructure:"xlsx"`
	RecentLimit int    `mapstructure:"recent_limit" validate:"gt=0"`
}

// UpdateConfig controls the update pipeline.
type UpdateConfig struct {
	// Interval runs the pipeline periodically while serving; zero disables it.
	Interval  time.Duration `mapstructure:"interval" validate:"gte=0"`
	Backup    bool          `mapstructure:"backup"`
	BackupDir string        `mapstructure:"backup_dir" validate:"required_if=Backup true"`
}

// Location resolves Timezone. Validation guarantees the name loads, so a
// failure here falls back to time.Local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// QueueLimit clamps the configured queue cap to [1, 2000].
func (q QueueConfig) QueueLimit() int {
	return min(max(q.Cap, 1), 2000)
}
