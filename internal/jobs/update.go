package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tactics-srs/internal/platform/logger"
	"github.com/phrazzld/tactics-srs/internal/platform/sqlstore"
	"github.com/phrazzld/tactics-srs/internal/service/recompute"
	"github.com/phrazzld/tactics-srs/internal/service/syncer"
)

// ErrUpdateRunning is returned when an update is started while another one
// is still in progress.
var ErrUpdateRunning = errors.New("update already running")

// Migrator applies pending schema migrations.
type Migrator interface {
	Up(ctx context.Context) (int, error)
}

// BackupFunc copies the database and returns the path of the copy.
type BackupFunc func(ctx context.Context) (string, error)

// Syncer imports Lichess data.
type Syncer interface {
	Puzzles(ctx context.Context, rawURL string) (syncer.PuzzlesResult, error)
	Attempts(ctx context.Context) (syncer.AttemptsResult, error)
}

// Recomputer rebuilds the whole schedule.
type Recomputer interface {
	Full(ctx context.Context) (recompute.Result, error)
}

// Reporter writes the report files.
type Reporter interface {
	Write(ctx context.Context) ([]string, error)
}

// UpdateDeps are the steps of the update pipeline. Backup may be nil.
type UpdateDeps struct {
	Migrator   Migrator
	Backup     BackupFunc
	Syncer     Syncer
	Recomputer Recomputer
	Reporter   Reporter
}

// UpdateResult summarizes one pipeline run.
type UpdateResult struct {
	Migrations int
	BackupPath string
	// Puzzles is nil when no puzzle dump is configured.
	Puzzles   *syncer.PuzzlesResult
	Attempts  syncer.AttemptsResult
	Recompute recompute.Result
	Reports   []string
	Duration  time.Duration
}

// Updater runs the update pipeline: migrate, back up, import puzzles,
// import attempts, recompute the schedule and write the report.
type Updater struct {
	deps      UpdateDeps
	puzzleURL string
	logger    *slog.Logger
	running   sync.Mutex
}

// NewUpdater creates an Updater. An empty puzzleURL skips the puzzle import.
// If logger is nil, a default logger will be used.
func NewUpdater(deps UpdateDeps, puzzleURL string, logger *slog.Logger) *Updater {
	if logger == nil {
		logger = slog.Default()
	}
	return &Updater{
		deps:      deps,
		puzzleURL: puzzleURL,
		logger:    logger.With(slog.String("component", "updater")),
	}
}

// Run executes the pipeline once. A failed backup is logged and the run
// continues; any other failing step ends the run.
func (u *Updater) Run(ctx context.Context) (UpdateResult, error) {
	if !u.running.TryLock() {
		return UpdateResult{}, ErrUpdateRunning
	}
	defer u.running.Unlock()

	log := logger.FromContextOrDefault(ctx, u.logger).With(slog.String("run_id", uuid.NewString()))
	ctx = logger.WithLogger(ctx, log)

	start := time.Now()
	var res UpdateResult
	var err error

	log.Info("update started")

	if res.Migrations, err = u.deps.Migrator.Up(ctx); err != nil {
		return res, fmt.Errorf("migrate: %w", err)
	}

	if u.deps.Backup != nil {
		res.BackupPath, err = u.deps.Backup(ctx)
		switch {
		case errors.Is(err, sqlstore.ErrBackupUnsupported):
			log.Info("database backup skipped", slog.String("reason", err.Error()))
		case err != nil:
			log.Warn("database backup failed", slog.String("error", err.Error()))
		}
	}

	if u.puzzleURL != "" {
		pr, err := u.deps.Syncer.Puzzles(ctx, u.puzzleURL)
		if err != nil {
			return res, fmt.Errorf("sync puzzles: %w", err)
		}
		res.Puzzles = &pr
	} else {
		log.Debug("puzzle import skipped, no dump configured")
	}

	if res.Attempts, err = u.deps.Syncer.Attempts(ctx); err != nil {
		return res, fmt.Errorf("sync attempts: %w", err)
	}

	if res.Recompute, err = u.deps.Recomputer.Full(ctx); err != nil {
		return res, fmt.Errorf("recompute: %w", err)
	}

	if res.Reports, err = u.deps.Reporter.Write(ctx); err != nil {
		return res, fmt.Errorf("report: %w", err)
	}

	res.Duration = time.Since(start)
	log.Info("update finished",
		slog.Int("migrations", res.Migrations),
		slog.Int("attempts_inserted", res.Attempts.Inserted),
		slog.Any("recompute", res.Recompute),
		slog.Duration("duration", res.Duration))
	return res, nil
}
