package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tactics-srs/internal/config"
	"github.com/phrazzld/tactics-srs/internal/domain/srs"
	"github.com/phrazzld/tactics-srs/internal/jobs"
	"github.com/phrazzld/tactics-srs/internal/platform/lichess"
	"github.com/phrazzld/tactics-srs/internal/platform/sqlstore"
	"github.com/phrazzld/tactics-srs/internal/report"
	"github.com/phrazzld/tactics-srs/internal/service/practice"
	"github.com/phrazzld/tactics-srs/internal/service/recompute"
	"github.com/phrazzld/tactics-srs/internal/service/syncer"
)

// application holds the shared dependencies of every command and closes
// them on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sqlx.DB
	loc    *time.Location
	now    func() time.Time

	// Stores
	users    *sqlstore.UserStore
	attempts *sqlstore.AttemptStore
	schedule *sqlstore.ScheduleStore
	puzzles  *sqlstore.PuzzleStore
	stats    *sqlstore.StatsStore

	// Services
	migrator  *sqlstore.Migrator
	engine    srs.Service
	recompute *recompute.Driver
	practice  *practice.Service
	lichess   *lichess.Client
	syncer    *syncer.Service
	reporter  *report.Generator
}

// appOptions controls how much of the application is prepared.
type appOptions struct {
	// skipMigrate leaves the schema alone; the migrate command manages it itself.
	skipMigrate bool
}

// newApplication opens the database and wires stores and services. Unless
// skipMigrate is set, pending migrations are applied first.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts appOptions) (*application, error) {
	db, err := sqlstore.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established", slog.String("driver", cfg.Database.Driver))

	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
		loc:    cfg.Location(),
		now:    time.Now,
	}
	if err := app.wire(ctx, opts); err != nil {
		app.cleanup()
		return nil, err
	}
	return app, nil
}

func (app *application) wire(ctx context.Context, opts appOptions) error {
	cfg, logger := app.config, app.logger

	var err error
	app.migrator, err = sqlstore.NewMigrator(app.db, logger)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	if !opts.skipMigrate {
		if _, err := app.migrator.Up(ctx); err != nil {
			return err
		}
	}

	app.users = sqlstore.NewUserStore(app.db, logger)
	app.attempts = sqlstore.NewAttemptStore(app.db, logger)
	app.schedule = sqlstore.NewScheduleStore(app.db, logger)
	app.puzzles = sqlstore.NewPuzzleStore(app.db, logger)
	app.stats = sqlstore.NewStatsStore(app.db, logger)

	app.engine, err = srs.NewServiceWithParams(&cfg.SRS)
	if err != nil {
		return fmt.Errorf("failed to create SRS service: %w", err)
	}

	app.recompute = recompute.NewDriver(
		app.attempts,
		recompute.NewSQLTransactor(app.db, app.attempts, app.schedule),
		app.engine,
		app.loc,
		logger,
	)

	app.practice = practice.NewService(
		app.attempts,
		app.schedule,
		app.stats,
		app.recompute,
		practice.Options{
			IncludeOverdue: cfg.Queue.IncludeOverdue,
			HideTodayDone:  cfg.Queue.HideTodayDone,
			QueueLimit:     cfg.Queue.QueueLimit(),
			DedupWindow:    time.Duration(cfg.Queue.LogDedupSeconds) * time.Second,
		},
		app.loc,
		app.now,
		logger,
	)

	app.lichess = lichess.NewClient(cfg.Lichess.BaseURL, cfg.Lichess.Token, cfg.Lichess.Timeout, logger)

	// The puzzle dump is large; its download is not bound by the API timeout.
	app.syncer = syncer.NewService(
		app.db,
		app.users,
		app.attempts,
		app.puzzles,
		app.lichess,
		syncer.Options{
			Username:    cfg.Lichess.Username,
			MaxAttempts: cfg.Lichess.MaxAttempts,
			BatchSize:   cfg.Lichess.BatchSize,
		},
		logger,
	)

	app.reporter = report.NewGenerator(
		app.stats,
		app.schedule,
		report.Options{
			OutputDir:   cfg.Report.OutputDir,
			HTML:        cfg.Report.HTML,
			XLSX:        cfg.Report.XLSX,
			RecentLimit: cfg.Report.RecentLimit,
		},
		app.loc,
		app.now,
		logger,
	)

	logger.Debug("application initialized")
	return nil
}

// updater assembles the update pipeline from the application's services.
func (app *application) updater() *jobs.Updater {
	deps := jobs.UpdateDeps{
		Migrator:   app.migrator,
		Syncer:     app.syncer,
		Recomputer: app.recompute,
		Reporter:   app.reporter,
	}
	if app.config.Update.Backup {
		deps.Backup = app.backup
	}
	return jobs.NewUpdater(deps, app.config.Lichess.PuzzleCSVURL, app.logger)
}

func (app *application) backup(ctx context.Context) (string, error) {
	return sqlstore.Backup(ctx, app.db, app.config.Database.Path, app.config.Update.BackupDir, app.now())
}

// cleanup releases the database connection.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
}
