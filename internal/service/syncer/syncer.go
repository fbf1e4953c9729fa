package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tactics-srs/internal/domain"
	"github.com/phrazzld/tactics-srs/internal/platform/lichess"
	"github.com/phrazzld/tactics-srs/internal/platform/logger"
	"github.com/phrazzld/tactics-srs/internal/store"
)

// ActivitySource streams puzzle attempts newer than since.
type ActivitySource interface {
	Activity(ctx context.Context, limit int, since time.Time, fn func(domain.Attempt) error) (lichess.ActivityStats, error)
}

// Options configures a Service.
type Options struct {
	// Username names the local user row.
	Username string
	// MaxAttempts bounds how many activity lines are requested.
	MaxAttempts int
	// BatchSize is the number of puzzles upserted per transaction.
	BatchSize int
	// HTTPClient downloads remote puzzle dumps. Nil means http.DefaultClient.
	HTTPClient *http.Client
}

// DefaultBatchSize is used when Options.BatchSize is not positive.
const DefaultBatchSize = 5000

// AttemptsResult summarizes an attempt sync.
type AttemptsResult struct {
	// Inserted counts attempts that were new to the database.
	Inserted int
	// Duplicates counts delivered attempts that were already stored.
	Duplicates int
	Feed       lichess.ActivityStats
	// Changed lists the puzzles that received at least one new attempt, sorted.
	Changed []string
}

// PuzzlesResult summarizes a puzzle catalogue import.
type PuzzlesResult struct {
	Upserted int
	Skipped  int
	Batches  int
}

// Service imports Lichess data.
type Service struct {
	db       *sqlx.DB
	users    store.UserStore
	attempts store.AttemptStore
	puzzles  store.PuzzleStore
	source   ActivitySource
	opts     Options
	logger   *slog.Logger
}

// NewService creates a sync Service. It panics if db is nil.
// If logger is nil, a default logger will be used.
func NewService(
	db *sqlx.DB,
	users store.UserStore,
	attempts store.AttemptStore,
	puzzles store.PuzzleStore,
	source ActivitySource,
	opts Options,
	logger *slog.Logger,
) *Service {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Service{
		db:       db,
		users:    users,
		attempts: attempts,
		puzzles:  puzzles,
		source:   source,
		opts:     opts,
		logger:   logger.With(slog.String("component", "syncer")),
	}
}

// Attempts pulls attempts newer than the newest stored Lichess attempt and
// stores them in one transaction. Attempts already stored are ignored.
func (s *Service) Attempts(ctx context.Context) (AttemptsResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var res AttemptsResult

	if s.opts.Username != "" {
		if err := s.users.Ensure(ctx, s.opts.Username); err != nil {
			return res, fmt.Errorf("failed to ensure local user: %w", err)
		}
	}

	since, err := s.attempts.LatestInstant(ctx, domain.SourceLichess)
	if err != nil {
		return res, fmt.Errorf("failed to read sync cutoff: %w", err)
	}

	var fetched []domain.Attempt
	res.Feed, err = s.source.Activity(ctx, s.opts.MaxAttempts, since, func(a domain.Attempt) error {
		fetched = append(fetched, a)
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("failed to fetch puzzle activity: %w", err)
	}

	changed := make(map[string]struct{})
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		attempts := s.attempts.WithTx(tx)
		for i := range fetched {
			inserted, err := attempts.Create(ctx, &fetched[i])
			if err != nil {
				return fmt.Errorf("failed to store attempt of puzzle %s: %w", fetched[i].PuzzleID, err)
			}
			if !inserted {
				res.Duplicates++
				continue
			}
			res.Inserted++
			changed[fetched[i].PuzzleID] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return AttemptsResult{Feed: res.Feed}, err
	}

	res.Changed = make([]string, 0, len(changed))
	for id := range changed {
		res.Changed = append(res.Changed, id)
	}
	slices.Sort(res.Changed)

	log.Info("attempts synced",
		slog.Int("inserted", res.Inserted),
		slog.Int("duplicates", res.Duplicates),
		slog.Int("old", res.Feed.Old),
		slog.Int("malformed", res.Feed.Malformed),
		slog.Time("since", since))
	return res, nil
}

// Puzzles imports the puzzle dump at rawURL, upserting BatchSize rows per
// transaction. Rows that cannot be parsed are counted and skipped. Batches
// committed before a failure stay committed.
func (s *Service) Puzzles(ctx context.Context, rawURL string) (PuzzlesResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var res PuzzlesResult

	dump, err := lichess.OpenDump(ctx, rawURL, s.opts.HTTPClient)
	if err != nil {
		return res, err
	}
	defer func() { _ = dump.Close() }()

	reader, err := lichess.NewPuzzleReader(dump)
	if err != nil {
		return res, err
	}

	batch := make([]domain.Puzzle, 0, s.opts.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
			return s.puzzles.WithTx(tx).UpsertBatch(ctx, batch)
		})
		if err != nil {
			return fmt.Errorf("failed to upsert puzzle batch %d: %w", res.Batches+1, err)
		}
		res.Upserted += len(batch)
		res.Batches++
		log.Debug("puzzle batch stored",
			slog.Int("batch", res.Batches),
			slog.Int("size", len(batch)))
		batch = batch[:0]
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		puzzle, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.Skipped = reader.Skipped()
			return res, fmt.Errorf("failed to read puzzle dump: %w", err)
		}

		batch = append(batch, puzzle)
		if len(batch) >= s.opts.BatchSize {
			if err := flush(); err != nil {
				res.Skipped = reader.Skipped()
				return res, err
			}
		}
	}
	if err := flush(); err != nil {
		res.Skipped = reader.Skipped()
		return res, err
	}
	res.Skipped = reader.Skipped()

	log.Info("puzzles imported",
		slog.Int("upserted", res.Upserted),
		slog.Int("skipped", res.Skipped),
		slog.Int("batches", res.Batches))
	return res, nil
}
