package recompute

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/phrazzld/tactics-srs/internal/domain"
	"github.com/phrazzld/tactics-srs/internal/domain/srs"
	"github.com/phrazzld/tactics-srs/internal/platform/logger"
	"github.com/phrazzld/tactics-srs/internal/store"
)

// Result counts what a recompute run did.
type Result struct {
	Upserted  int
	Deleted   int
	Unchanged int
	// Skipped counts puzzles whose newest attempt has an unreadable timestamp.
	Skipped int
	// Failed counts puzzles whose transaction returned an error.
	Failed int
}

// Total returns the number of puzzles the run looked at.
func (r Result) Total() int {
	return r.Upserted + r.Deleted + r.Unchanged + r.Skipped + r.Failed
}

// LogValue implements slog.LogValuer.
func (r Result) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("upserted", r.Upserted),
		slog.Int("deleted", r.Deleted),
		slog.Int("unchanged", r.Unchanged),
		slog.Int("skipped", r.Skipped),
		slog.Int("failed", r.Failed),
	)
}

type outcome int

const (
	outcomeNone outcome = iota
	outcomeUpserted
	outcomeDeleted
	outcomeUnchanged
	outcomeSkipped
)

func (r *Result) add(o outcome) {
	switch o {
	case outcomeUpserted:
		r.Upserted++
	case outcomeDeleted:
		r.Deleted++
	case outcomeUnchanged:
		r.Unchanged++
	case outcomeSkipped:
		r.Skipped++
	}
}

// Driver applies srs decisions to the stored schedule.
type Driver struct {
	attempts store.AttemptStore
	tx       Transactor
	engine   srs.Service
	loc      *time.Location
	logger   *slog.Logger
}

// NewDriver creates a Driver. loc is the zone in which attempt instants
// become calendar dates; nil means time.Local. If logger is nil, a default
// logger will be used.
func NewDriver(
	attempts store.AttemptStore,
	tx Transactor,
	engine srs.Service,
	loc *time.Location,
	logger *slog.Logger,
) *Driver {
	if attempts == nil {
		panic("attempts cannot be nil")
	}
	if tx == nil {
		panic("tx cannot be nil")
	}
	if engine == nil {
		panic("engine cannot be nil")
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		attempts: attempts,
		tx:       tx,
		engine:   engine,
		loc:      loc,
		logger:   logger.With(slog.String("component", "recompute")),
	}
}

// Full recomputes every puzzle that has at least one attempt.
func (d *Driver) Full(ctx context.Context) (Result, error) {
	ids, err := d.attempts.PuzzleIDs(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list attempted puzzles: %w", err)
	}
	return d.run(ctx, ids)
}

// Puzzles recomputes only the given puzzles. Duplicates are ignored and
// puzzles without attempts are left alone, so the outcome for each id is
// the same as a Full run would produce.
func (d *Driver) Puzzles(ctx context.Context, ids []string) (Result, error) {
	ids = slices.Clone(ids)
	slices.Sort(ids)
	return d.run(ctx, slices.Compact(ids))
}

func (d *Driver) run(ctx context.Context, ids []string) (Result, error) {
	log := logger.FromContextOrDefault(ctx, d.logger)

	var (
		res  Result
		errs []error
	)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		o, err := d.apply(ctx, id)
		if err != nil {
			res.Failed++
			errs = append(errs, fmt.Errorf("puzzle %s: %w", id, err))
			log.Error("failed to recompute puzzle",
				slog.String("puzzle_id", id),
				slog.String("error", err.Error()))
			continue
		}
		res.add(o)
	}

	log.Debug("recompute finished", slog.Any("result", res))
	return res, errors.Join(errs...)
}

// apply runs the per-puzzle read-decide-write step in its own transaction.
func (d *Driver) apply(ctx context.Context, puzzleID string) (outcome, error) {
	log := logger.FromContextOrDefault(ctx, d.logger)

	o := outcomeNone
	err := d.tx.WithinTx(ctx, func(ctx context.Context, attempts store.AttemptStore, schedule store.ScheduleStore) error {
		o = outcomeNone

		raw, err := attempts.Latest(ctx, puzzleID)
		if err != nil {
			if errors.Is(err, store.ErrAttemptNotFound) {
				return nil
			}
			return fmt.Errorf("failed to read latest attempt: %w", err)
		}

		at, err := domain.ParseInstant(raw.AttemptedAt)
		if err != nil {
			log.Warn("skipping puzzle with malformed attempt timestamp",
				slog.String("puzzle_id", puzzleID),
				slog.String("attempted_at", raw.AttemptedAt))
			o = outcomeSkipped
			return nil
		}

		existing, err := schedule.GetForUpdate(ctx, puzzleID)
		switch {
		case err == nil:
		case errors.Is(err, store.ErrScheduleNotFound):
			existing = nil
		case errors.Is(err, store.ErrInvalidEntity):
			// An unreadable row is replaced as if the puzzle had never been scheduled.
			log.Warn("replacing unreadable schedule entry",
				slog.String("puzzle_id", puzzleID),
				slog.String("error", err.Error()))
			existing = nil
		default:
			return fmt.Errorf("failed to read schedule entry: %w", err)
		}

		latest := domain.NewLatestAttempt(puzzleID, domain.ResultFromStored(raw.Result), at, d.loc)
		decision, err := d.engine.Decide(latest, existing)
		if err != nil {
			return fmt.Errorf("failed to decide schedule: %w", err)
		}

		switch decision.Action {
		case srs.ActionUpsert:
			if err := schedule.Upsert(ctx, decision.Entry); err != nil {
				return fmt.Errorf("failed to save schedule entry: %w", err)
			}
			o = outcomeUpserted
		case srs.ActionDelete:
			if err := schedule.Delete(ctx, puzzleID); err != nil {
				return fmt.Errorf("failed to delete schedule entry: %w", err)
			}
			o = outcomeDeleted
		case srs.ActionNoOp:
			o = outcomeUnchanged
		default:
			return fmt.Errorf("unknown schedule action %s", decision.Action)
		}

		log.Debug("puzzle recomputed",
			slog.String("puzzle_id", puzzleID),
			slog.String("action", decision.Action.String()))
		return nil
	})
	if err != nil {
		return outcomeNone, err
	}
	return o, nil
}
