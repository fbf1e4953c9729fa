package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/phrazzld/tactics-srs/internal/jobs"
	"github.com/phrazzld/tactics-srs/internal/service/recompute"
	"github.com/spf13/cobra"
)

func newUpdateCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Run the full update pipeline",
		Long: `Run the full update pipeline once: apply migrations, back up the
database (update.backup), import the puzzle dump (lichess.puzzle_csv_url),
import new attempts, recompute the whole schedule and write the report.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApplication(cmd.Context(), root.cfg, root.logger, appOptions{skipMigrate: true})
			if err != nil {
				return err
			}
			defer app.cleanup()

			res, err := app.updater().Run(cmd.Context())
			printUpdate(cmd.OutOrStdout(), res)
			if errors.Is(err, jobs.ErrUpdateRunning) {
				return usageError(err)
			}
			return err
		},
	}
}

func printUpdate(w io.Writer, res jobs.UpdateResult) {
	fmt.Fprintf(w, "migrations applied: %d\n", res.Migrations)
	if res.BackupPath != "" {
		fmt.Fprintf(w, "backup: %s\n", res.BackupPath)
	}
	if res.Puzzles != nil {
		fmt.Fprintf(w, "puzzles: %d upserted, %d skipped\n", res.Puzzles.Upserted, res.Puzzles.Skipped)
	}
	fmt.Fprintf(w, "attempts: %d new, %d already stored\n", res.Attempts.Inserted, res.Attempts.Duplicates)
	printRecompute(w, res.Recompute)
	if len(res.Reports) > 0 {
		fmt.Fprintf(w, "reports: %s\n", strings.Join(res.Reports, ", "))
	}
	fmt.Fprintf(w, "took %s\n", res.Duration.Round(time.Millisecond))
}

func printRecompute(w io.Writer, res recompute.Result) {
	fmt.Fprintf(w, "schedule: %d upserted, %d deleted, %d unchanged, %d skipped, %d failed\n",
		res.Upserted, res.Deleted, res.Unchanged, res.Skipped, res.Failed)
}

func newRecomputeCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recompute [puzzle-id...]",
		Short: "Rebuild the review schedule from the attempt history",
		Long: `Rebuild the review schedule. With no arguments every attempted puzzle
is recomputed; otherwise only the named puzzles are.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd.Context(), root.cfg, root.logger, appOptions{})
			if err != nil {
				return err
			}
			defer app.cleanup()

			var res recompute.Result
			if len(args) == 0 {
				res, err = app.recompute.Full(cmd.Context())
			} else {
				res, err = app.recompute.Puzzles(cmd.Context(), args)
			}
			printRecompute(cmd.OutOrStdout(), res)
			return err
		},
	}
}
