package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Import data from Lichess",
	}
	cmd.AddCommand(newSyncPuzzlesCommand(root), newSyncAttemptsCommand(root))
	return cmd
}

func newSyncPuzzlesCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "puzzles [url]",
		Short: "Import the zstd-compressed puzzle dump",
		Long: `Import the Lichess puzzle dump (.csv.zst) from a file://, http:// or
https:// URL. Without an argument lichess.puzzle_csv_url is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := root.cfg.Lichess.PuzzleCSVURL
			if len(args) == 1 {
				url = args[0]
			}
			if url == "" {
				return usageError(errors.New("no puzzle dump URL: pass one or set lichess.puzzle_csv_url"))
			}

			app, err := newApplication(cmd.Context(), root.cfg, root.logger, appOptions{})
			if err != nil {
				return err
			}
			defer app.cleanup()

			res, err := app.syncer.Puzzles(cmd.Context(), url)
			fmt.Fprintf(cmd.OutOrStdout(), "puzzles: %d upserted, %d skipped in %d batches\n",
				res.Upserted, res.Skipped, res.Batches)
			return err
		},
	}
}

func newSyncAttemptsCommand(root *rootOptions) *cobra.Command {
	var reschedule bool

	cmd := &cobra.Command{
		Use:   "attempts",
		Short: "Import new puzzle attempts from the activity feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApplication(cmd.Context(), root.cfg, root.logger, appOptions{})
			if err != nil {
				return err
			}
			defer app.cleanup()

			res, err := app.syncer.Attempts(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "attempts: %d new, %d already stored, %d old, %d malformed\n",
				res.Inserted, res.Duplicates, res.Feed.Old, res.Feed.Malformed)

			if !reschedule || len(res.Changed) == 0 {
				return nil
			}
			rec, err := app.recompute.Puzzles(cmd.Context(), res.Changed)
			printRecompute(cmd.OutOrStdout(), rec)
			return err
		},
	}

	cmd.Flags().BoolVar(&reschedule, "reschedule", true, "recompute the puzzles that received new attempts")
	return cmd
}
