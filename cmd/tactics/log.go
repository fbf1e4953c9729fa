package main

import (
	"errors"
	"fmt"

	"github.com/phrazzld/tactics-srs/internal/service/practice"
	"github.com/spf13/cobra"
)

func newLogCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "log <puzzle-id> <win|loss>",
		Short: "Record a local attempt and reschedule the puzzle",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd.Context(), root.cfg, root.logger, appOptions{})
			if err != nil {
				return err
			}
			defer app.cleanup()

			res, err := app.practice.LogAttempt(cmd.Context(), args[0], args[1])
			if errors.Is(err, practice.ErrInvalidInput) {
				return usageError(err)
			}
			if err != nil {
				return err
			}

			if res.Deduplicated {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s already logged\n", res.PuzzleID, res.Result)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged %s %s\n", res.PuzzleID, res.Result)
			return nil
		},
	}
}

func newTodayCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's attempt counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApplication(cmd.Context(), root.cfg, root.logger, appOptions{})
			if err != nil {
				return err
			}
			defer app.cleanup()

			stats, err := app.practice.TodayStats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d attempts, %d wins, %d losses\n",
				stats.Date, stats.Attempts, stats.Wins, stats.Losses)
			return nil
		},
	}
}
