package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/tactics-srs/internal/jobs"
	"github.com/spf13/cobra"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the review queue",
		Long: `Serve the review queue over HTTP.

GET /queue shows the puzzles due for review; GET|POST /log records a local
attempt and reschedules the puzzle. When update.interval is set, the update
pipeline also runs periodically in the background.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				if port <= 0 || port >= 65536 {
					return usageError(fmt.Errorf("invalid port %d", port))
				}
				root.cfg.Server.Port = port
			}
			return runServe(cmd, root)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides server.port)")
	return cmd
}

func runServe(cmd *cobra.Command, root *rootOptions) error {
	ctx := cmd.Context()

	app, err := newApplication(ctx, root.cfg, root.logger, appOptions{})
	if err != nil {
		return err
	}
	defer app.cleanup()

	if interval := root.cfg.Update.Interval; interval > 0 {
		sched := jobs.NewScheduler(interval, jobs.UpdateJob(app.updater()), app.logger)
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()
	} else {
		app.logger.Debug("periodic update disabled", slog.Duration("interval", interval))
	}

	return app.startHTTPServer(ctx, newRouter(app.practice, app.loc, app.now, app.logger))
}
