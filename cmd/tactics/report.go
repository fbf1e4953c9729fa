package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReportCommand(root *rootOptions) *cobra.Command {
	var xlsx bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the HTML and spreadsheet reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("xlsx") {
				root.cfg.Report.XLSX = xlsx
			}

			app, err := newApplication(cmd.Context(), root.cfg, root.logger, appOptions{})
			if err != nil {
				return err
			}
			defer app.cleanup()

			paths, err := app.reporter.Write(cmd.Context())
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "all report outputs are disabled")
				return nil
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&xlsx, "xlsx", false, "also write the spreadsheet (overrides report.xlsx)")
	return cmd
}
