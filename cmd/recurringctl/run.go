package main

import (
	"fmt"
	"time"

	"invoicing/internal/app"
	"invoicing/internal/config"
	"invoicing/internal/schedule"

	"github.com/spf13/cobra"
)

func newRunCmd(cfg config.Config) *cobra.Command {
	var date string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate draft invoices for all due recurring templates",
		Long: `Run selects every active template with next_issue_date on or before the run
date, creates one draft invoice per template and advances its schedule. The run
summary is printed as JSON.

With --dry-run the due templates are listed and nothing is written.`,
		Example: `  # Run for today in APP_TIMEZONE
  recurringctl run

  # Show what a run on the first of next month would pick up
  recurringctl run --date 2025-04-01 --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var runDate time.Time
			if date != "" {
				parsed, err := schedule.ParseDate(date)
				if err != nil {
					return fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", date)
				}
				runDate = parsed
			}

			application, err := app.New(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			defer application.Close()

			if dryRun {
				due, err := application.Scheduler.ListDue(cmd.Context(), runDate)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), due)
			}

			summary, err := application.Scheduler.RunDue(cmd.Context(), runDate)
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), summary); err != nil {
				return err
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d templates failed", summary.Failed, summary.Processed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Run date (YYYY-MM-DD), defaults to today in APP_TIMEZONE")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List due templates without generating invoices")
	return cmd
}
