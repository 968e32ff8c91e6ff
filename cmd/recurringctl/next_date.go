package main

import (
	"fmt"
	"time"

	"invoicing/internal/config"
	"invoicing/internal/schedule"

	"github.com/spf13/cobra"
)

func newNextDateCmd(cfg config.Config) *cobra.Command {
	var frequency, anchor, today string
	var dayOfMonth, count int

	cmd := &cobra.Command{
		Use:   "next-date",
		Short: "Print the upcoming issue dates of a schedule",
		Example: `  recurringctl next-date --frequency monthly --anchor 2025-01-31 --day-of-month 31 --count 3
  recurringctl next-date --frequency weekly --anchor 2025-03-03 --today 2025-03-10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			freq, err := schedule.ParseFrequency(frequency)
			if err != nil {
				return err
			}
			anchorDate, err := schedule.ParseDate(anchor)
			if err != nil {
				return fmt.Errorf("invalid --anchor %q, expected YYYY-MM-DD", anchor)
			}

			todayDate := schedule.Today(time.Now(), cfg.Timezone)
			if today != "" {
				if todayDate, err = schedule.ParseDate(today); err != nil {
					return fmt.Errorf("invalid --today %q, expected YYYY-MM-DD", today)
				}
			}

			var dom *int
			if cmd.Flags().Changed("day-of-month") {
				if !freq.MonthBased() {
					return fmt.Errorf("--day-of-month only applies to monthly, quarterly and yearly")
				}
				dom = &dayOfMonth
			}

			dates, err := schedule.Preview(freq, anchorDate, todayDate, dom, count)
			if err != nil {
				return err
			}
			for _, d := range dates {
				fmt.Fprintln(cmd.OutOrStdout(), d.Format(schedule.DateLayout))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&frequency, "frequency", "", "weekly, biweekly, monthly, quarterly or yearly")
	cmd.Flags().StringVar(&anchor, "anchor", "", "Anchor date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&today, "today", "", "Reference date, defaults to today in APP_TIMEZONE")
	cmd.Flags().IntVar(&dayOfMonth, "day-of-month", 0, "Day of month for month-based frequencies")
	cmd.Flags().IntVar(&count, "count", 1, "Number of dates to print")
	_ = cmd.MarkFlagRequired("frequency")
	_ = cmd.MarkFlagRequired("anchor")
	return cmd
}
