package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/oshokin/bell-scheduler/internal/service/client"
)

// addDateFlags binds the date selection flags.
func addDateFlags(cmd *cobra.Command, dates *client.DateSelection) {
	cmd.Flags().StringVar(&dates.Date, "date", "", "single date, DD/MM/YYYY")
	cmd.Flags().StringVar(&dates.From, "from", "", "first date of a range, DD/MM/YYYY")
	cmd.Flags().StringVar(&dates.To, "to", "", "last date of a range, DD/MM/YYYY")
	cmd.Flags().StringSliceVar(&dates.Dates, "dates", nil, "list of dates, DD/MM/YYYY or DD/MM/YY")

	cmd.MarkFlagsRequiredTogether("from", "to")
	cmd.MarkFlagsMutuallyExclusive("date", "from", "dates")
	cmd.MarkFlagsOneRequired("date", "from", "dates")
}

func newHolidayCommand() *cobra.Command {
	var dates client.DateSelection

	cmd := &cobra.Command{
		Use:   "holiday",
		Short: "Declare a holiday; no bell rings on its dates.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context) error {
				return client.Submit(ctx, &options, client.HolidayFields(dates), cmd.OutOrStdout())
			})
		},
	}

	addDateFlags(cmd, &dates)

	return cmd
}

func newExamCommand() *cobra.Command {
	var (
		dates     client.DateSelection
		kind      string
		slot      int
		startTime string
	)

	cmd := &cobra.Command{
		Use:   "exam",
		Short: "Schedule an exam slot; the bell follows the exam offsets on its dates.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fields, err := client.ExamFields(kind, slot, startTime, dates)
			if err != nil {
				return err
			}

			return run(cmd, func(ctx context.Context) error {
				return client.Submit(ctx, &options, fields, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "midsem", "exam kind: midsem or endsem")
	cmd.Flags().IntVar(&slot, "slot", 1, "exam slot, 1 to 3")
	cmd.Flags().StringVar(&startTime, "time", "", "exam start time, HH:MM:SS")
	addDateFlags(cmd, &dates)

	if err := cmd.MarkFlagRequired("time"); err != nil {
		panic(err)
	}

	return cmd
}

func newEmergencyCommand() *cobra.Command {
	var startTime string

	cmd := &cobra.Command{
		Use:   "emergency",
		Short: "Request an immediate ring through the intake log.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context) error {
				return client.Submit(ctx, &options, client.EmergencyFields(startTime), cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVar(&startTime, "time", "", "requested time, HH:MM:SS; defaults to now")

	return cmd
}
