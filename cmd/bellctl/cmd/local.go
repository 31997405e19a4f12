package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/oshokin/bell-scheduler/internal/service/client"
)

// defaultDiagnosticsLimit is how many journal entries are listed by default.
const defaultDiagnosticsLimit = 20

func newReportCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the current schedule as CSV or iCalendar.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context) error {
				return client.Report(ctx, &options, format, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", client.FormatCSV, "report format: csv or ics")

	return cmd
}

func newDiagnosticsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "diagnostics",
		Short: "List recent parse and storage failures.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context) error {
				return client.Diagnostics(ctx, &options, limit, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", defaultDiagnosticsLimit, "number of entries to list")

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which bell processes run and what the shared files hold.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context) error {
				return client.Status(ctx, &options, cmd.OutOrStdout())
			})
		},
	}
}

func newResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Empty the intake log and the snapshot.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context) error {
				return client.Reset(ctx, &options)
			})
		},
	}
}
