package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/bell-scheduler/internal/service/client"
)

func newRingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ring",
		Short: "Ring the bell on the next tick.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context) error {
				return client.RingNow(ctx, &options, cmd.OutOrStdout())
			})
		},
	}
}

func newScheduleCommand() *cobra.Command {
	var stage, confirm bool

	cmd := &cobra.Command{
		Use:   "schedule [delay]",
		Short: "Ring the bell after a delay, e.g. 15m.",
		Long: `Arms a ring after the given delay.

With --stage the delay is only drafted; a later "schedule --confirm" arms it.`,
		Args: cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				mode  = client.ScheduleDirect
				delay time.Duration
			)

			switch {
			case confirm:
				mode = client.ScheduleConfirm
			case stage:
				mode = client.ScheduleStage
			}

			if mode != client.ScheduleConfirm {
				if err := cobra.ExactArgs(1)(cmd, args); err != nil {
					return err
				}

				var err error
				if delay, err = time.ParseDuration(args[0]); err != nil {
					return err
				}
			}

			return run(cmd, func(ctx context.Context) error {
				return client.Schedule(ctx, &options, mode, delay, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().BoolVar(&stage, "stage", false, "only draft the delay")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "arm the drafted delay")
	cmd.MarkFlagsMutuallyExclusive("stage", "confirm")

	return cmd
}

func newPendingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List the drafted delay and the pending console rings.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context) error {
				return client.Pending(ctx, &options, cmd.OutOrStdout())
			})
		},
	}
}

func newClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Cancel the pending console rings.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context) error {
				return client.Clear(ctx, &options, cmd.OutOrStdout())
			})
		},
	}
}
