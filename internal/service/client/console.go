package client

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/oshokin/bell-scheduler/internal/domain/bell"
	"github.com/oshokin/bell-scheduler/internal/service/common"
)

// ScheduleMode selects how a delayed ring is submitted to the console.
type ScheduleMode int

const (
	// ScheduleDirect arms the ring right away.
	ScheduleDirect ScheduleMode = iota
	// ScheduleStage only drafts the delay.
	ScheduleStage
	// ScheduleConfirm arms the drafted delay.
	ScheduleConfirm
)

// RingNow asks the trigger loop to ring on its next tick.
func RingNow(ctx context.Context, opts *Options, w io.Writer) error {
	return withConsole(ctx, opts, func(ctx context.Context, client *common.Client) error {
		ring, err := client.RingNow(ctx)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(w, "ringing now (%s)\n", ring.ID)

		return nil
	})
}

// Schedule arms, drafts or confirms a delayed ring.
func Schedule(ctx context.Context, opts *Options, mode ScheduleMode, delay time.Duration, w io.Writer) error {
	return withConsole(ctx, opts, func(ctx context.Context, client *common.Client) error {
		var (
			ring bell.ManualRing
			err  error
		)

		switch mode {
		case ScheduleStage:
			if err = client.StageRing(ctx, delay); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(w, "staged a ring in %s, confirm to arm it\n", delay)

			return nil
		case ScheduleConfirm:
			ring, err = client.ConfirmRing(ctx)
		default:
			ring, err = client.ScheduleRing(ctx, delay)
		}

		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(w, "ring %s due at %s\n", ring.ID, ring.Due.Local().Format(time.DateTime))

		return nil
	})
}

// Pending prints the staged delay and the pending rings.
func Pending(ctx context.Context, opts *Options, w io.Writer) error {
	return withConsole(ctx, opts, func(ctx context.Context, client *common.Client) error {
		pending, err := client.ListPending(ctx)
		if err != nil {
			return err
		}

		if pending.Staged > 0 {
			_, _ = fmt.Fprintf(w, "staged: %s\n", pending.Staged)
		}

		if len(pending.Rings) == 0 {
			_, _ = fmt.Fprintln(w, "no pending rings")
			return nil
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "ID\tDUE\tREQUESTED BY")

		for _, ring := range pending.Rings {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", ring.ID, ring.Due.Local().Format(time.DateTime), ring.Actor.String())
		}

		return tw.Flush()
	})
}

// Clear cancels the pending rings.
func Clear(ctx context.Context, opts *Options, w io.Writer) error {
	return withConsole(ctx, opts, func(ctx context.Context, client *common.Client) error {
		cleared, err := client.ClearSchedule(ctx)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(w, "cleared %d pending rings\n", cleared)

		return nil
	})
}

func withConsole(ctx context.Context, opts *Options, action func(context.Context, *common.Client) error) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	client, err := connect(ctx, cfg, cfg.ConsoleAddress, opts.Address)
	if err != nil {
		return err
	}

	// Close connection on function exit.
	defer func() {
		_ = client.Close()
	}()

	return action(ctx, client)
}
