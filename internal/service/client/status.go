package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/oshokin/bell-scheduler/internal/repository/store"
	"github.com/oshokin/bell-scheduler/internal/service/common"
)

// ProcessNames are the long-running bell binaries reported by Status.
var ProcessNames = []string{"bell-intake", "bell-normalizer", "bell-trigger"}

// Status prints which bell processes run and what the shared files hold.
func Status(ctx context.Context, opts *Options, w io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(ProcessNames))
	for _, name := range ProcessNames {
		names = append(names, common.ExecutableName(name))
	}

	found, err := common.FindProcesses(names...)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PROCESS\tSTATE\tPIDS")

	for _, name := range names {
		state := "stopped"
		if len(found[name]) > 0 {
			state = "running"
		}

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%v\n", name, state, found[name])
	}

	if err = tw.Flush(); err != nil {
		return err
	}

	st := openStore(cfg)

	intake, err := st.ReadIntake(ctx)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "\nintake lines: %d\n", len(intake.Lines))

	schedule, err := st.LoadSnapshot(ctx)

	switch {
	case errors.Is(err, store.ErrNotFound):
		_, _ = fmt.Fprintln(w, "snapshot: not published yet")
	case err != nil:
		_, _ = fmt.Fprintf(w, "snapshot: unreadable (%v)\n", err)
	default:
		_, _ = fmt.Fprintf(w, "snapshot dates: %d\n", len(schedule))
	}

	return nil
}
