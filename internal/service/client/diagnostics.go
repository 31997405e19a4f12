package client

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/oshokin/bell-scheduler/internal/repository/diagnostics"
)

// Diagnostics prints the most recent journal entries, newest first.
func Diagnostics(ctx context.Context, opts *Options, limit int, w io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	journal, err := diagnostics.Open(ctx, cfg.Path(cfg.DiagnosticsDB))
	if err != nil {
		return fmt.Errorf("open diagnostics journal: %w", err)
	}

	defer func() {
		_ = journal.Close()
	}()

	entries, err := journal.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("read diagnostics journal: %w", err)
	}

	return WriteEntries(w, entries)
}

// WriteEntries prints entries as a table. The raw column holds the line to resubmit.
func WriteEntries(w io.Writer, entries []diagnostics.Entry) error {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, "no diagnostics recorded")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "AT\tSOURCE\tCATEGORY\tLINE\tRAW\tREASON")

	for _, entry := range entries {
		line := "-"
		if entry.Line > 0 {
			line = fmt.Sprint(entry.Line)
		}

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			entry.At.Local().Format(time.DateTime),
			entry.Source,
			entry.Category,
			line,
			entry.Raw,
			entry.Reason,
		)
	}

	return tw.Flush()
}
