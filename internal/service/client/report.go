package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/oshokin/bell-scheduler/internal/domain/bell"
	"github.com/oshokin/bell-scheduler/internal/service/exporter"
)

// Report formats.
const (
	FormatCSV = "csv"
	FormatICS = "ics"
)

// errUnknownFormat is returned for an unsupported report format.
var errUnknownFormat = errors.New("unknown report format")

// Report renders the current snapshot in the requested format.
func Report(ctx context.Context, opts *Options, format string, w io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	schedule, err := exporter.Load(ctx, openStore(cfg))
	if err != nil {
		return err
	}

	return WriteReport(w, format, schedule, cfg.Actuator.RingDuration, exporter.StampOf(schedule))
}

// WriteReport renders schedule as CSV or iCalendar.
func WriteReport(w io.Writer, format string, schedule bell.Schedule, ringDuration time.Duration, stamp time.Time) error {
	reports, err := exporter.Render(schedule, bell.DefaultOffsets(), ringDuration, stamp)
	if err != nil {
		return err
	}

	var data []byte

	switch format {
	case FormatCSV, "":
		data = reports.CSV
	case FormatICS:
		data = reports.ICS
	default:
		return fmt.Errorf("%w: %q", errUnknownFormat, format)
	}

	if _, err = w.Write(data); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}
