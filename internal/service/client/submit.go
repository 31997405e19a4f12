package client

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oshokin/bell-scheduler/internal/domain/bell"
	"github.com/oshokin/bell-scheduler/internal/logger"
	"github.com/oshokin/bell-scheduler/internal/service/intake"
)

const (
	// defaultPushInterval defines retry delay when the intake service is unreachable.
	defaultPushInterval = 1 * time.Second
	// defaultPushAttempts bounds how often a submission is retried.
	defaultPushAttempts = 5
)

// DateSelection picks the dates of a submission: one date, a range or a list.
type DateSelection struct {
	// Date is a single DD/MM/YYYY date.
	Date string
	// From and To bound an inclusive range.
	From, To string
	// Dates lists individual dates.
	Dates []string
}

// HolidayFields builds a holiday submission.
func HolidayFields(dates DateSelection) map[string]any {
	fields := map[string]any{intake.FieldMode: strconv.Itoa(int(bell.KindHoliday))}
	dates.apply(fields)

	return fields
}

// ExamFields builds an exam submission for kind "midsem" or "endsem".
func ExamFields(kind string, slot int, startTime string, dates DateSelection) (map[string]any, error) {
	var mode bell.Kind

	switch kind {
	case "midsem":
		mode = bell.KindMidSem
	case "endsem":
		mode = bell.KindEndSem
	default:
		return nil, fmt.Errorf("%w: unknown exam kind %q", bell.ErrInvalidSubmission, kind)
	}

	fields := map[string]any{
		intake.FieldMode:      strconv.Itoa(int(mode)),
		intake.FieldSlot:      strconv.Itoa(slot),
		intake.FieldStartTime: startTime,
	}
	dates.apply(fields)

	return fields, nil
}

// EmergencyFields builds an immediate-ring submission. An empty time rings now.
func EmergencyFields(startTime string) map[string]any {
	fields := map[string]any{intake.FieldMode: strconv.Itoa(int(bell.KindImmediateRing))}
	if startTime != "" {
		fields[intake.FieldStartTime] = startTime
	}

	return fields
}

func (d DateSelection) apply(fields map[string]any) {
	switch {
	case len(d.Dates) > 0:
		list := make([]any, 0, len(d.Dates))
		for _, date := range d.Dates {
			list = append(list, date)
		}

		fields[intake.FieldDates] = list
	case d.From != "" || d.To != "":
		fields[intake.FieldStartDate] = d.From
		fields[intake.FieldEndDate] = d.To
	default:
		fields[intake.FieldDate] = d.Date
	}
}

// Submit sends fields to the intake service, retrying while it is unreachable.
// Rejected submissions are not retried.
func Submit(ctx context.Context, opts *Options, fields map[string]any, w io.Writer) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "bellctl")

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	client, err := connect(ctx, cfg, cfg.IntakeAddress, opts.Address)
	if err != nil {
		return err
	}

	// Close connection on function exit.
	defer func() {
		_ = client.Close()
	}()

	// attempt tries once to submit, returns (completed, error).
	attempt := func() (bool, error) {
		receipt, submitErr := client.Submit(ctx, fields)
		if submitErr == nil {
			for _, line := range receipt.Lines {
				_, _ = fmt.Fprintln(w, line)
			}

			logger.InfoKV(ctx, "Submission accepted", "id", receipt.ID, "lines", len(receipt.Lines))

			return true, nil
		}

		if status.Code(submitErr) != codes.Unavailable {
			return false, submitErr
		}

		// Log error but continue retrying for transient failures.
		logger.WarnKV(ctx, "Intake service unavailable", "error", submitErr)

		return false, nil
	}

	// Attempt immediately before starting retry loop.
	if done, attemptErr := attempt(); attemptErr != nil || done {
		return attemptErr
	}

	// Setup retry timer for subsequent attempts.
	ticker := time.NewTicker(defaultPushInterval)
	defer ticker.Stop()

	for range defaultPushAttempts - 1 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			done, attemptErr := attempt()
			if attemptErr != nil || done {
				return attemptErr
			}
		}
	}

	return fmt.Errorf("intake service at %s is unavailable", cfg.IntakeAddress)
}
