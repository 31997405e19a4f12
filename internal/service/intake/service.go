package intake

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/bell-scheduler/internal/domain/bell"
	"github.com/oshokin/bell-scheduler/internal/logger"
)

// Appender appends lines to the intake log.
type Appender interface {
	AppendIntake(ctx context.Context, lines ...string) error
}

// Service translates submissions and appends them to the intake log.
type Service struct {
	appender Appender
	now      func() time.Time
}

// NewService creates an intake service over the appender.
func NewService(appender Appender) *Service {
	return &Service{
		appender: appender,
		now:      time.Now,
	}
}

// Submit translates and appends one submission.
// Returns an error wrapping bell.ErrInvalidSubmission for untranslatable input.
func (s *Service) Submit(ctx context.Context, fields map[string]any) (*bell.Receipt, error) {
	lines, err := Translate(fields, s.now())
	if err != nil {
		return nil, err
	}

	receipt := &bell.Receipt{
		ID:    uuid.NewString(),
		Lines: lines,
	}

	if err = s.appender.AppendIntake(ctx, lines...); err != nil {
		return nil, fmt.Errorf("append intake: %w", err)
	}

	logger.InfoKV(ctx, "Submission accepted", "id", receipt.ID, "lines", len(lines))

	return receipt, nil
}
