package logger

import "context"

// CronLogger adapts the context logger to the robfig/cron Logger interface.
type CronLogger struct {
	// ctx carries the scoped logger.
	ctx context.Context
}

// NewCronLogger returns a cron logger writing through the logger stored in ctx.
func NewCronLogger(ctx context.Context) *CronLogger {
	return &CronLogger{ctx: ctx}
}

// Info logs routine scheduler messages at debug level; cron is chatty.
func (l *CronLogger) Info(msg string, keysAndValues ...any) {
	DebugKV(l.ctx, msg, keysAndValues...)
}

// Error logs scheduler failures.
func (l *CronLogger) Error(err error, msg string, keysAndValues ...any) {
	ErrorKV(l.ctx, msg, append([]any{"error", err}, keysAndValues...)...)
}
