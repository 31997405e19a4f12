// Package logger wraps zap for the bell processes.
//
// Services name their context once (WithName) and log through the
// context helpers, so every line carries the process it came from.
// Configure switches between console output and JSON lines for journald.
// CronLogger bridges robfig/cron to the same sink.
package logger
