package logger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format selects the log line encoding.
type Format string

const (
	// FormatConsole is a human readable line, the default for terminals.
	FormatConsole Format = "console"
	// FormatJSON is one JSON object per line, suited to journald and log shippers.
	FormatJSON Format = "json"
)

var (
	// global is the logger used when a context carries none.
	//nolint:gochecknoglobals // Every bell process logs through one sink.
	global atomic.Pointer[zap.SugaredLogger]
	// level is shared by every logger built by New, so SetLevel applies everywhere.
	//nolint:gochecknoglobals // See above.
	level = zap.NewAtomicLevelAt(zap.InfoLevel)

	// ErrUnknownFormat is returned for an unsupported log format.
	ErrUnknownFormat = errors.New("unknown log format")
)

func init() { //nolint:gochecknoinits // Processes log before their configuration is loaded.
	global.Store(New(FormatConsole, zapcore.Lock(os.Stdout)))
}

// New creates a sugared logger writing to sink in the given format at the shared level.
func New(format Format, sink zapcore.WriteSyncer, options ...zap.Option) *zap.SugaredLogger {
	//nolint:exhaustruct // Unset keys are omitted on purpose.
	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "level",
		NameKey:        "process",
		TimeKey:        "time",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}

	var encoder zapcore.Encoder

	if format == FormatJSON {
		encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoderConfig.ConsoleSeparator = ", "
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	return zap.New(zapcore.NewCore(encoder, sink, level), options...).Sugar()
}

// Configure applies the configured level and format to the global logger
// and returns ctx with its logger rebuilt under the same name.
// An unknown level keeps the current one.
func Configure(ctx context.Context, levelName, formatName string) (context.Context, error) {
	format, err := ParseFormat(formatName)
	if err != nil {
		return ctx, err
	}

	if lvl, ok := ParseLogLevel(levelName); ok {
		SetLevel(lvl)
	}

	name := FromContext(ctx).Desugar().Name()
	l := New(format, zapcore.Lock(os.Stdout))
	global.Store(l)

	if name != "" {
		l = l.Named(name)
	}

	return ToContext(ctx, l), nil
}

// ParseLogLevel converts string input to zap log level.
func ParseLogLevel(s string) (zapcore.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel, true
	case "info":
		return zapcore.InfoLevel, true
	case "warn", "warning":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}

// ParseFormat converts string input to a Format. Empty means console.
func ParseFormat(s string) (Format, error) {
	switch format := Format(strings.ToLower(strings.TrimSpace(s))); format {
	case "", FormatConsole:
		return FormatConsole, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Logger returns the global logger.
func Logger() *zap.SugaredLogger {
	return global.Load()
}

// SetLevel changes the level of every logger built by New.
func SetLevel(lvl zapcore.Level) {
	level.SetLevel(lvl)
}

// Debug writes a debug level message using the logger from the context.
func Debug(ctx context.Context, args ...any) {
	FromContext(ctx).Debug(args...)
}

// DebugKV writes a message and key-value pairs at the debug level.
func DebugKV(ctx context.Context, message string, kvs ...any) {
	FromContext(ctx).Debugw(message, kvs...)
}

// Info writes an information level message using the logger from the context.
func Info(ctx context.Context, args ...any) {
	FromContext(ctx).Info(args...)
}

// InfoKV writes a message and key-value pairs at the information level.
func InfoKV(ctx context.Context, message string, kvs ...any) {
	FromContext(ctx).Infow(message, kvs...)
}

// WarnKV writes a message and key-value pairs at the warning level.
func WarnKV(ctx context.Context, message string, kvs ...any) {
	FromContext(ctx).Warnw(message, kvs...)
}

// ErrorKV writes a message and key-value pairs at the error level.
func ErrorKV(ctx context.Context, message string, kvs ...any) {
	FromContext(ctx).Errorw(message, kvs...)
}
